package dtw

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// connected reports whether a monotonic path from (0,0) to (n-1,m-1) fits in w
func connected(w window) bool {
	n := len(w.rows)
	if w.rows[0].lo != 0 || w.rows[n-1].hi != w.m-1 {
		return false
	}
	reach := 0
	for i, s := range w.rows {
		if s.lo > s.hi || s.lo < 0 || s.hi >= w.m {
			return false
		}
		if i > 0 {
			if s.lo > w.rows[i-1].hi+1 || s.hi < reach {
				return false
			}
		}
		if s.lo > reach {
			reach = s.lo
		}
	}
	return true
}

func TestFullWindow(t *testing.T) {
	w := fullWindow(3, 4)
	assert.Equal(t, 12, w.cells())
	assert.True(t, connected(w))
}

func TestBandWindow_EqualLengths(t *testing.T) {
	w := bandWindow(5, 5, 1)

	assert.Equal(t, span{lo: 0, hi: 1}, w.rows[0])
	assert.Equal(t, span{lo: 1, hi: 3}, w.rows[2])
	assert.Equal(t, span{lo: 3, hi: 4}, w.rows[4])
	assert.Equal(t, 13, w.cells())
	assert.True(t, connected(w))
}

func TestBandWindow_UnequalLengthsStayConnected(t *testing.T) {
	for _, dims := range [][2]int{{3, 20}, {20, 3}, {1, 7}, {7, 1}, {10, 11}} {
		w := bandWindow(dims[0], dims[1], 0)
		assert.True(t, connected(w), "band %v", dims)
	}
}

func TestExpandWindow_ProjectsCoarsePath(t *testing.T) {
	coarse := []Coord{{0, 0}, {1, 1}, {2, 2}}
	w := expandWindow(coarse, 6, 6, 0)

	assert.Equal(t, span{lo: 0, hi: 1}, w.rows[0])
	assert.Equal(t, span{lo: 0, hi: 1}, w.rows[1])
	assert.Equal(t, span{lo: 2, hi: 3}, w.rows[2])
	assert.Equal(t, span{lo: 4, hi: 5}, w.rows[5])
	assert.True(t, connected(w))
}

func TestExpandWindow_FillsRowsBeyondCoarseGrid(t *testing.T) {
	coarse := []Coord{{0, 0}, {1, 1}}
	w := expandWindow(coarse, 5, 5, 0)

	assert.True(t, connected(w))
	assert.Equal(t, 4, w.rows[4].hi)
}
