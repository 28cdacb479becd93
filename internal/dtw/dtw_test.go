package dtw

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// naive is an independent O(n·m) recursion used as the exact reference
func naive(a, b []float64) float64 {
	n, m := len(a), len(b)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, m)
		for j := range d[i] {
			cost := math.Abs(a[i] - b[j])
			switch {
			case i == 0 && j == 0:
				d[i][j] = cost
			case i == 0:
				d[i][j] = cost + d[i][j-1]
			case j == 0:
				d[i][j] = cost + d[i-1][j]
			default:
				d[i][j] = cost + math.Min(d[i-1][j-1], math.Min(d[i-1][j], d[i][j-1]))
			}
		}
	}
	return d[n-1][m-1]
}

func randomWalk(r *rand.Rand, n int, start float64) []float64 {
	out := make([]float64, n)
	v := start
	for i := range out {
		v += r.NormFloat64()
		out[i] = v
	}
	return out
}

func TestDistance_EmptyInput(t *testing.T) {
	_, _, err := Distance(nil, []float64{1, 2, 3}, DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptySequence)

	_, _, err = Distance([]float64{1, 2, 3}, []float64{}, DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptySequence)
}

func TestDistance_BadOptions(t *testing.T) {
	_, _, err := Distance([]float64{1}, []float64{1}, Options{Method: MethodBand, Radius: -1})
	assert.ErrorIs(t, err, ErrBadRadius)

	_, _, err = Distance([]float64{1}, []float64{1}, Options{Method: "spline"})
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestDistance_IdenticalSequencesAreZero(t *testing.T) {
	a := []float64{4.199, 4.170, 4.190, 4.080, 4.110, 4.092}

	for _, method := range []Method{MethodFull, MethodBand, MethodFast} {
		dist, path, err := Distance(a, a, Options{Method: method, Radius: 1})
		require.NoError(t, err, method)
		assert.Equal(t, 0.0, dist, method)
		assert.Nil(t, path, "path only returned on request")
	}
}

func TestDistance_KnownValues(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"repetition", []float64{0, 0, 1, 2, 1, 0}, []float64{0, 1, 1, 1, 0}, 1},
		{"pacing", []float64{1, 3, 4, 9, 8}, []float64{1, 4, 5, 9, 7}, 3},
		{"missing point", []float64{10, 11, 12, 13, 14, 15}, []float64{10, 11, 13, 14, 15}, 1},
		{"shifted", []float64{1, 2, 3}, []float64{2, 3, 4}, 2},
		{"stretched", []float64{1, 2, 3}, []float64{1, 2, 2, 3}, 0},
		{"single point", []float64{5}, []float64{2}, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dist, _, err := Distance(tc.a, tc.b, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tc.want, dist)
		})
	}
}

func TestDistance_MatchesNaiveReference(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for k := 0; k < 20; k++ {
		a := randomWalk(r, 10+r.Intn(30), 100)
		b := randomWalk(r, 10+r.Intn(30), 100)

		dist, _, err := Distance(a, b, DefaultOptions())
		require.NoError(t, err)
		assert.InDelta(t, naive(a, b), dist, 1e-9)
	}
}

func TestDistance_PathIsMonotonicAndAnchored(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	a := randomWalk(r, 40, 50)
	b := randomWalk(r, 35, 50)

	for _, method := range []Method{MethodFull, MethodBand, MethodFast} {
		opts := Options{Method: method, Radius: 3, ReturnPath: true}
		dist, path, err := Distance(a, b, opts)
		require.NoError(t, err, method)
		require.NotEmpty(t, path)

		assert.Equal(t, Coord{I: 0, J: 0}, path[0], method)
		assert.Equal(t, Coord{I: len(a) - 1, J: len(b) - 1}, path[len(path)-1], method)
		for k := 1; k < len(path); k++ {
			di := path[k].I - path[k-1].I
			dj := path[k].J - path[k-1].J
			assert.True(t, di >= 0 && dj >= 0 && di <= 1 && dj <= 1 && di+dj > 0,
				"%s: invalid step %v -> %v", method, path[k-1], path[k])
		}
		assert.InDelta(t, dist, PathCost(a, b, path), 1e-9, method)
	}
}

func TestDistance_PathModeMatchesRollingMode(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	a := randomWalk(r, 60, 10)
	b := randomWalk(r, 60, 10)

	for _, method := range []Method{MethodFull, MethodBand, MethodFast} {
		rolling, _, err := Distance(a, b, Options{Method: method, Radius: 2})
		require.NoError(t, err)
		withPath, _, err := Distance(a, b, Options{Method: method, Radius: 2, ReturnPath: true})
		require.NoError(t, err)
		assert.Equal(t, rolling, withPath, method)
	}
}

func TestDistance_BandConvergesToFull(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	a := randomWalk(r, 50, 0)
	b := randomWalk(r, 50, 0)

	exact, _, err := Distance(a, b, DefaultOptions())
	require.NoError(t, err)

	previous := math.Inf(1)
	for radius := 0; radius < len(a); radius += 7 {
		dist, _, err := Distance(a, b, Options{Method: MethodBand, Radius: radius})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, dist, exact, "a band can only restrict the search")
		assert.LessOrEqual(t, dist, previous, "a wider band never increases the distance")
		previous = dist
	}

	full, _, err := Distance(a, b, Options{Method: MethodBand, Radius: len(a) - 1})
	require.NoError(t, err)
	assert.Equal(t, exact, full)
}

func TestDistance_BandRadiusZeroIsPointwiseSum(t *testing.T) {
	a := []float64{1, 5, 2, 8}
	b := []float64{2, 3, 2, 4}

	dist, _, err := Distance(a, b, Options{Method: MethodBand, Radius: 0})
	require.NoError(t, err)
	assert.Equal(t, 1.0+2.0+0.0+4.0, dist)
}

func TestDistance_FastIsUpperBoundAndExactForLargeRadius(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	a := randomWalk(r, 64, 100)
	b := randomWalk(r, 64, 100)

	exact, _, err := Distance(a, b, DefaultOptions())
	require.NoError(t, err)

	approx, _, err := Distance(a, b, Options{Method: MethodFast, Radius: 1})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, approx, exact-1e-9)

	converged, _, err := Distance(a, b, Options{Method: MethodFast, Radius: len(a)})
	require.NoError(t, err)
	assert.Equal(t, exact, converged)
}

func TestDistance_FastHandlesOddLengths(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	b := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}

	dist, path, err := Distance(a, b, Options{Method: MethodFast, Radius: 0, ReturnPath: true})
	require.NoError(t, err)
	assert.False(t, math.IsInf(dist, 1))
	assert.Equal(t, Coord{I: 10, J: 8}, path[len(path)-1])
}

func TestDistance_Symmetric(t *testing.T) {
	a := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	b := []float64{2, 7, 1, 8, 2, 8}

	ab, _, err := Distance(a, b, DefaultOptions())
	require.NoError(t, err)
	ba, _, err := Distance(b, a, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" FAST ")
	require.NoError(t, err)
	assert.Equal(t, MethodFast, m)

	m, err = ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodFull, m)

	_, err = ParseMethod("lcss")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}
