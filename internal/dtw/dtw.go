package dtw

import (
	"math"
)

// Distance computes the DTW distance between a and b.
//
// The pointwise cost is |a[i]-b[j]| and every path step (1,0), (0,1) or (1,1) is free, so the
// distance is the minimal total cost of a monotonic, boundary anchored alignment. When
// opts.ReturnPath is set the optimal path is returned from (0,0) to (len(a)-1, len(b)-1).
func Distance(a, b []float64, opts Options) (float64, []Coord, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, nil, ErrEmptySequence
	}
	if err := opts.Validate(); err != nil {
		return 0, nil, err
	}

	switch opts.Method {
	case MethodBand:
		return evaluate(a, b, bandWindow(len(a), len(b), opts.Radius), opts.ReturnPath)
	case MethodFast:
		return fast(a, b, opts.Radius, opts.ReturnPath)
	default:
		return evaluate(a, b, fullWindow(len(a), len(b)), opts.ReturnPath)
	}
}

// evaluate fills the cost grid restricted to w. Cells outside the window are +Inf.
func evaluate(a, b []float64, w window, wantPath bool) (float64, []Coord, error) {
	if wantPath {
		return evaluateMatrix(a, b, w)
	}
	return evaluateRolling(a, b, w), nil, nil
}

// evaluateRolling keeps two rows. Each buffer is +Inf everywhere except the span last written
// into it, so clearing costs O(span) rather than O(m) per row.
func evaluateRolling(a, b []float64, w window) float64 {
	m := len(b)
	inf := math.Inf(1)
	rows := [2][]float64{make([]float64, m), make([]float64, m)}
	for k := range rows {
		for j := range rows[k] {
			rows[k][j] = inf
		}
	}
	written := [2]span{{lo: 0, hi: -1}, {lo: 0, hi: -1}}

	for i, s := range w.rows {
		curr := rows[i%2]
		for j := written[i%2].lo; j <= written[i%2].hi; j++ {
			curr[j] = inf
		}
		var prev []float64
		if i > 0 {
			prev = rows[(i-1)%2]
		}
		for j := s.lo; j <= s.hi; j++ {
			cost := math.Abs(a[i] - b[j])
			if i == 0 && j == 0 {
				curr[j] = cost
				continue
			}
			best := inf
			if prev != nil {
				best = prev[j]
				if j > 0 && prev[j-1] < best {
					best = prev[j-1]
				}
			}
			if j > 0 && curr[j-1] < best {
				best = curr[j-1]
			}
			curr[j] = cost + best
		}
		written[i%2] = s
	}
	return rows[(len(w.rows)-1)%2][m-1]
}

// evaluateMatrix keeps the whole grid so the optimal path can be recovered
func evaluateMatrix(a, b []float64, w window) (float64, []Coord, error) {
	n, m := len(a), len(b)
	inf := math.Inf(1)
	d := make([]float64, n*m)
	for k := range d {
		d[k] = inf
	}
	at := func(i, j int) float64 {
		if i < 0 || j < 0 {
			return inf
		}
		return d[i*m+j]
	}

	for i, s := range w.rows {
		for j := s.lo; j <= s.hi; j++ {
			cost := math.Abs(a[i] - b[j])
			if i == 0 && j == 0 {
				d[0] = cost
				continue
			}
			d[i*m+j] = cost + min3(at(i-1, j-1), at(i-1, j), at(i, j-1))
		}
	}

	return d[n*m-1], backtrack(at, n, m), nil
}

// backtrack walks from the last cell to (0,0) following the cheapest predecessor.
// Ties prefer the diagonal step, then the step in a, then the step in b.
func backtrack(at func(i, j int) float64, n, m int) []Coord {
	path := make([]Coord, 0, n+m)
	i, j := n-1, m-1
	path = append(path, Coord{I: i, J: j})
	for i > 0 || j > 0 {
		switch {
		case i == 0:
			j--
		case j == 0:
			i--
		default:
			diag, up, left := at(i-1, j-1), at(i-1, j), at(i, j-1)
			switch {
			case diag <= up && diag <= left:
				i, j = i-1, j-1
			case up <= left:
				i--
			default:
				j--
			}
		}
		path = append(path, Coord{I: i, J: j})
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

// PathCost sums the pointwise costs along path
func PathCost(a, b []float64, path []Coord) float64 {
	total := 0.0
	for _, c := range path {
		total += math.Abs(a[c.I] - b[c.J])
	}
	return total
}

// min3 returns the minimum of three float64 values.
func min3(a, b, c float64) float64 {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
