package dtw

// span is the inclusive column range [lo, hi] evaluated on one row of the grid
type span struct {
	lo, hi int
}

// window holds one span per row of an n×m grid
type window struct {
	rows []span
	m    int
}

func fullWindow(n, m int) window {
	w := window{rows: make([]span, n), m: m}
	for i := range w.rows {
		w.rows[i] = span{lo: 0, hi: m - 1}
	}
	return w
}

// bandWindow builds a Sakoe–Chiba band of half-width r around the grid diagonal
func bandWindow(n, m, r int) window {
	w := window{rows: make([]span, n), m: m}
	for i := range w.rows {
		center := 0
		if n > 1 {
			center = i * (m - 1) / (n - 1)
		}
		w.rows[i] = span{lo: center - r, hi: center + r}
	}
	w.normalize()
	return w
}

// expandWindow projects a path found on the half resolution grid onto an n×m grid and
// widens it by radius cells in every direction.
func expandWindow(path []Coord, n, m, radius int) window {
	w := window{rows: make([]span, n), m: m}
	for i := range w.rows {
		w.rows[i] = span{lo: m, hi: -1}
	}
	for _, c := range path {
		for di := -radius; di <= radius; di++ {
			li := c.I + di
			if li < 0 {
				continue
			}
			lo := 2 * (c.J - radius)
			hi := 2*(c.J+radius) + 1
			for _, row := range [2]int{2 * li, 2*li + 1} {
				if row >= n {
					continue
				}
				if lo < w.rows[row].lo {
					w.rows[row].lo = lo
				}
				if hi > w.rows[row].hi {
					w.rows[row].hi = hi
				}
			}
		}
	}
	w.normalize()
	return w
}

// normalize clips every span to the grid and widens spans until a monotonic path from
// (0,0) to (n-1,m-1) exists inside the window. Widening only adds cells, so it can only
// move the result closer to the exact distance.
func (w *window) normalize() {
	n := len(w.rows)
	if n == 0 {
		return
	}
	w.rows[0].lo = 0
	w.rows[n-1].hi = w.m - 1

	reach := 0 // first reachable column of the previous row
	for i := range w.rows {
		s := &w.rows[i]
		if s.lo < 0 {
			s.lo = 0
		}
		if s.hi > w.m-1 {
			s.hi = w.m - 1
		}
		if i > 0 {
			prev := w.rows[i-1]
			if s.lo > prev.hi+1 {
				s.lo = prev.hi + 1
			}
			if s.lo > w.m-1 {
				s.lo = w.m - 1
			}
			if s.hi < reach {
				s.hi = reach
			}
		}
		if s.hi < s.lo {
			s.hi = s.lo
		}
		if s.lo > reach {
			reach = s.lo
		}
	}
}

// cells returns how many grid cells the window evaluates
func (w window) cells() int {
	total := 0
	for _, s := range w.rows {
		total += s.hi - s.lo + 1
	}
	return total
}
