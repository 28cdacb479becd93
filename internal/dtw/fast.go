package dtw

// fast implements FastDTW: coarsen both series by averaging adjacent pairs, solve the coarse
// problem recursively, then refine inside the projected path widened by radius.
func fast(a, b []float64, radius int, wantPath bool) (float64, []Coord, error) {
	minSize := radius + 2
	if len(a) < minSize || len(b) < minSize {
		return evaluate(a, b, fullWindow(len(a), len(b)), wantPath)
	}

	_, coarsePath, err := fast(halve(a), halve(b), radius, true)
	if err != nil {
		return 0, nil, err
	}
	w := expandWindow(coarsePath, len(a), len(b), radius)
	return evaluate(a, b, w, wantPath)
}

// halve averages adjacent pairs, dropping a trailing odd element
func halve(x []float64) []float64 {
	out := make([]float64, len(x)/2)
	for i := range out {
		out[i] = (x[2*i] + x[2*i+1]) / 2
	}
	return out
}
