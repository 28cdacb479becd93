package scanner

import (
	apperrors "github.com/ducminhle1904/dtw-pattern-finder/internal/errors"
)

// SearchRange is the set of admissible offsets [0, Last]. Offsets in (Last, N-M] are still
// scored for the curve but can never be selected.
type SearchRange struct {
	Last int
}

// ExclusionStart returns the first excluded offset
func (r SearchRange) ExclusionStart() int {
	return r.Last + 1
}

// Contains reports whether offset t may be selected
func (r SearchRange) Contains(t int) bool {
	return t >= 0 && t <= r.Last
}

// Size returns the number of admissible offsets
func (r SearchRange) Size() int {
	return r.Last + 1
}

// searchRange computes the admissible offsets for a series of n observations and a reference
// of m observations starting at refStart. A candidate window must start at or before
// refStart - m*k, which for a tail reference (refStart = n-m) is (n-m) - m*k.
func searchRange(n, m, refStart, k int) (SearchRange, error) {
	if m < 1 || m > n {
		return SearchRange{}, apperrors.NewInsufficientDataError(component, "searchRange",
			"reference length %d does not fit a series of %d observations", m, n)
	}
	last := refStart - m*k
	if last > n-m {
		last = n - m
	}
	if last < 0 {
		return SearchRange{}, apperrors.NewInsufficientRangeError(component, "searchRange",
			"no offsets left: series %d, reference %d at index %d, exclusion factor %d",
			n, m, refStart, k).
			WithContext("required_observations", m*(k+1))
	}
	return SearchRange{Last: last}, nil
}
