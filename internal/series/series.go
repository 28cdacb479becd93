package series

import (
	"math"
	"sort"
	"time"

	apperrors "github.com/ducminhle1904/dtw-pattern-finder/internal/errors"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/types"
)

const component = "series"

// Series is an immutable, strictly time ordered sequence of prices
type Series struct {
	timestamps []time.Time
	values     []float64
}

// NewSeries sorts points by timestamp and validates them. Duplicate timestamps and
// non-finite values are rejected with a DataError.
func NewSeries(points []types.PricePoint) (*Series, error) {
	if len(points) == 0 {
		return nil, apperrors.NewDataError(component, "NewSeries", "no observations")
	}

	sorted := make([]types.PricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	s := &Series{
		timestamps: make([]time.Time, len(sorted)),
		values:     make([]float64, len(sorted)),
	}
	for i, p := range sorted {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return nil, apperrors.NewDataError(component, "NewSeries",
				"non-finite value at %s", p.Timestamp.Format(time.RFC3339)).WithContext("index", i)
		}
		if i > 0 && p.Timestamp.Equal(sorted[i-1].Timestamp) {
			return nil, apperrors.NewDataError(component, "NewSeries",
				"duplicate timestamp %s", p.Timestamp.Format(time.RFC3339)).WithContext("index", i)
		}
		s.timestamps[i] = p.Timestamp
		s.values[i] = p.Value
	}
	return s, nil
}

// Len returns the number of observations
func (s *Series) Len() int {
	return len(s.values)
}

// At returns the observation at index i
func (s *Series) At(i int) types.PricePoint {
	return types.PricePoint{Timestamp: s.timestamps[i], Value: s.values[i]}
}

// Timestamp returns the timestamp at index i
func (s *Series) Timestamp(i int) time.Time {
	return s.timestamps[i]
}

// Values returns a copy of all values
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Timestamps returns a copy of all timestamps
func (s *Series) Timestamps() []time.Time {
	out := make([]time.Time, len(s.timestamps))
	copy(out, s.timestamps)
	return out
}

// Window returns a read-only view of values[start:start+length]. Callers must not modify it.
func (s *Series) Window(start, length int) []float64 {
	return s.values[start : start+length : start+length]
}

// First returns the earliest timestamp
func (s *Series) First() time.Time {
	return s.timestamps[0]
}

// Last returns the latest timestamp
func (s *Series) Last() time.Time {
	return s.timestamps[len(s.timestamps)-1]
}

// IndexAtOrBefore returns the index of the last observation with timestamp <= t, or -1
func (s *Series) IndexAtOrBefore(t time.Time) int {
	return sort.Search(len(s.timestamps), func(i int) bool {
		return s.timestamps[i].After(t)
	}) - 1
}

// IndexAtOrAfter returns the index of the first observation with timestamp >= t, or Len()
func (s *Series) IndexAtOrAfter(t time.Time) int {
	return sort.Search(len(s.timestamps), func(i int) bool {
		return !s.timestamps[i].Before(t)
	})
}
