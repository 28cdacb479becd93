package scanner

import (
	"time"

	"github.com/ducminhle1904/dtw-pattern-finder/internal/dtw"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/series"
)

// CurvePoint is the warp distance of the candidate window starting at Offset
type CurvePoint struct {
	Offset    int       `json:"offset"`
	Timestamp time.Time `json:"timestamp"`
	Distance  float64   `json:"distance"`
	Excluded  bool      `json:"excluded"`
}

// DistanceCurve holds one point per offset in [0, N-M]. It is never modified after a scan.
type DistanceCurve struct {
	points []CurvePoint
}

// Len returns the number of offsets, N-M+1
func (c *DistanceCurve) Len() int {
	return len(c.points)
}

// At returns the point for offset t
func (c *DistanceCurve) At(t int) CurvePoint {
	return c.points[t]
}

// Points returns a copy of the curve
func (c *DistanceCurve) Points() []CurvePoint {
	out := make([]CurvePoint, len(c.points))
	copy(out, c.points)
	return out
}

// Distances returns a copy of the distance values indexed by offset
func (c *DistanceCurve) Distances() []float64 {
	out := make([]float64, len(c.points))
	for i, p := range c.points {
		out[i] = p.Distance
	}
	return out
}

// Match is a selected candidate window
type Match struct {
	Rank     int         `json:"rank"`
	Offset   int         `json:"offset"`
	Start    time.Time   `json:"start"`
	End      time.Time   `json:"end"`
	Distance float64     `json:"distance"`
	Path     []dtw.Coord `json:"path,omitempty"`
}

// Result is the output of a successful scan
type Result struct {
	RunID      string
	StartedAt  time.Time
	Elapsed    time.Duration
	Config     Config
	Series     *series.Series
	Reference  *series.ReferenceWindow
	Curve      *DistanceCurve
	Range      SearchRange
	BestFit    Match
	TopMatches []Match
}
