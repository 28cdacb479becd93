package reporting

import (
	"encoding/json"
	"os"
	"time"

	"github.com/ducminhle1904/dtw-pattern-finder/internal/scanner"
)

// ResultDocument is the JSON shape of a finished run
type ResultDocument struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	ElapsedMS  int64     `json:"elapsed_ms"`
	Symbol     string    `json:"symbol"`
	Interval   string    `json:"interval"`
	Source     string    `json:"source,omitempty"`
	PriceField string    `json:"price_field,omitempty"`

	Search    SearchDocument    `json:"search"`
	Series    SeriesDocument    `json:"series"`
	Reference ReferenceDocument `json:"reference"`

	BestFit    scanner.Match        `json:"best_fit"`
	TopMatches []scanner.Match      `json:"top_matches"`
	Curve      []scanner.CurvePoint `json:"curve"`
}

// SearchDocument records the scan parameters
type SearchDocument struct {
	Method          string `json:"method"`
	Radius          int    `json:"radius"`
	ExclusionFactor int    `json:"exclusion_factor"`
	LastAdmissible  int    `json:"last_admissible_offset"`
	ExclusionStart  int    `json:"exclusion_start_offset"`
	Workers         int    `json:"workers"`
}

// SeriesDocument summarizes the searched series
type SeriesDocument struct {
	Observations int       `json:"observations"`
	First        time.Time `json:"first"`
	Last         time.Time `json:"last"`
}

// ReferenceDocument describes the reference window
type ReferenceDocument struct {
	StartIndex int       `json:"start_index"`
	Length     int       `json:"length"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Values     []float64 `json:"values"`
}

// DefaultJSONFormatter implements JSON output functionality
type DefaultJSONFormatter struct{}

// NewDefaultJSONFormatter creates a new JSON formatter
func NewDefaultJSONFormatter() *DefaultJSONFormatter {
	return &DefaultJSONFormatter{}
}

// BuildDocument converts a report into its JSON document
func (f *DefaultJSONFormatter) BuildDocument(report *Report) ResultDocument {
	res := report.Result
	ref := res.Reference

	top := res.TopMatches
	if top == nil {
		top = []scanner.Match{}
	}

	return ResultDocument{
		RunID:      res.RunID,
		StartedAt:  res.StartedAt.UTC(),
		ElapsedMS:  res.Elapsed.Milliseconds(),
		Symbol:     report.Symbol,
		Interval:   report.Interval,
		Source:     report.Source,
		PriceField: report.PriceField,
		Search: SearchDocument{
			Method:          string(res.Config.DTW.Method),
			Radius:          res.Config.DTW.Radius,
			ExclusionFactor: res.Config.ExclusionFactor,
			LastAdmissible:  res.Range.Last,
			ExclusionStart:  res.Range.ExclusionStart(),
			Workers:         res.Config.Workers,
		},
		Series: SeriesDocument{
			Observations: res.Series.Len(),
			First:        res.Series.First().UTC(),
			Last:         res.Series.Last().UTC(),
		},
		Reference: ReferenceDocument{
			StartIndex: ref.StartIndex,
			Length:     ref.Len(),
			Start:      ref.StartTime.UTC(),
			End:        ref.EndTime.UTC(),
			Values:     ref.Values(),
		},
		BestFit:    res.BestFit,
		TopMatches: top,
		Curve:      res.Curve.Points(),
	}
}

// FormatResult formats a report as indented JSON
func (f *DefaultJSONFormatter) FormatResult(report *Report) ([]byte, error) {
	return json.MarshalIndent(f.BuildDocument(report), "", "  ")
}

// WriteResultJSON writes the report document to path
func (f *DefaultJSONFormatter) WriteResultJSON(report *Report, path string) error {
	data, err := f.FormatResult(report)
	if err != nil {
		return err
	}

	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// WriteResultJSON is a package-level convenience function
func WriteResultJSON(report *Report, path string) error {
	return NewDefaultJSONFormatter().WriteResultJSON(report, path)
}
