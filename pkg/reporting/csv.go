package reporting

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteCurveCSV writes one row per offset of the distance curve
func (r *DefaultCSVReporter) WriteCurveCSV(report *Report, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"offset",
		"window_start",
		"window_end",
		"distance",
		"excluded",
		"best_fit",
	}); err != nil {
		return err
	}

	res := report.Result
	m := res.Reference.Len()
	for _, p := range res.Curve.Points() {
		row := []string{
			strconv.Itoa(p.Offset),
			p.Timestamp.UTC().Format(time.RFC3339),
			res.Series.Timestamp(p.Offset + m - 1).UTC().Format(time.RFC3339),
			strconv.FormatFloat(p.Distance, 'f', -1, 64),
			strconv.FormatBool(p.Excluded),
			strconv.FormatBool(p.Offset == res.BestFit.Offset),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// WriteCurveCSV is a package-level convenience function
func WriteCurveCSV(report *Report, path string) error {
	return NewDefaultCSVReporter().WriteCurveCSV(report, path)
}
