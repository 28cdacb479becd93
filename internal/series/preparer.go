package series

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/ducminhle1904/dtw-pattern-finder/internal/errors"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/types"
)

// WindowMode decides how window_length is turned into a reference window
type WindowMode string

const (
	// WindowObservations takes the last window_length observations up to the reference end.
	// Fewer available observations is an InsufficientDataError.
	WindowObservations WindowMode = "observations"
	// WindowCalendar takes every observation inside [end - window_length*bar, end]. The
	// window holds as many observations as the span contains (weekends and holidays shrink it);
	// a shrunk window is logged as a warning.
	WindowCalendar WindowMode = "calendar"
)

// ParseWindowMode converts a user supplied mode name
func ParseWindowMode(s string) (WindowMode, error) {
	switch WindowMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", WindowObservations:
		return WindowObservations, nil
	case WindowCalendar:
		return WindowCalendar, nil
	}
	return "", fmt.Errorf("unknown window mode %q (observations, calendar)", s)
}

// ReferenceSpec describes the reference window to cut from the series
type ReferenceSpec struct {
	End         time.Time // zero means the last observation
	Length      int
	Mode        WindowMode
	BarInterval time.Duration // calendar mode only
}

// ReferenceWindow is the contiguous slice of the series the scan compares against
type ReferenceWindow struct {
	StartIndex int
	StartTime  time.Time
	EndTime    time.Time
	values     []float64
}

// Len returns the window length M
func (r *ReferenceWindow) Len() int {
	return len(r.values)
}

// EndIndex returns the index of the last observation in the window
func (r *ReferenceWindow) EndIndex() int {
	return r.StartIndex + len(r.values) - 1
}

// Values returns a copy of the window values
func (r *ReferenceWindow) Values() []float64 {
	out := make([]float64, len(r.values))
	copy(out, r.values)
	return out
}

// View returns the backing values without copying. Callers must not modify it.
func (r *ReferenceWindow) View() []float64 {
	return r.values[:len(r.values):len(r.values)]
}

// Prepared is the Preparer output: the full series and its reference window
type Prepared struct {
	Series    *Series
	Reference *ReferenceWindow
}

// PreparerConfig holds the series preparation settings
type PreparerConfig struct {
	PriceField   types.PriceField
	HistoryStart time.Time // observations before this are dropped; zero keeps everything
}

// Preparer turns raw candles into a Series and its ReferenceWindow
type Preparer struct {
	cfg    PreparerConfig
	logger logrus.FieldLogger
}

// NewPreparer creates a preparer. A nil logger discards output.
func NewPreparer(cfg PreparerConfig, logger logrus.FieldLogger) *Preparer {
	if cfg.PriceField == "" {
		cfg.PriceField = types.PriceClose
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Preparer{cfg: cfg, logger: logger.WithField("component", component)}
}

// Prepare builds the series from candles and slices out the reference window
func (p *Preparer) Prepare(candles []types.OHLCV, spec ReferenceSpec) (*Prepared, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	points, err := p.extract(candles)
	if err != nil {
		return nil, err
	}
	s, err := NewSeries(points)
	if err != nil {
		return nil, err
	}

	ref, err := Slice(s, spec)
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"observations": s.Len(),
		"first":        s.First().Format("2006-01-02"),
		"last":         s.Last().Format("2006-01-02"),
		"ref_start":    ref.StartTime.Format("2006-01-02"),
		"ref_end":      ref.EndTime.Format("2006-01-02"),
		"ref_length":   ref.Len(),
	}).Info("series prepared")

	if spec.Mode == WindowCalendar && ref.Len() < spec.Length {
		p.logger.WithFields(logrus.Fields{
			"window_length": spec.Length,
			"ref_length":    ref.Len(),
		}).Warn("calendar span holds fewer observations than window length")
	}

	return &Prepared{Series: s, Reference: ref}, nil
}

// extract converts candles to price points, dropping observations before HistoryStart.
// A missing (non-positive or non-finite) price is a DataError; gaps must be cleaned upstream.
func (p *Preparer) extract(candles []types.OHLCV) ([]types.PricePoint, error) {
	if len(candles) == 0 {
		return nil, apperrors.NewDataError(component, "Prepare", "empty price history")
	}

	points := make([]types.PricePoint, 0, len(candles))
	for i, c := range candles {
		if !p.cfg.HistoryStart.IsZero() && c.Timestamp.Before(p.cfg.HistoryStart) {
			continue
		}
		v := c.Price(p.cfg.PriceField)
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, apperrors.NewDataError(component, "Prepare",
				"missing %s price at index %d (%s): %v", p.cfg.PriceField, i, c.Timestamp.Format(time.RFC3339), v).
				WithContext("index", i)
		}
		points = append(points, types.PricePoint{Timestamp: c.Timestamp, Value: v})
	}

	if len(points) == 0 {
		return nil, apperrors.NewDataError(component, "Prepare",
			"no observations on or after %s", p.cfg.HistoryStart.Format("2006-01-02"))
	}
	return points, nil
}

// Slice cuts the reference window described by spec out of s
func Slice(s *Series, spec ReferenceSpec) (*ReferenceWindow, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	end := spec.End
	if end.IsZero() {
		end = s.Last()
	}
	endIdx := s.IndexAtOrBefore(end)
	if endIdx < 0 {
		return nil, apperrors.NewInsufficientDataError(component, "Slice",
			"no observations on or before reference end %s", end.Format(time.RFC3339))
	}

	var startIdx int
	switch spec.Mode {
	case WindowCalendar:
		spanStart := end.Add(-time.Duration(spec.Length) * spec.BarInterval)
		startIdx = s.IndexAtOrAfter(spanStart)
		if startIdx > endIdx {
			return nil, apperrors.NewInsufficientDataError(component, "Slice",
				"no observations between %s and %s", spanStart.Format(time.RFC3339), end.Format(time.RFC3339))
		}
	default:
		startIdx = endIdx - spec.Length + 1
		if startIdx < 0 {
			return nil, apperrors.NewInsufficientDataError(component, "Slice",
				"reference window needs %d observations, only %d available up to %s",
				spec.Length, endIdx+1, end.Format(time.RFC3339))
		}
	}

	values := make([]float64, endIdx-startIdx+1)
	copy(values, s.values[startIdx:endIdx+1])
	return &ReferenceWindow{
		StartIndex: startIdx,
		StartTime:  s.timestamps[startIdx],
		EndTime:    s.timestamps[endIdx],
		values:     values,
	}, nil
}

func validateSpec(spec ReferenceSpec) error {
	if spec.Length <= 0 {
		return apperrors.NewConfigError(component, "Slice", "window length must be positive, got %d", spec.Length)
	}
	switch spec.Mode {
	case "", WindowObservations:
	case WindowCalendar:
		if spec.BarInterval <= 0 {
			return apperrors.NewConfigError(component, "Slice", "calendar window needs a positive bar interval")
		}
	default:
		return apperrors.NewConfigError(component, "Slice", "unknown window mode %q", spec.Mode)
	}
	return nil
}
