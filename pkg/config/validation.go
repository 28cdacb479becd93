package config

import (
	"strings"

	"github.com/ducminhle1904/dtw-pattern-finder/internal/dtw"
	apperrors "github.com/ducminhle1904/dtw-pattern-finder/internal/errors"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/scanner"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/series"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/types"
)

// Validation bounds
const (
	MaxWindowLength = 10000
	MaxSearchRadius = 10000
	MaxTopMatches   = 50
)

// AnalysisValidator checks an AnalysisConfig before a run
type AnalysisValidator struct{}

// NewAnalysisValidator creates a new validator
func NewAnalysisValidator() *AnalysisValidator {
	return &AnalysisValidator{}
}

// Validate returns the first problem found as a ConfigError
func (v *AnalysisValidator) Validate(cfg *AnalysisConfig) error {
	if cfg == nil {
		return v.fail("configuration is nil")
	}
	if err := v.validateSource(cfg); err != nil {
		return err
	}
	if err := v.validateWindow(cfg); err != nil {
		return err
	}
	if err := v.validateSearch(cfg); err != nil {
		return err
	}
	return v.validateDates(cfg)
}

func (v *AnalysisValidator) validateSource(cfg *AnalysisConfig) error {
	if strings.TrimSpace(cfg.Symbol) == "" {
		return v.fail("symbol is required")
	}

	switch strings.ToLower(cfg.Source) {
	case "csv":
		if cfg.DataFile == "" && cfg.DataRoot == "" {
			return v.fail("data_file or data_root is required for the csv source")
		}
	case "bybit":
		switch strings.ToLower(cfg.Category) {
		case "spot", "linear", "inverse":
		default:
			return v.fail("category must be spot, linear or inverse, got: %q", cfg.Category)
		}
	default:
		return v.fail("source must be csv or bybit, got: %q", cfg.Source)
	}

	if _, err := cfg.KlineInterval(); err != nil {
		return v.fail("%v", err)
	}
	return nil
}

func (v *AnalysisValidator) validateWindow(cfg *AnalysisConfig) error {
	if cfg.WindowLength <= 0 || cfg.WindowLength > MaxWindowLength {
		return v.fail("window_length must be between 1 and %d, got: %d", MaxWindowLength, cfg.WindowLength)
	}
	if _, err := series.ParseWindowMode(cfg.WindowMode); err != nil {
		return v.fail("%v", err)
	}
	if _, err := types.ParsePriceField(cfg.PriceField); err != nil {
		return v.fail("%v", err)
	}
	return nil
}

func (v *AnalysisValidator) validateSearch(cfg *AnalysisConfig) error {
	if cfg.ExclusionFactor < scanner.MinExclusionFactor {
		return v.fail("exclusion_factor must be at least %d, got: %d", scanner.MinExclusionFactor, cfg.ExclusionFactor)
	}
	if _, err := dtw.ParseMethod(cfg.Method); err != nil {
		return v.fail("%v", err)
	}
	if cfg.SearchRadius < 0 || cfg.SearchRadius > MaxSearchRadius {
		return v.fail("search_radius must be between 0 and %d, got: %d", MaxSearchRadius, cfg.SearchRadius)
	}
	if cfg.Workers < 0 {
		return v.fail("workers must not be negative, got: %d", cfg.Workers)
	}
	if cfg.TopMatches < 1 || cfg.TopMatches > MaxTopMatches {
		return v.fail("top_matches must be between 1 and %d, got: %d", MaxTopMatches, cfg.TopMatches)
	}
	return nil
}

func (v *AnalysisValidator) validateDates(cfg *AnalysisConfig) error {
	start, err := cfg.StartTime()
	if err != nil {
		return v.fail("invalid start_date %q: %v", cfg.StartDate, err)
	}
	end, err := cfg.ReferenceEnd()
	if err != nil {
		return v.fail("invalid reference_end_date %q: %v", cfg.ReferenceEndDate, err)
	}
	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		return v.fail("reference_end_date %s must be after start_date %s", cfg.ReferenceEndDate, cfg.StartDate)
	}
	return nil
}

func (v *AnalysisValidator) fail(format string, args ...interface{}) error {
	return apperrors.NewConfigError(component, "Validate", format, args...)
}
