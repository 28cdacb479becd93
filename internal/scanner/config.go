package scanner

import (
	"runtime"

	"github.com/ducminhle1904/dtw-pattern-finder/internal/dtw"
	apperrors "github.com/ducminhle1904/dtw-pattern-finder/internal/errors"
)

const component = "scanner"

// MinExclusionFactor is the smallest accepted exclusion factor
const MinExclusionFactor = 2

// Config holds the scan parameters. The zero value is not usable, start from DefaultConfig.
type Config struct {
	// ExclusionFactor k: a match must end at least M*k observations before the reference starts
	ExclusionFactor int
	// DTW selects the warp distance method and radius. ReturnPath is ignored; the path is
	// only recovered for the best fit.
	DTW dtw.Options
	// Workers is the number of goroutines computing distances; <= 0 means runtime.NumCPU()
	Workers int
	// TopMatches is how many non-overlapping matches to rank, at least 1
	TopMatches int
}

// DefaultConfig returns exact DTW, k=2 and one worker per CPU
func DefaultConfig() Config {
	return Config{
		ExclusionFactor: MinExclusionFactor,
		DTW:             dtw.DefaultOptions(),
		Workers:         runtime.NumCPU(),
		TopMatches:      1,
	}
}

// Validate rejects parameter combinations before any scanning starts
func (c Config) Validate() error {
	if c.ExclusionFactor < MinExclusionFactor {
		return apperrors.NewConfigError(component, "Validate",
			"exclusion factor must be >= %d, got %d", MinExclusionFactor, c.ExclusionFactor)
	}
	if err := c.DTW.Validate(); err != nil {
		return apperrors.WrapError(err, apperrors.ErrorKindConfig, component, "Validate")
	}
	if c.TopMatches < 1 {
		return apperrors.NewConfigError(component, "Validate", "top matches must be >= 1, got %d", c.TopMatches)
	}
	return nil
}

func (c Config) workerCount() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}
