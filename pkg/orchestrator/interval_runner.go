package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ducminhle1904/dtw-pattern-finder/internal/exchange/bybit"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/config"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/data"
)

// DataExchange is the exchange directory the price downloader writes under
const DataExchange = "bybit"

// DefaultIntervalRunner implements the IntervalRunner interface
type DefaultIntervalRunner struct {
	logger logrus.FieldLogger
}

// NewDefaultIntervalRunner creates a new default interval runner
func NewDefaultIntervalRunner(logger logrus.FieldLogger) *DefaultIntervalRunner {
	return &DefaultIntervalRunner{logger: orDiscard(logger)}
}

// FindAvailableIntervals lists the interval directories holding a candles.csv, shortest bar first
func (r *DefaultIntervalRunner) FindAvailableIntervals(dataRoot, exchange, category, symbol string) ([]string, error) {
	symbolDir := filepath.Join(dataRoot, strings.ToLower(exchange), strings.ToLower(category), strings.ToUpper(symbol))
	entries, err := os.ReadDir(symbolDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", symbolDir, err)
	}

	var intervals []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(symbolDir, e.Name(), "candles.csv")); err != nil {
			continue
		}
		if _, err := bybit.ParseInterval(e.Name()); err != nil {
			r.logger.WithField("dir", e.Name()).Debug("skipping unknown interval directory")
			continue
		}
		intervals = append(intervals, e.Name())
	}

	if len(intervals) == 0 {
		return nil, fmt.Errorf("no interval data found in %s", symbolDir)
	}

	sort.Slice(intervals, func(i, j int) bool {
		a, _ := bybit.ParseInterval(intervals[i])
		b, _ := bybit.ParseInterval(intervals[j])
		return a.Duration() < b.Duration()
	})
	return intervals, nil
}

// ConfigForInterval copies cfg for one interval. CSV runs read the downloaded file of that interval.
func (r *DefaultIntervalRunner) ConfigForInterval(cfg *config.AnalysisConfig, dataRoot, interval string) *config.AnalysisConfig {
	c := *cfg
	c.Interval = interval
	if strings.EqualFold(c.Source, data.SourceCSV) && dataRoot != "" {
		c.DataFile = data.CandlesPath(dataRoot, DataExchange, c.Category, c.Symbol, interval)
	}
	return &c
}
