package data

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ducminhle1904/dtw-pattern-finder/internal/exchange/bybit"
)

// DefaultFileLocator finds files laid out as {root}/{exchange}/{category}/{symbol}/{interval}/candles.csv,
// the layout the price downloader writes
type DefaultFileLocator struct {
	logger logrus.FieldLogger
}

// NewDefaultFileLocator creates a new default file locator
func NewDefaultFileLocator(logger logrus.FieldLogger) *DefaultFileLocator {
	return &DefaultFileLocator{logger: orDiscard(logger)}
}

// CandlesPath returns the canonical file path for a download
func CandlesPath(dataRoot, exchange, category, symbol, interval string) string {
	return filepath.Join(dataRoot, strings.ToLower(exchange), strings.ToLower(category),
		strings.ToUpper(symbol), normalizeInterval(interval), "candles.csv")
}

// FindDataFile returns the first existing candles.csv across the exchange's categories, or ""
func (f *DefaultFileLocator) FindDataFile(dataRoot, exchange, symbol, interval string) string {
	var categories []string
	switch strings.ToLower(exchange) {
	case "bybit":
		categories = []string{"spot", "linear", "inverse"}
	default:
		categories = []string{"spot", "futures", "linear", "inverse"}
	}

	var attempted []string
	for _, category := range categories {
		path := CandlesPath(dataRoot, exchange, category, symbol, interval)
		attempted = append(attempted, path)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	f.logger.WithField("attempted", attempted).Warnf("no data file found for %s %s %s", exchange, symbol, interval)
	return ""
}

// normalizeInterval maps short forms ("1h", "1d") to Bybit codes ("60", "D")
func normalizeInterval(interval string) string {
	if iv, err := bybit.ParseInterval(interval); err == nil {
		return string(iv)
	}
	return strings.TrimSpace(interval)
}
