package data

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ducminhle1904/dtw-pattern-finder/pkg/types"
)

// LoadRequest describes the price history to load
type LoadRequest struct {
	Symbol   string
	Category string    // "spot", "linear", "inverse"
	Interval string    // Bybit interval code ("D", "60") or short form ("1d", "1h")
	Source   string    // file path for file based providers
	Start    time.Time // zero means from the earliest available bar
	End      time.Time // zero means up to the latest available bar
}

// CacheKey identifies the request for DataCache
func (r LoadRequest) CacheKey() string {
	return strings.Join([]string{
		r.Source,
		strings.ToUpper(r.Symbol),
		r.Category,
		r.Interval,
		fmt.Sprint(r.Start.Unix()),
		fmt.Sprint(r.End.Unix()),
	}, "|")
}

// DataProvider interface for loading historical data from various sources
type DataProvider interface {
	// LoadData loads historical candles, oldest first
	LoadData(ctx context.Context, req LoadRequest) ([]types.OHLCV, error)

	// ValidateData validates the integrity of the loaded data
	ValidateData(data []types.OHLCV) error

	// GetName returns the name of the data provider
	GetName() string
}

// DataCache interface for caching loaded data
type DataCache interface {
	Get(key string) ([]types.OHLCV, bool)
	Set(key string, data []types.OHLCV)
	Clear()
	Size() int
}

// DataFilter interface for filtering and transforming data
type DataFilter interface {
	// FilterByDateRange keeps candles with start <= timestamp <= end; a zero bound is open
	FilterByDateRange(data []types.OHLCV, start, end time.Time) []types.OHLCV

	// ValidateTimeSequence ensures data is strictly chronological
	ValidateTimeSequence(data []types.OHLCV) error
}

// CSVColumnMapping defines the column positions for different CSV formats
type CSVColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int
	MinColumns   int
	DateFormat   string
}

// Predefined CSV formats
var (
	// DefaultCSVFormat is the layout written by WriteCandlesCSV and the price downloader
	DefaultCSVFormat = CSVColumnMapping{
		TimestampCol: 0,
		OpenCol:      1,
		HighCol:      2,
		LowCol:       3,
		CloseCol:     4,
		VolumeCol:    5,
		MinColumns:   6,
		DateFormat:   "2006-01-02 15:04:05",
	}

	// YahooCSVFormat reads Date,Open,High,Low,Close,Adj Close,Volume exports
	YahooCSVFormat = CSVColumnMapping{
		TimestampCol: 0,
		OpenCol:      1,
		HighCol:      2,
		LowCol:       3,
		CloseCol:     4,
		VolumeCol:    6,
		MinColumns:   7,
		DateFormat:   "2006-01-02",
	}
)

// FileLocator interface for finding data files
type FileLocator interface {
	// FindDataFile locates data/{exchange}/{category}/{symbol}/{interval}/candles.csv
	FindDataFile(dataRoot, exchange, symbol, interval string) string
}
