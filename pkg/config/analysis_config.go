package config

import (
	"strings"
	"time"

	"github.com/ducminhle1904/dtw-pattern-finder/internal/dtw"
	apperrors "github.com/ducminhle1904/dtw-pattern-finder/internal/errors"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/exchange/bybit"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/scanner"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/series"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/data"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/types"
)

const component = "config"

// DateLayout is the layout used for start_date and reference_end_date
const DateLayout = "2006-01-02"

// AnalysisConfig is the full configuration of one pattern search run
type AnalysisConfig struct {
	Symbol   string `mapstructure:"symbol" json:"symbol"`
	Category string `mapstructure:"category" json:"category"`
	Interval string `mapstructure:"interval" json:"interval"`
	Source   string `mapstructure:"source" json:"source"`
	DataFile string `mapstructure:"data_file" json:"data_file,omitempty"`
	DataRoot string `mapstructure:"data_root" json:"data_root,omitempty"`

	StartDate        string `mapstructure:"start_date" json:"start_date,omitempty"`
	ReferenceEndDate string `mapstructure:"reference_end_date" json:"reference_end_date,omitempty"`

	WindowLength    int    `mapstructure:"window_length" json:"window_length"`
	WindowMode      string `mapstructure:"window_mode" json:"window_mode"`
	ExclusionFactor int    `mapstructure:"exclusion_factor" json:"exclusion_factor"`
	Method          string `mapstructure:"method" json:"method"`
	SearchRadius    int    `mapstructure:"search_radius" json:"search_radius"`
	PriceField      string `mapstructure:"price_field" json:"price_field"`
	Workers         int    `mapstructure:"workers" json:"workers"`
	TopMatches      int    `mapstructure:"top_matches" json:"top_matches"`

	Bybit  BybitConfig  `mapstructure:"bybit" json:"-"`
	Output OutputConfig `mapstructure:"output" json:"output"`
	Log    LogConfig    `mapstructure:"log" json:"log"`
}

// BybitConfig holds exchange access settings. Kline endpoints are public, keys are optional.
type BybitConfig struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Testnet   bool   `mapstructure:"testnet"`
	BaseURL   string `mapstructure:"base_url"`
}

// OutputConfig selects the report formats
type OutputConfig struct {
	Dir         string `mapstructure:"dir" json:"dir"`
	Console     bool   `mapstructure:"console" json:"console"`
	CSV         bool   `mapstructure:"csv" json:"csv"`
	JSON        bool   `mapstructure:"json" json:"json"`
	Excel       bool   `mapstructure:"excel" json:"excel"`
	MetricsFile string `mapstructure:"metrics_file" json:"metrics_file,omitempty"`
}

// LogConfig configures the session logger
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
	Dir    string `mapstructure:"dir" json:"dir"`
	Quiet  bool   `mapstructure:"quiet" json:"quiet"`
}

// NewDefaultAnalysisConfig returns the defaults: 60 daily bars, k=2, exact DTW
func NewDefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		Symbol:          "BTCUSDT",
		Category:        "spot",
		Interval:        "D",
		Source:          "bybit",
		DataRoot:        "data",
		StartDate:       "2019-01-01",
		WindowLength:    60,
		WindowMode:      string(series.WindowObservations),
		ExclusionFactor: scanner.MinExclusionFactor,
		Method:          string(dtw.MethodFull),
		SearchRadius:    1,
		PriceField:      string(types.PriceClose),
		TopMatches:      5,
		Output: OutputConfig{
			Dir:     "results",
			Console: true,
			CSV:     true,
			JSON:    true,
			Excel:   true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Dir:    "logs",
		},
	}
}

// Validate checks every field and returns the first problem as a ConfigError
func (c *AnalysisConfig) Validate() error {
	return NewAnalysisValidator().Validate(c)
}

// DataPath returns data_file, or the downloaded candles.csv under data_root when it is empty
func (c *AnalysisConfig) DataPath() string {
	if c.DataFile != "" || c.DataRoot == "" {
		return c.DataFile
	}
	return data.CandlesPath(c.DataRoot, "bybit", c.Category, c.Symbol, c.Interval)
}

// StartTime parses start_date; an empty value means no lower bound
func (c *AnalysisConfig) StartTime() (time.Time, error) {
	return parseDate(c.StartDate, false)
}

// ReferenceEnd parses reference_end_date; an empty value means the latest observation. A
// plain date covers the whole day.
func (c *AnalysisConfig) ReferenceEnd() (time.Time, error) {
	return parseDate(c.ReferenceEndDate, true)
}

// KlineInterval parses the bar interval
func (c *AnalysisConfig) KlineInterval() (bybit.KlineInterval, error) {
	return bybit.ParseInterval(c.Interval)
}

// ReferenceSpec builds the reference window description
func (c *AnalysisConfig) ReferenceSpec() (series.ReferenceSpec, error) {
	mode, err := series.ParseWindowMode(c.WindowMode)
	if err != nil {
		return series.ReferenceSpec{}, configError("%v", err)
	}
	end, err := c.ReferenceEnd()
	if err != nil {
		return series.ReferenceSpec{}, configError("invalid reference_end_date: %v", err)
	}
	interval, err := c.KlineInterval()
	if err != nil {
		return series.ReferenceSpec{}, configError("%v", err)
	}
	return series.ReferenceSpec{
		End:         end,
		Length:      c.WindowLength,
		Mode:        mode,
		BarInterval: interval.Duration(),
	}, nil
}

// PreparerConfig builds the series preparer settings
func (c *AnalysisConfig) PreparerConfig() (series.PreparerConfig, error) {
	field, err := types.ParsePriceField(c.PriceField)
	if err != nil {
		return series.PreparerConfig{}, configError("%v", err)
	}
	start, err := c.StartTime()
	if err != nil {
		return series.PreparerConfig{}, configError("invalid start_date: %v", err)
	}
	return series.PreparerConfig{PriceField: field, HistoryStart: start}, nil
}

// ScannerConfig builds the scan settings
func (c *AnalysisConfig) ScannerConfig() (scanner.Config, error) {
	method, err := dtw.ParseMethod(c.Method)
	if err != nil {
		return scanner.Config{}, configError("%v", err)
	}
	cfg := scanner.DefaultConfig()
	cfg.ExclusionFactor = c.ExclusionFactor
	cfg.DTW = dtw.Options{Method: method, Radius: c.SearchRadius}
	cfg.TopMatches = c.TopMatches
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	return cfg, nil
}

func parseDate(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	ts, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		ts = ts.Add(24*time.Hour - time.Nanosecond)
	}
	return ts, nil
}

func configError(format string, args ...interface{}) error {
	return apperrors.NewConfigError(component, "Config", format, args...)
}
