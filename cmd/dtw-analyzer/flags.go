package main

import (
	"flag"
	"strings"
	"time"

	"github.com/ducminhle1904/dtw-pattern-finder/cmd/common"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/config"
)

// AnalyzerFlags holds all command line flags for the analyzer. Flags left unset fall back to
// the config file, DTW_* environment variables and the defaults, in that order.
type AnalyzerFlags struct {
	// Data source
	Symbol   *string
	Category *string
	Interval *string
	Source   *string
	DataFile *string
	Start    *string
	Testnet  *bool

	// Reference window and search
	ReferenceEnd    *string
	WindowLength    *int
	WindowMode      *string
	ExclusionFactor *int
	Method          *string
	Radius          *int
	PriceField      *string
	Workers         *int
	TopMatches      *int

	// Output
	OutputDir   *string
	ConsoleOnly *bool
	NoExcel     *bool
	MetricsFile *string

	// Multi-interval
	MultiInterval *bool
	Intervals     *string

	Timeout *time.Duration
}

// flagKeys maps flag names to configuration keys
var flagKeys = map[string]string{
	"symbol":       "symbol",
	"category":     "category",
	"interval":     "interval",
	"source":       "source",
	"data":         "data_file",
	"data-root":    "data_root",
	"start":        "start_date",
	"testnet":      "bybit.testnet",
	"ref-end":      "reference_end_date",
	"window":       "window_length",
	"window-mode":  "window_mode",
	"k":            "exclusion_factor",
	"method":       "method",
	"radius":       "search_radius",
	"price":        "price_field",
	"workers":      "workers",
	"top":          "top_matches",
	"output":       "output.dir",
	"metrics-file": "output.metrics_file",
	"log-level":    "log.level",
	"silent":       "log.quiet",
}

// NewAnalyzerFlags registers the analyzer flags on fs
func NewAnalyzerFlags(fs *flag.FlagSet) *AnalyzerFlags {
	d := config.NewDefaultAnalysisConfig()
	return &AnalyzerFlags{
		Symbol:   fs.String("symbol", d.Symbol, "Trading symbol (e.g., BTCUSDT)"),
		Category: fs.String("category", d.Category, "Bybit category (spot, linear, inverse)"),
		Interval: fs.String("interval", d.Interval, "Bar interval (1, 5, 60, 240, D, W or 1h, 4h, 1d)"),
		Source:   fs.String("source", d.Source, "Price source (bybit, csv)"),
		DataFile: fs.String("data", "", "CSV file with price history (csv source)"),
		Start:    fs.String("start", d.StartDate, "Drop observations before this date (YYYY-MM-DD)"),
		Testnet:  fs.Bool("testnet", false, "Use the Bybit testnet"),

		ReferenceEnd:    fs.String("ref-end", "", "Last date of the reference window (default: latest observation)"),
		WindowLength:    fs.Int("window", d.WindowLength, "Reference window length"),
		WindowMode:      fs.String("window-mode", d.WindowMode, "Window length unit (observations, calendar)"),
		ExclusionFactor: fs.Int("k", d.ExclusionFactor, "Exclusion factor: candidates must end k windows before the reference"),
		Method:          fs.String("method", d.Method, "Warp distance method (full, band, fast)"),
		Radius:          fs.Int("radius", d.SearchRadius, "Band half-width or FastDTW radius"),
		PriceField:      fs.String("price", d.PriceField, "Price field (close, open, high, low, typical)"),
		Workers:         fs.Int("workers", 0, "Scan workers (0 = number of CPUs)"),
		TopMatches:      fs.Int("top", d.TopMatches, "Number of non-overlapping matches to report"),

		OutputDir:   fs.String("output", d.Output.Dir, "Results directory"),
		ConsoleOnly: fs.Bool("console-only", false, "Console output only (no file output)"),
		NoExcel:     fs.Bool("no-excel", false, "Skip the XLSX workbook"),
		MetricsFile: fs.String("metrics-file", "", "Write Prometheus metrics to this textfile"),

		MultiInterval: fs.Bool("multi-interval", false, "Repeat the search for every downloaded interval"),
		Intervals:     fs.String("intervals", "", "Comma separated intervals for -multi-interval (default: all downloaded)"),

		Timeout: fs.Duration("timeout", 0, "Abort the run after this duration (0 = no limit)"),
	}
}

// Overrides returns the configuration keys of the flags given on the command line
func (f *AnalyzerFlags) Overrides(fs *flag.FlagSet) map[string]interface{} {
	overrides := make(map[string]interface{})
	for name := range common.SetFlags(fs) {
		key, ok := flagKeys[name]
		if !ok {
			continue
		}
		overrides[key] = fs.Lookup(name).Value.(flag.Getter).Get()
	}
	if *f.NoExcel {
		overrides["output.excel"] = false
	}
	// a data file on its own implies the csv source
	if _, ok := overrides["data_file"]; ok {
		if _, ok := overrides["source"]; !ok {
			overrides["source"] = "csv"
		}
	}
	return overrides
}

// IntervalList splits the -intervals flag
func (f *AnalyzerFlags) IntervalList() []string {
	var out []string
	for _, part := range strings.Split(*f.Intervals, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateAnalyzerFlags checks flag values that the configuration layer cannot see
func ValidateAnalyzerFlags(f *AnalyzerFlags) error {
	v := common.NewFlagValidator()
	if *f.Timeout < 0 {
		v.AddError("timeout must not be negative")
	}
	if *f.Intervals != "" && !*f.MultiInterval {
		v.AddError("-intervals requires -multi-interval")
	}
	if *f.DataFile != "" {
		v.ValidateFile("data", *f.DataFile, false)
	}
	return v.GetError()
}
