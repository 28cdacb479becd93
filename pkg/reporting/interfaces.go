package reporting

import (
	"github.com/ducminhle1904/dtw-pattern-finder/internal/scanner"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/config"
)

// Package reporting renders pattern search results for people and downstream tools

// Report is a scan result together with the run context needed to label it
type Report struct {
	Result     *scanner.Result
	Symbol     string
	Interval   string
	Source     string
	PriceField string
}

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	OutputResults(report *Report)
	PrintConfig(cfg *config.AnalysisConfig)
}

// FileReporter defines interface for file output
type FileReporter interface {
	WriteCurveCSV(report *Report, path string) error
	WriteResultXLSX(report *Report, path string) error
	WriteResultJSON(report *Report, path string) error
}

// PathManager defines interface for output path management
type PathManager interface {
	GetDefaultOutputDir(baseDir, symbol, interval string) string
	EnsureDirectoryExists(path string) error
}

// Reporter combines all reporting interfaces
type Reporter interface {
	ConsoleReporter
	FileReporter
	PathManager
}

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	HeaderStyle    int
	BaseStyle      int
	DateStyle      int
	PriceStyle     int
	DistanceStyle  int
	ReferenceStyle int
	BestFitStyle   int
	ExcludedStyle  int
	LabelStyle     int
}

// ReportingConfig holds configuration for reporting
type ReportingConfig struct {
	EnableConsole   bool
	EnableFiles     bool
	OutputDirectory string
	ExcelEnabled    bool
	CSVEnabled      bool
	JSONEnabled     bool
}

// File names inside the run output directory
const (
	CurveFileName  = "distance_curve.csv"
	ResultFileName = "result.json"
	ReportFileName = "report.xlsx"
)
