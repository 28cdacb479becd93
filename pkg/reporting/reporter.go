package reporting

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ducminhle1904/dtw-pattern-finder/internal/dtw"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/scanner"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/config"
)

// DefaultReporter implements the complete Reporter interface
type DefaultReporter struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	excel   *DefaultExcelReporter
	json    *DefaultJSONFormatter
	paths   *DefaultPathManager
}

// NewDefaultReporter creates a reporter printing to stdout
func NewDefaultReporter() *DefaultReporter {
	return NewReporter(nil)
}

// NewReporter creates a reporter whose console output goes to w (stdout when nil)
func NewReporter(w io.Writer) *DefaultReporter {
	return &DefaultReporter{
		console: NewConsoleReporter(w),
		csv:     NewDefaultCSVReporter(),
		excel:   NewDefaultExcelReporter(),
		json:    NewDefaultJSONFormatter(),
		paths:   NewDefaultPathManager(),
	}
}

// Console output methods
func (r *DefaultReporter) OutputResults(report *Report) {
	r.console.OutputResults(report)
}

func (r *DefaultReporter) PrintConfig(cfg *config.AnalysisConfig) {
	r.console.PrintConfig(cfg)
}

// File output methods
func (r *DefaultReporter) WriteCurveCSV(report *Report, path string) error {
	return r.csv.WriteCurveCSV(report, path)
}

func (r *DefaultReporter) WriteResultXLSX(report *Report, path string) error {
	return r.excel.WriteResultXLSX(report, path)
}

func (r *DefaultReporter) WriteResultJSON(report *Report, path string) error {
	return r.json.WriteResultJSON(report, path)
}

// Path management methods
func (r *DefaultReporter) GetDefaultOutputDir(baseDir, symbol, interval string) string {
	return r.paths.GetDefaultOutputDir(baseDir, symbol, interval)
}

func (r *DefaultReporter) EnsureDirectoryExists(path string) error {
	return r.paths.EnsureDirectoryExists(path)
}

// ReportingManager provides a high-level interface for all reporting needs
type ReportingManager struct {
	reporter Reporter
	config   ReportingConfig
	logger   logrus.FieldLogger
}

// NewReportingManager creates a new reporting manager with configuration
func NewReportingManager(cfg ReportingConfig, logger logrus.FieldLogger) *ReportingManager {
	return NewReportingManagerWithReporter(NewDefaultReporter(), cfg, logger)
}

// NewReportingManagerWithReporter creates a manager around a custom reporter
func NewReportingManagerWithReporter(reporter Reporter, cfg ReportingConfig, logger logrus.FieldLogger) *ReportingManager {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &ReportingManager{
		reporter: reporter,
		config:   cfg,
		logger:   logger.WithField("component", "reporting"),
	}
}

// ReportResults outputs results according to configuration and returns the files written
func (m *ReportingManager) ReportResults(report *Report) ([]string, error) {
	if report == nil || report.Result == nil {
		return nil, fmt.Errorf("nothing to report")
	}

	if m.config.EnableConsole {
		m.reporter.OutputResults(report)
	}
	if !m.config.EnableFiles {
		return nil, nil
	}

	outputDir := m.reporter.GetDefaultOutputDir(m.config.OutputDirectory, report.Symbol, report.Interval)
	var written []string

	outputs := []struct {
		enabled bool
		name    string
		write   func(*Report, string) error
	}{
		{m.config.CSVEnabled, CurveFileName, m.reporter.WriteCurveCSV},
		{m.config.JSONEnabled, ResultFileName, m.reporter.WriteResultJSON},
		{m.config.ExcelEnabled, ReportFileName, m.reporter.WriteResultXLSX},
	}
	for _, out := range outputs {
		if !out.enabled {
			continue
		}
		path := filepath.Join(outputDir, out.name)
		if err := out.write(report, path); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		m.logger.WithField("path", path).Info("report written")
		written = append(written, path)
	}

	return written, nil
}

// ReportConfig prints the configuration when console output is enabled
func (m *ReportingManager) ReportConfig(cfg *config.AnalysisConfig) {
	if m.config.EnableConsole {
		m.reporter.PrintConfig(cfg)
	}
}

func methodLabel(res *scanner.Result) string {
	opts := res.Config.DTW
	if opts.Method == dtw.MethodFull {
		return string(opts.Method)
	}
	return fmt.Sprintf("%s (radius %d)", opts.Method, opts.Radius)
}
