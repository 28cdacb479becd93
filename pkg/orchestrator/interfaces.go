package orchestrator

import (
	"context"

	"github.com/ducminhle1904/dtw-pattern-finder/internal/scanner"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/config"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/reporting"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/types"
)

// Orchestrator coordinates data loading, the scan and reporting
type Orchestrator interface {
	// RunAnalysis executes a single pattern search with the given configuration
	RunAnalysis(ctx context.Context, cfg *config.AnalysisConfig) (*AnalysisOutcome, error)

	// RunMultiIntervalAnalysis repeats the search for each interval. With no intervals given,
	// the intervals downloaded under dataRoot are used.
	RunMultiIntervalAnalysis(ctx context.Context, cfg *config.AnalysisConfig, dataRoot string, intervals []string) (*IntervalAnalysisResult, error)
}

// Workflow represents different execution workflows
type Workflow interface {
	// Execute runs the workflow and returns results
	Execute(ctx context.Context) (interface{}, error)

	// GetWorkflowType returns the type of workflow
	GetWorkflowType() WorkflowType
}

// WorkflowType represents different types of workflows
type WorkflowType string

const (
	WorkflowTypeSingle   WorkflowType = "single"
	WorkflowTypeInterval WorkflowType = "interval"
)

// AnalysisOutcome is a finished run and the report files it produced
type AnalysisOutcome struct {
	Result *scanner.Result
	Report *reporting.Report
	Files  []string
}

// IntervalResult represents results for a single interval
type IntervalResult struct {
	Interval string
	Outcome  *AnalysisOutcome
	Error    error
}

// IntervalAnalysisResult represents results from multi-interval analysis
type IntervalAnalysisResult struct {
	Results    []IntervalResult
	BestResult *IntervalResult
	Symbol     string
}

// AnalysisRunner runs the preparer and the scanner for one configuration
type AnalysisRunner interface {
	// RunWithData executes the search over already loaded candles
	RunWithData(ctx context.Context, cfg *config.AnalysisConfig, candles []types.OHLCV) (*scanner.Result, error)

	// RunWithSource loads candles from the configured source first
	RunWithSource(ctx context.Context, cfg *config.AnalysisConfig) (*scanner.Result, error)
}

// IntervalRunner interface for multi-interval operations
type IntervalRunner interface {
	// FindAvailableIntervals discovers the intervals downloaded for a symbol
	FindAvailableIntervals(dataRoot, exchange, category, symbol string) ([]string, error)

	// ConfigForInterval derives the configuration of one interval run
	ConfigForInterval(cfg *config.AnalysisConfig, dataRoot, interval string) *config.AnalysisConfig
}
