package orchestrator

import (
	"context"

	"github.com/ducminhle1904/dtw-pattern-finder/pkg/config"
)

// SingleAnalysisWorkflow runs one pattern search
type SingleAnalysisWorkflow struct {
	orchestrator Orchestrator
	config       *config.AnalysisConfig
}

// NewSingleAnalysisWorkflow creates a new single analysis workflow
func NewSingleAnalysisWorkflow(orchestrator Orchestrator, cfg *config.AnalysisConfig) Workflow {
	return &SingleAnalysisWorkflow{
		orchestrator: orchestrator,
		config:       cfg,
	}
}

// Execute runs the single analysis workflow
func (w *SingleAnalysisWorkflow) Execute(ctx context.Context) (interface{}, error) {
	return w.orchestrator.RunAnalysis(ctx, w.config)
}

// GetWorkflowType returns the workflow type
func (w *SingleAnalysisWorkflow) GetWorkflowType() WorkflowType {
	return WorkflowTypeSingle
}

// IntervalWorkflow runs the search across intervals
type IntervalWorkflow struct {
	orchestrator Orchestrator
	config       *config.AnalysisConfig
	dataRoot     string
	intervals    []string
}

// NewIntervalWorkflow creates a new multi-interval workflow
func NewIntervalWorkflow(orchestrator Orchestrator, cfg *config.AnalysisConfig, dataRoot string, intervals []string) Workflow {
	return &IntervalWorkflow{
		orchestrator: orchestrator,
		config:       cfg,
		dataRoot:     dataRoot,
		intervals:    intervals,
	}
}

// Execute runs the multi-interval workflow
func (w *IntervalWorkflow) Execute(ctx context.Context) (interface{}, error) {
	return w.orchestrator.RunMultiIntervalAnalysis(ctx, w.config, w.dataRoot, w.intervals)
}

// GetWorkflowType returns the workflow type
func (w *IntervalWorkflow) GetWorkflowType() WorkflowType {
	return WorkflowTypeInterval
}
