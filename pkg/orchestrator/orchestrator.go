package orchestrator

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	apperrors "github.com/ducminhle1904/dtw-pattern-finder/internal/errors"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/monitoring"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/config"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/reporting"
)

// DefaultOrchestrator implements the Orchestrator interface
type DefaultOrchestrator struct {
	analysisRunner AnalysisRunner
	intervalRunner IntervalRunner
	reports        *reporting.ReportingManager
	logger         logrus.FieldLogger
}

// NewOrchestrator creates a new orchestrator with default components. reports may be nil
// when the caller renders results itself.
func NewOrchestrator(reports *reporting.ReportingManager, logger logrus.FieldLogger) Orchestrator {
	logger = orDiscard(logger)
	return NewOrchestratorWithComponents(
		NewDefaultAnalysisRunner(logger),
		NewDefaultIntervalRunner(logger),
		reports,
		logger,
	)
}

// NewOrchestratorWithComponents creates a new orchestrator with custom components
func NewOrchestratorWithComponents(analysisRunner AnalysisRunner, intervalRunner IntervalRunner,
	reports *reporting.ReportingManager, logger logrus.FieldLogger) Orchestrator {
	return &DefaultOrchestrator{
		analysisRunner: analysisRunner,
		intervalRunner: intervalRunner,
		reports:        reports,
		logger:         orDiscard(logger),
	}
}

// RunAnalysis executes a single pattern search and reports it
func (o *DefaultOrchestrator) RunAnalysis(ctx context.Context, cfg *config.AnalysisConfig) (*AnalysisOutcome, error) {
	log := o.logger.WithFields(logrus.Fields{
		"symbol":   strings.ToUpper(cfg.Symbol),
		"interval": cfg.Interval,
		"source":   cfg.Source,
	})
	log.Info("🚀 starting pattern search")

	result, err := o.analysisRunner.RunWithSource(ctx, cfg)
	if err != nil {
		monitoring.RecordError(errorLabel(err))
		log.WithError(err).Error("pattern search failed")
		return nil, err
	}
	monitoring.UpdateBestDistance(strings.ToUpper(cfg.Symbol), result.BestFit.Distance)

	outcome := &AnalysisOutcome{
		Result: result,
		Report: &reporting.Report{
			Result:     result,
			Symbol:     cfg.Symbol,
			Interval:   cfg.Interval,
			Source:     cfg.Source,
			PriceField: cfg.PriceField,
		},
	}

	if o.reports != nil {
		files, err := o.reports.ReportResults(outcome.Report)
		outcome.Files = files
		if err != nil {
			monitoring.RecordError("REPORT")
			return outcome, fmt.Errorf("reporting failed: %w", err)
		}
	}

	log.WithFields(logrus.Fields{
		"run_id":        result.RunID,
		"best_offset":   result.BestFit.Offset,
		"best_start":    result.BestFit.Start.Format("2006-01-02"),
		"best_distance": result.BestFit.Distance,
	}).Info("✅ pattern search completed")

	return outcome, nil
}

// RunMultiIntervalAnalysis runs the search per interval and keeps the closest match. Distances
// are compared per reference observation since calendar windows differ in length across intervals.
func (o *DefaultOrchestrator) RunMultiIntervalAnalysis(ctx context.Context, cfg *config.AnalysisConfig,
	dataRoot string, intervals []string) (*IntervalAnalysisResult, error) {
	if len(intervals) == 0 {
		found, err := o.intervalRunner.FindAvailableIntervals(dataRoot, DataExchange, cfg.Category, cfg.Symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to find available intervals: %w", err)
		}
		intervals = found
	}
	o.logger.WithField("intervals", intervals).Info("🔍 running multi-interval analysis")

	var results []IntervalResult
	var best *IntervalResult

	for _, interval := range intervals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		intervalCfg := o.intervalRunner.ConfigForInterval(cfg, dataRoot, interval)
		if err := intervalCfg.Validate(); err != nil {
			results = append(results, IntervalResult{Interval: interval, Error: err})
			continue
		}

		outcome, err := o.RunAnalysis(ctx, intervalCfg)
		if err != nil {
			if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			o.logger.WithError(err).WithField("interval", interval).Warn("❌ interval failed")
			results = append(results, IntervalResult{Interval: interval, Outcome: outcome, Error: err})
			continue
		}
		results = append(results, IntervalResult{Interval: interval, Outcome: outcome})
	}

	for i := range results {
		r := &results[i]
		if r.Error != nil || r.Outcome == nil {
			continue
		}
		if best == nil || normalizedDistance(r) < normalizedDistance(best) {
			best = r
		}
	}

	if best == nil {
		return &IntervalAnalysisResult{Results: results, Symbol: cfg.Symbol},
			fmt.Errorf("no successful results for any of %d intervals", len(intervals))
	}

	o.logger.WithFields(logrus.Fields{
		"interval": best.Interval,
		"distance": best.Outcome.Result.BestFit.Distance,
	}).Info("✅ multi-interval analysis completed")

	return &IntervalAnalysisResult{
		Results:    results,
		BestResult: best,
		Symbol:     cfg.Symbol,
	}, nil
}

func normalizedDistance(r *IntervalResult) float64 {
	res := r.Outcome.Result
	return res.BestFit.Distance / float64(res.Reference.Len())
}

// errorLabel maps an error to the metrics label
func errorLabel(err error) string {
	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return "CANCELLED"
	}
	if kind := apperrors.KindOf(err); kind != "" {
		return string(kind)
	}
	return "UNKNOWN"
}
