package orchestrator

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ducminhle1904/dtw-pattern-finder/internal/errors"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/config"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/data"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/reporting"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/types"
)

var day0 = time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)

func sineCandles(n int, step time.Duration) []types.OHLCV {
	candles := make([]types.OHLCV, n)
	for i := range candles {
		v := 100 + 8*math.Sin(float64(i)/6) + 0.02*float64(i)
		candles[i] = types.OHLCV{
			Timestamp: day0.Add(time.Duration(i) * step),
			Open:      v,
			High:      v + 1,
			Low:       v - 1,
			Close:     v,
			Volume:    10,
		}
	}
	return candles
}

// writeDownload lays out candles the way the price downloader does
func writeDownload(t *testing.T, root, interval string, candles []types.OHLCV) string {
	t.Helper()
	path := data.CandlesPath(root, DataExchange, "spot", "BTCUSDT", interval)
	require.NoError(t, data.WriteCandlesCSV(path, candles))
	return path
}

func csvConfig(dataFile string) *config.AnalysisConfig {
	cfg := config.NewDefaultAnalysisConfig()
	cfg.Source = data.SourceCSV
	cfg.DataFile = dataFile
	cfg.StartDate = ""
	cfg.WindowLength = 20
	cfg.Workers = 2
	cfg.TopMatches = 3
	return cfg
}

func TestRunAnalysis_CSVSourceWithReports(t *testing.T) {
	root := t.TempDir()
	path := writeDownload(t, root, "D", sineCandles(150, 24*time.Hour))
	outDir := t.TempDir()

	var console bytes.Buffer
	reports := reporting.NewReportingManagerWithReporter(reporting.NewReporter(&console), reporting.ReportingConfig{
		EnableConsole:   true,
		EnableFiles:     true,
		OutputDirectory: outDir,
		CSVEnabled:      true,
		JSONEnabled:     true,
		ExcelEnabled:    true,
	}, nil)

	logger, hook := test.NewNullLogger()
	o := NewOrchestrator(reports, logger)

	outcome, err := o.RunAnalysis(context.Background(), csvConfig(path))
	require.NoError(t, err)

	res := outcome.Result
	assert.Equal(t, 150, res.Series.Len())
	assert.Equal(t, 130, res.Reference.StartIndex)
	assert.Equal(t, 90, res.Range.Last, "130 - 2*20")
	assert.LessOrEqual(t, res.BestFit.Offset, res.Range.Last)
	assert.Len(t, outcome.Files, 3)
	for _, f := range outcome.Files {
		assert.FileExists(t, f)
		assert.Equal(t, filepath.Join(outDir, "BTCUSDT_d"), filepath.Dir(f))
	}
	assert.Contains(t, console.String(), "DTW PATTERN SEARCH RESULTS")

	var completed bool
	for _, e := range hook.AllEntries() {
		if e.Message == "✅ pattern search completed" {
			completed = true
			assert.Equal(t, res.RunID, e.Data["run_id"])
		}
	}
	assert.True(t, completed)
}

func TestRunAnalysis_ReferenceInsideHistory(t *testing.T) {
	root := t.TempDir()
	path := writeDownload(t, root, "D", sineCandles(150, 24*time.Hour))

	cfg := csvConfig(path)
	cfg.ReferenceEndDate = day0.AddDate(0, 0, 99).Format(config.DateLayout)
	cfg.ExclusionFactor = 3

	outcome, err := NewOrchestrator(nil, nil).RunAnalysis(context.Background(), cfg)
	require.NoError(t, err)

	res := outcome.Result
	assert.Equal(t, 80, res.Reference.StartIndex)
	assert.Equal(t, 20, res.Range.Last, "80 - 3*20")
	assert.Equal(t, 150, res.Series.Len(), "later observations are still scanned")
	assert.Empty(t, outcome.Files)
}

func TestRunAnalysis_ResolvesDownloadUnderDataRoot(t *testing.T) {
	root := t.TempDir()
	writeDownload(t, root, "240", sineCandles(100, 4*time.Hour))

	cfg := csvConfig("")
	cfg.DataRoot = root
	cfg.Interval = "4h"

	outcome, err := NewOrchestrator(nil, nil).RunAnalysis(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 100, outcome.Result.Series.Len())
	assert.Equal(t, 80, outcome.Result.Reference.StartIndex)
}

func TestRunAnalysis_Errors(t *testing.T) {
	root := t.TempDir()
	path := writeDownload(t, root, "D", sineCandles(50, 24*time.Hour))
	o := NewOrchestrator(nil, nil)

	cfg := csvConfig(path)
	cfg.WindowLength = 60
	_, err := o.RunAnalysis(context.Background(), cfg)
	assert.True(t, apperrors.IsInsufficientData(err), "got %v", err)

	cfg = csvConfig(path)
	cfg.WindowLength = 20
	_, err = o.RunAnalysis(context.Background(), cfg)
	assert.True(t, apperrors.IsInsufficientRange(err), "50 observations leave no room for k*M, got %v", err)

	cfg = csvConfig(filepath.Join(root, "missing.csv"))
	_, err = o.RunAnalysis(context.Background(), cfg)
	assert.True(t, apperrors.IsData(err), "got %v", err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	big := writeDownload(t, root, "60", sineCandles(400, time.Hour))
	_, err = o.RunAnalysis(ctx, csvConfig(big))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunMultiIntervalAnalysis(t *testing.T) {
	root := t.TempDir()
	writeDownload(t, root, "D", sineCandles(150, 24*time.Hour))
	writeDownload(t, root, "60", sineCandles(200, time.Hour))
	require.NoError(t, os.MkdirAll(filepath.Join(root, DataExchange, "spot", "BTCUSDT", "notes"), 0755))

	o := NewOrchestrator(nil, nil)
	cfg := csvConfig("")

	res, err := o.RunMultiIntervalAnalysis(context.Background(), cfg, root, nil)
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "60", res.Results[0].Interval, "shorter bars first")
	assert.Equal(t, "D", res.Results[1].Interval)
	for _, r := range res.Results {
		require.NoError(t, r.Error)
		require.NotNil(t, r.Outcome)
	}
	require.NotNil(t, res.BestResult)
	assert.Equal(t, "BTCUSDT", res.Symbol)

	bestPerStep := res.BestResult.Outcome.Result.BestFit.Distance / 20
	for _, r := range res.Results {
		assert.LessOrEqual(t, bestPerStep, r.Outcome.Result.BestFit.Distance/20)
	}
}

func TestRunMultiIntervalAnalysis_PartialFailure(t *testing.T) {
	root := t.TempDir()
	writeDownload(t, root, "D", sineCandles(150, 24*time.Hour))

	o := NewOrchestrator(nil, nil)
	res, err := o.RunMultiIntervalAnalysis(context.Background(), csvConfig(""), root, []string{"D", "240"})
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.Error(t, res.Results[1].Error, "no download for 4h bars")
	assert.Equal(t, "D", res.BestResult.Interval)

	_, err = o.RunMultiIntervalAnalysis(context.Background(), csvConfig(""), t.TempDir(), nil)
	assert.Error(t, err)
}

func TestWorkflows(t *testing.T) {
	root := t.TempDir()
	path := writeDownload(t, root, "D", sineCandles(150, 24*time.Hour))
	o := NewOrchestrator(nil, nil)

	single := NewSingleAnalysisWorkflow(o, csvConfig(path))
	assert.Equal(t, WorkflowTypeSingle, single.GetWorkflowType())
	out, err := single.Execute(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &AnalysisOutcome{}, out)

	multi := NewIntervalWorkflow(o, csvConfig(""), root, []string{"D"})
	assert.Equal(t, WorkflowTypeInterval, multi.GetWorkflowType())
	out, err = multi.Execute(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &IntervalAnalysisResult{}, out)
}

func TestErrorLabel(t *testing.T) {
	assert.Equal(t, "CANCELLED", errorLabel(context.Canceled))
	assert.Equal(t, "INSUFFICIENT_RANGE", errorLabel(apperrors.NewInsufficientRangeError("x", "y", "z")))
	assert.Equal(t, "UNKNOWN", errorLabel(assert.AnError))
}
