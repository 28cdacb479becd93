package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ducminhle1904/dtw-pattern-finder/cmd/common"
	apperrors "github.com/ducminhle1904/dtw-pattern-finder/internal/errors"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/logger"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/monitoring"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/config"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/orchestrator"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/reporting"
)

const AppName = "DTW Analyzer"

// Exit codes
const (
	exitOK           = 0
	exitFailure      = 1
	exitConfig       = 2
	exitInsufficient = 3
	exitData         = 4
)

func main() {
	fs := flag.CommandLine
	commonFlags := common.RegisterCommonFlags(fs)
	flags := NewAnalyzerFlags(fs)

	usage := common.NewUsageFormatter(AppName, "find the history window most similar to a reference window", fs).
		AddExample("dtw-analyzer -symbol BTCUSDT -interval D -window 60",
			"Search Bybit daily history for the last 60 days").
		AddExample("dtw-analyzer -data data/bybit/spot/ETHUSDT/240/candles.csv -window 90 -k 3 -method fast",
			"Search a downloaded CSV with FastDTW").
		AddExample("dtw-analyzer -config analysis.yaml -ref-end 2024-03-01",
			"Use a config file and an earlier reference window").
		AddExample("dtw-analyzer -source csv -symbol BTCUSDT -multi-interval -intervals 60,240,D",
			"Compare several downloaded intervals")
	fs.Usage = usage.PrintUsage
	flag.Parse()

	if *commonFlags.Version {
		common.PrintVersion(AppName)
		return
	}

	cli := commonFlags.NewCLILogger()
	if err := ValidateAnalyzerFlags(flags); err != nil {
		cli.Error("%v", err)
		os.Exit(exitConfig)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *flags.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *flags.Timeout)
		defer cancel()
	}

	code := run(ctx, fs, commonFlags, flags, cli)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, fs *flag.FlagSet, commonFlags *common.CommonFlags, flags *AnalyzerFlags, cli *common.Logger) int {
	cli.Header(AppName)

	cfg, err := config.NewManager(*commonFlags.EnvFile).LoadConfig(*commonFlags.ConfigFile, flags.Overrides(fs))
	if err != nil {
		cli.Error("Configuration error: %v", err)
		return exitCode(err)
	}

	session, err := logger.NewSession(strings.ToUpper(cfg.Symbol), cfg.Interval, logger.Options{
		Dir:    cfg.Log.Dir,
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Quiet:  cfg.Log.Quiet,
	})
	if err != nil {
		cli.Error("Failed to open log session: %v", err)
		return exitFailure
	}
	defer session.Close()
	log := session.Logger()
	cli.Info("Logging to %s", session.Path())

	reports := reporting.NewReportingManager(reporting.ReportingConfig{
		EnableConsole:   cfg.Output.Console && !*commonFlags.Silent,
		EnableFiles:     !*flags.ConsoleOnly,
		OutputDirectory: cfg.Output.Dir,
		CSVEnabled:      cfg.Output.CSV,
		JSONEnabled:     cfg.Output.JSON,
		ExcelEnabled:    cfg.Output.Excel,
	}, log)
	reports.ReportConfig(cfg)

	orch := orchestrator.NewOrchestrator(reports, log)

	var workflow orchestrator.Workflow
	if *flags.MultiInterval {
		workflow = orchestrator.NewIntervalWorkflow(orch, cfg, cfg.DataRoot, flags.IntervalList())
	} else {
		workflow = orchestrator.NewSingleAnalysisWorkflow(orch, cfg)
	}

	cli.Progress("Running %s analysis for %s...", workflow.GetWorkflowType(), strings.ToUpper(cfg.Symbol))
	out, err := workflow.Execute(ctx)
	writeMetrics(cfg, cli)

	// interval summaries are useful even when every interval failed
	if res, ok := out.(*orchestrator.IntervalAnalysisResult); ok && res != nil {
		printIntervals(cli, res)
	}
	if err != nil {
		cli.Error("Analysis failed: %v", err)
		return exitCode(err)
	}
	if outcome, ok := out.(*orchestrator.AnalysisOutcome); ok && outcome != nil {
		printOutcome(cli, outcome)
	}
	return exitOK
}

func printOutcome(cli *common.Logger, outcome *orchestrator.AnalysisOutcome) {
	best := outcome.Result.BestFit
	cli.Success("Best fit %s → %s (distance %.6f)",
		best.Start.Format("2006-01-02"), best.End.Format("2006-01-02"), best.Distance)
	for _, f := range outcome.Files {
		cli.Info("Wrote %s", f)
	}
}

func printIntervals(cli *common.Logger, res *orchestrator.IntervalAnalysisResult) {
	cli.Section("Interval summary")
	for _, r := range res.Results {
		if r.Error != nil {
			cli.Warn("%-6s failed: %v", r.Interval, r.Error)
			continue
		}
		best := r.Outcome.Result.BestFit
		cli.Info("%-6s best fit %s (distance %.6f)", r.Interval, best.Start.Format("2006-01-02 15:04"), best.Distance)
	}
	if res.BestResult != nil {
		cli.Success("Closest match on the %s interval", res.BestResult.Interval)
	}
}

func writeMetrics(cfg *config.AnalysisConfig, cli *common.Logger) {
	if cfg.Output.MetricsFile == "" {
		return
	}
	if err := monitoring.WriteTextfile(cfg.Output.MetricsFile); err != nil {
		cli.Warn("Failed to write metrics: %v", err)
		return
	}
	cli.Info("Metrics written to %s", cfg.Output.MetricsFile)
}

// exitCode maps an error to the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case apperrors.IsConfig(err):
		return exitConfig
	case apperrors.IsInsufficientData(err), apperrors.IsInsufficientRange(err):
		return exitInsufficient
	case apperrors.IsData(err):
		return exitData
	}
	return exitFailure
}
