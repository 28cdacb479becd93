package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ducminhle1904/dtw-pattern-finder/cmd/common"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/exchange/bybit"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/logger"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/monitoring"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/config"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/data"
)

const AppName = "Price Downloader"

type downloadFlags struct {
	Symbol      *string
	Category    *string
	Intervals   *string
	Start       *string
	End         *string
	Testnet     *bool
	MetricsFile *string
}

func main() {
	fs := flag.CommandLine
	commonFlags := common.RegisterCommonFlags(fs)
	d := config.NewDefaultAnalysisConfig()
	flags := downloadFlags{
		Symbol:      fs.String("symbol", d.Symbol, "Trading symbol (e.g., BTCUSDT)"),
		Category:    fs.String("category", d.Category, "Bybit category (spot, linear, inverse)"),
		Intervals:   fs.String("intervals", d.Interval, "Comma separated intervals to download (e.g., 60,240,D)"),
		Start:       fs.String("start", d.StartDate, "First date to download (YYYY-MM-DD)"),
		End:         fs.String("end", "", "Last date to download (YYYY-MM-DD, default: now)"),
		Testnet:     fs.Bool("testnet", false, "Use the Bybit testnet"),
		MetricsFile: fs.String("metrics-file", "", "Write Prometheus metrics to this textfile"),
	}

	fs.Usage = common.NewUsageFormatter(AppName, "download Bybit kline history into the data directory", fs).
		AddExample("price-downloader -symbol BTCUSDT -intervals D",
			"Daily BTCUSDT spot history since the default start date").
		AddExample("price-downloader -symbol ETHUSDT -category linear -intervals 60,240,D -start 2022-01-01",
			"Several intervals of a perpetual contract").
		PrintUsage
	flag.Parse()

	if *commonFlags.Version {
		common.PrintVersion(AppName)
		return
	}

	cli := commonFlags.NewCLILogger()
	v := common.NewFlagValidator().
		ValidateChoice("category", *flags.Category, []string{"spot", "linear", "inverse"})
	start, err := parseDate(*flags.Start)
	if err != nil {
		v.AddError("invalid -start: " + err.Error())
	}
	end, err := parseDate(*flags.End)
	if err != nil {
		v.AddError("invalid -end: " + err.Error())
	}
	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		v.AddError("-end must be after -start")
	}
	var intervals []bybit.KlineInterval
	for _, part := range strings.Split(*flags.Intervals, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		iv, err := bybit.ParseInterval(part)
		if err != nil {
			v.AddError(err.Error())
			continue
		}
		intervals = append(intervals, iv)
	}
	if len(intervals) == 0 {
		v.AddError("at least one interval is required")
	}
	if v.HasErrors() {
		v.PrintErrors()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(ctx, commonFlags, flags, intervals, start, end, cli)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, commonFlags *common.CommonFlags, flags downloadFlags,
	intervals []bybit.KlineInterval, start, end time.Time, cli *common.Logger) int {
	cli.Header(AppName)

	// exchange keys and log settings come from the same sources as the analyzer
	overrides := map[string]interface{}{
		"symbol":        *flags.Symbol,
		"category":      *flags.Category,
		"bybit.testnet": *flags.Testnet,
		"log.quiet":     *commonFlags.Silent,
	}
	if *commonFlags.LogLevel != "" {
		overrides["log.level"] = *commonFlags.LogLevel
	}
	cfg, err := config.NewManager(*commonFlags.EnvFile).LoadConfig(*commonFlags.ConfigFile, overrides)
	if err != nil {
		cli.Error("Configuration error: %v", err)
		return 2
	}

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Quiet: cfg.Log.Quiet})
	if err != nil {
		cli.Error("Failed to create logger: %v", err)
		return 1
	}

	client := bybit.NewClient(bybit.Config{
		APIKey:    cfg.Bybit.APIKey,
		APISecret: cfg.Bybit.APISecret,
		Testnet:   cfg.Bybit.Testnet,
		BaseURL:   cfg.Bybit.BaseURL,
	}, log)
	provider := data.NewBybitProvider(client, log)
	symbol := strings.ToUpper(cfg.Symbol)
	cli.Info("Downloading %s %s from %s", symbol, cfg.Category, client.GetEnvironment())

	failed := 0
	for _, iv := range intervals {
		if ctx.Err() != nil {
			cli.Warn("Interrupted")
			failed++
			break
		}
		cli.Progress("Fetching %s %s...", symbol, iv)
		path, count, err := download(ctx, provider, cfg, *commonFlags.DataRoot, iv, start, end, log)
		if err != nil {
			cli.Error("%s %s: %v", symbol, iv, err)
			log.WithError(err).WithField("interval", string(iv)).Error("download failed")
			failed++
			continue
		}
		cli.Success("%s %s: %d candles → %s", symbol, iv, count, path)
	}

	if *flags.MetricsFile != "" {
		if err := monitoring.WriteTextfile(*flags.MetricsFile); err != nil {
			cli.Warn("Failed to write metrics: %v", err)
		}
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func download(ctx context.Context, provider *data.BybitProvider, cfg *config.AnalysisConfig, dataRoot string,
	iv bybit.KlineInterval, start, end time.Time, log logrus.FieldLogger) (string, int, error) {
	candles, err := provider.LoadData(ctx, data.LoadRequest{
		Symbol:   cfg.Symbol,
		Category: cfg.Category,
		Interval: string(iv),
		Start:    start,
		End:      end,
	})
	if err != nil {
		return "", 0, err
	}
	if err := provider.ValidateData(candles); err != nil {
		return "", 0, err
	}

	path := data.CandlesPath(dataRoot, "bybit", cfg.Category, cfg.Symbol, string(iv))
	if err := data.WriteCandlesCSV(path, candles); err != nil {
		return "", 0, err
	}
	log.WithFields(logrus.Fields{
		"path":    path,
		"candles": len(candles),
	}).Debug("candles written")
	return path, len(candles), nil
}

// parseDate accepts YYYY-MM-DD or RFC3339; an empty string is the zero time
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(config.DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
