package orchestrator

import (
	"context"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	apperrors "github.com/ducminhle1904/dtw-pattern-finder/internal/errors"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/exchange/bybit"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/scanner"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/series"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/config"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/data"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/types"
)

const component = "orchestrator"

// ProviderFactory builds the data provider for a configuration
type ProviderFactory func(cfg *config.AnalysisConfig) (data.DataProvider, error)

// DefaultAnalysisRunner implements the AnalysisRunner interface
type DefaultAnalysisRunner struct {
	providers ProviderFactory
	logger    logrus.FieldLogger
}

// NewDefaultAnalysisRunner creates a runner that picks its provider from the configuration
func NewDefaultAnalysisRunner(logger logrus.FieldLogger) *DefaultAnalysisRunner {
	logger = orDiscard(logger)
	return NewAnalysisRunnerWithProviders(NewProviderFactory(logger), logger)
}

// NewAnalysisRunnerWithProviders creates a runner with a custom provider factory
func NewAnalysisRunnerWithProviders(providers ProviderFactory, logger logrus.FieldLogger) *DefaultAnalysisRunner {
	return &DefaultAnalysisRunner{
		providers: providers,
		logger:    orDiscard(logger),
	}
}

// NewProviderFactory returns a factory building a cached CSV or Bybit provider. Providers
// share one Bybit client per factory.
func NewProviderFactory(logger logrus.FieldLogger) ProviderFactory {
	var client *bybit.Client
	return func(cfg *config.AnalysisConfig) (data.DataProvider, error) {
		if !strings.EqualFold(strings.TrimSpace(cfg.Source), data.SourceBybit) {
			return data.NewProvider(cfg.Source, nil, logger)
		}
		if client == nil {
			client = bybit.NewClient(bybit.Config{
				APIKey:    cfg.Bybit.APIKey,
				APISecret: cfg.Bybit.APISecret,
				Testnet:   cfg.Bybit.Testnet,
				BaseURL:   cfg.Bybit.BaseURL,
			}, logger)
		}
		return data.NewProvider(cfg.Source, client, logger)
	}
}

// RunWithSource loads the configured history and runs the search over it
func (r *DefaultAnalysisRunner) RunWithSource(ctx context.Context, cfg *config.AnalysisConfig) (*scanner.Result, error) {
	provider, err := r.providers(cfg)
	if err != nil {
		return nil, err
	}

	start, err := cfg.StartTime()
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrorKindConfig, component, "RunWithSource")
	}

	candles, err := provider.LoadData(ctx, data.LoadRequest{
		Symbol:   cfg.Symbol,
		Category: cfg.Category,
		Interval: cfg.Interval,
		Source:   cfg.DataPath(),
		Start:    start,
	})
	if err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"provider": provider.GetName(),
		"candles":  len(candles),
	}).Debug("history loaded")

	return r.RunWithData(ctx, cfg, candles)
}

// RunWithData prepares the series, cuts the reference window and scans it
func (r *DefaultAnalysisRunner) RunWithData(ctx context.Context, cfg *config.AnalysisConfig, candles []types.OHLCV) (*scanner.Result, error) {
	prepCfg, err := cfg.PreparerConfig()
	if err != nil {
		return nil, err
	}
	spec, err := cfg.ReferenceSpec()
	if err != nil {
		return nil, err
	}
	scanCfg, err := cfg.ScannerConfig()
	if err != nil {
		return nil, err
	}

	log := r.logger.WithFields(logrus.Fields{
		"symbol":   cfg.Symbol,
		"interval": cfg.Interval,
	})

	prepared, err := series.NewPreparer(prepCfg, log).Prepare(candles, spec)
	if err != nil {
		return nil, err
	}

	sc, err := scanner.New(scanCfg, log)
	if err != nil {
		return nil, err
	}
	return sc.Scan(ctx, prepared.Series, prepared.Reference)
}

func orDiscard(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger != nil {
		return logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
