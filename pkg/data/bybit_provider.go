package data

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/sirupsen/logrus"

	apperrors "github.com/ducminhle1904/dtw-pattern-finder/internal/errors"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/exchange/bybit"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/monitoring"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/types"
)

// KlineSource downloads kline history; *bybit.Client satisfies it
type KlineSource interface {
	GetKlineHistory(ctx context.Context, params bybit.HistoryParams) ([]bybit.Kline, error)
}

// BybitProvider implements DataProvider on top of the Bybit kline endpoint
type BybitProvider struct {
	client KlineSource
	logger logrus.FieldLogger
}

// NewBybitProvider creates a provider backed by client
func NewBybitProvider(client KlineSource, logger logrus.FieldLogger) *BybitProvider {
	return &BybitProvider{
		client: client,
		logger: orDiscard(logger).WithField("component", "bybit_provider"),
	}
}

// GetName returns the name of the data provider
func (p *BybitProvider) GetName() string {
	return "Bybit Provider"
}

// LoadData downloads every kline in [req.Start, req.End]
func (p *BybitProvider) LoadData(ctx context.Context, req LoadRequest) ([]types.OHLCV, error) {
	if req.Symbol == "" {
		return nil, apperrors.NewConfigError(component, "LoadData", "symbol is required")
	}
	interval, err := bybit.ParseInterval(req.Interval)
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrorKindConfig, component, "LoadData")
	}
	category := req.Category
	if category == "" {
		category = "spot"
	}
	symbol := strings.ToUpper(req.Symbol)

	klines, err := p.client.GetKlineHistory(ctx, bybit.HistoryParams{
		Category: category,
		Symbol:   symbol,
		Interval: interval,
		Start:    req.Start,
		End:      req.End,
	})
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, apperrors.WrapError(err, apperrors.ErrorKindData, component, "LoadData").
			WithContext("symbol", symbol).
			WithContext("interval", string(interval))
	}
	if len(klines) == 0 {
		return nil, apperrors.NewDataError(component, "LoadData", "bybit returned no klines for %s %s %s",
			category, symbol, interval)
	}

	monitoring.RecordKlines(symbol, string(interval), len(klines))

	candles := make([]types.OHLCV, len(klines))
	for i, k := range klines {
		candles[i] = types.OHLCV{
			Timestamp: k.StartTime,
			Open:      k.OpenPrice,
			High:      k.HighPrice,
			Low:       k.LowPrice,
			Close:     k.ClosePrice,
			Volume:    k.Volume,
		}
	}

	p.logger.WithFields(logrus.Fields{
		"symbol":   symbol,
		"category": category,
		"interval": string(interval),
		"candles":  len(candles),
		"first":    candles[0].Timestamp.Format("2006-01-02"),
		"last":     candles[len(candles)-1].Timestamp.Format("2006-01-02"),
	}).Info("bybit history loaded")
	return candles, nil
}

// ValidateData validates the integrity of loaded data
func (p *BybitProvider) ValidateData(data []types.OHLCV) error {
	return validateCandles(data)
}
