package bybit

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// KlineInterval represents the time interval for kline data
type KlineInterval string

const (
	Interval1m  KlineInterval = "1"
	Interval3m  KlineInterval = "3"
	Interval5m  KlineInterval = "5"
	Interval15m KlineInterval = "15"
	Interval30m KlineInterval = "30"
	Interval1h  KlineInterval = "60"
	Interval2h  KlineInterval = "120"
	Interval4h  KlineInterval = "240"
	Interval6h  KlineInterval = "360"
	Interval12h KlineInterval = "720"
	Interval1d  KlineInterval = "D"
	Interval1w  KlineInterval = "W"
	Interval1M  KlineInterval = "M"
)

// MaxKlineLimit is the largest page the kline endpoint returns
const MaxKlineLimit = 1000

var intervalDurations = map[KlineInterval]time.Duration{
	Interval1m:  time.Minute,
	Interval3m:  3 * time.Minute,
	Interval5m:  5 * time.Minute,
	Interval15m: 15 * time.Minute,
	Interval30m: 30 * time.Minute,
	Interval1h:  time.Hour,
	Interval2h:  2 * time.Hour,
	Interval4h:  4 * time.Hour,
	Interval6h:  6 * time.Hour,
	Interval12h: 12 * time.Hour,
	Interval1d:  24 * time.Hour,
	Interval1w:  7 * 24 * time.Hour,
	Interval1M:  30 * 24 * time.Hour,
}

var intervalAliases = map[string]KlineInterval{
	"1m": Interval1m, "3m": Interval3m, "5m": Interval5m, "15m": Interval15m, "30m": Interval30m,
	"1h": Interval1h, "2h": Interval2h, "4h": Interval4h, "6h": Interval6h, "12h": Interval12h,
	"1d": Interval1d, "d": Interval1d, "1w": Interval1w, "w": Interval1w, "1mo": Interval1M,
}

// ParseInterval accepts Bybit interval codes ("60", "D") and the short forms ("1h", "1d")
func ParseInterval(s string) (KlineInterval, error) {
	trimmed := strings.TrimSpace(s)
	if _, ok := intervalDurations[KlineInterval(trimmed)]; ok {
		return KlineInterval(trimmed), nil
	}
	if iv, ok := intervalAliases[strings.ToLower(trimmed)]; ok {
		return iv, nil
	}
	return "", fmt.Errorf("unsupported kline interval %q", s)
}

// Duration returns the bar length. Monthly bars are approximated as 30 days.
func (k KlineInterval) Duration() time.Duration {
	return intervalDurations[k]
}

// Kline represents a single kline/candlestick data point
type Kline struct {
	StartTime  time.Time
	OpenPrice  float64
	HighPrice  float64
	LowPrice   float64
	ClosePrice float64
	Volume     float64
	Turnover   float64
}

// KlineParams holds parameters for fetching kline data
type KlineParams struct {
	Category string        // "spot", "linear", "inverse"
	Symbol   string        // Trading pair symbol (e.g., "BTCUSDT")
	Interval KlineInterval // Time interval
	Start    *time.Time    // Start time (optional)
	End      *time.Time    // End time (optional)
	Limit    int           // Number of records to return (max 1000, default 200)
}

// GetKlines fetches one page of klines, retried on transient failures. Klines are returned
// oldest first.
func (c *Client) GetKlines(ctx context.Context, params KlineParams) ([]Kline, error) {
	if params.Category == "" {
		params.Category = "spot"
	}
	if params.Limit == 0 {
		params.Limit = 200
	}
	if params.Limit > MaxKlineLimit {
		params.Limit = MaxKlineLimit
	}

	reqParams := map[string]interface{}{
		"category": params.Category,
		"symbol":   params.Symbol,
		"interval": string(params.Interval),
		"limit":    params.Limit,
	}
	if params.Start != nil {
		reqParams["start"] = params.Start.UnixMilli()
	}
	if params.End != nil {
		reqParams["end"] = params.End.UnixMilli()
	}

	var klines []Kline
	err := c.RetryWithConfig(ctx, "get klines", func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		result, err := c.httpClient.NewUtaBybitServiceWithParams(reqParams).GetMarketKline(ctx)
		if err != nil {
			return err
		}

		var page klineResult
		if err := decodeResult(result, &page); err != nil {
			return err
		}

		klines = make([]Kline, 0, len(page.List))
		for _, row := range page.List {
			k, err := parseKlineRow(row)
			if err != nil {
				return err
			}
			klines = append(klines, k)
		}
		return nil
	}, c.retry)
	if err != nil {
		return nil, err
	}

	sort.Slice(klines, func(i, j int) bool {
		return klines[i].StartTime.Before(klines[j].StartTime)
	})
	return klines, nil
}

// HistoryParams describes a multi-page kline download
type HistoryParams struct {
	Category string
	Symbol   string
	Interval KlineInterval
	Start    time.Time // zero downloads until the exchange runs out of history
	End      time.Time // zero means now
	PageSize int       // klines per request, MaxKlineLimit when zero
	MaxPages int       // zero means unlimited
}

// GetKlineHistory walks backwards from End in pages until Start is reached or the exchange
// returns a short page. The result is oldest first without duplicates.
func (c *Client) GetKlineHistory(ctx context.Context, params HistoryParams) ([]Kline, error) {
	if params.Symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if params.Interval.Duration() == 0 {
		return nil, fmt.Errorf("unsupported kline interval %q", params.Interval)
	}
	limit := params.PageSize
	if limit <= 0 || limit > MaxKlineLimit {
		limit = MaxKlineLimit
	}
	end := params.End
	if end.IsZero() {
		end = time.Now()
	}

	log := c.logger.WithFields(logrus.Fields{
		"symbol":   params.Symbol,
		"category": params.Category,
		"interval": string(params.Interval),
	})

	seen := make(map[int64]struct{})
	var all []Kline

	for page := 1; ; page++ {
		pageEnd := end
		req := KlineParams{
			Category: params.Category,
			Symbol:   params.Symbol,
			Interval: params.Interval,
			End:      &pageEnd,
			Limit:    limit,
		}
		if !params.Start.IsZero() {
			start := params.Start
			req.Start = &start
		}

		batch, err := c.GetKlines(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("page %d ending %s: %w", page, pageEnd.Format(time.RFC3339), err)
		}
		if len(batch) == 0 {
			break
		}

		added := 0
		for _, k := range batch {
			if !params.Start.IsZero() && k.StartTime.Before(params.Start) {
				continue
			}
			ms := k.StartTime.UnixMilli()
			if _, dup := seen[ms]; dup {
				continue
			}
			seen[ms] = struct{}{}
			all = append(all, k)
			added++
		}

		oldest := batch[0].StartTime
		log.WithFields(logrus.Fields{
			"page":   page,
			"added":  added,
			"oldest": oldest.Format(time.RFC3339),
		}).Debug("kline page fetched")

		if len(batch) < limit || added == 0 {
			break
		}
		if !params.Start.IsZero() && !oldest.After(params.Start) {
			break
		}
		if params.MaxPages > 0 && page >= params.MaxPages {
			break
		}
		end = oldest.Add(-time.Millisecond)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].StartTime.Before(all[j].StartTime)
	})
	log.WithField("klines", len(all)).Info("kline history downloaded")
	return all, nil
}
