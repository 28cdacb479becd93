package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var firstBar = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeExchange serves total daily klines starting at firstBar, honouring start, end and limit
// the way /v5/market/kline does (newest first)
type fakeExchange struct {
	total    int
	requests int32
	failures int32 // leading requests answered with a rate limit error
}

func (f *fakeExchange) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := atomic.AddInt32(&f.requests, 1)
	if r.URL.Path != "/v5/market/kline" {
		http.NotFound(w, r)
		return
	}
	if n <= atomic.LoadInt32(&f.failures) {
		writeResponse(w, ErrCodeRateLimitExceeded, "Too many visits!", map[string]interface{}{})
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	endMs := int64(1 << 62)
	if v := q.Get("end"); v != "" {
		endMs, _ = strconv.ParseInt(v, 10, 64)
	}
	var startMs int64
	if v := q.Get("start"); v != "" {
		startMs, _ = strconv.ParseInt(v, 10, 64)
	}

	list := [][]string{}
	for i := f.total - 1; i >= 0 && len(list) < limit; i-- {
		ts := firstBar.AddDate(0, 0, i).UnixMilli()
		if ts > endMs || ts < startMs {
			continue
		}
		p := 100 + float64(i)
		list = append(list, []string{
			strconv.FormatInt(ts, 10),
			fmt.Sprint(p - 0.5), fmt.Sprint(p + 1), fmt.Sprint(p - 1), fmt.Sprint(p),
			"10", "1000",
		})
	}

	writeResponse(w, 0, "OK", map[string]interface{}{
		"symbol":   q.Get("symbol"),
		"category": q.Get("category"),
		"list":     list,
	})
}

func writeResponse(w http.ResponseWriter, code int, msg string, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"retCode":    code,
		"retMsg":     msg,
		"result":     result,
		"retExtInfo": map[string]interface{}{},
		"time":       time.Now().UnixMilli(),
	})
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	retry := RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}
	return NewClient(Config{BaseURL: server.URL, Retry: &retry}, nil)
}

func TestGetKlines_ReturnsOldestFirst(t *testing.T) {
	client := newTestClient(t, &fakeExchange{total: 10})

	klines, err := client.GetKlines(context.Background(), KlineParams{Symbol: "BTCUSDT", Interval: Interval1d, Limit: 5})
	require.NoError(t, err)
	require.Len(t, klines, 5)

	assert.Equal(t, firstBar.AddDate(0, 0, 5), klines[0].StartTime)
	assert.Equal(t, firstBar.AddDate(0, 0, 9), klines[4].StartTime)
	assert.Equal(t, 109.0, klines[4].ClosePrice)
	assert.Equal(t, 110.0, klines[4].HighPrice)
	assert.Equal(t, "custom", client.GetEnvironment())
}

func TestGetKlines_RetriesRateLimit(t *testing.T) {
	fake := &fakeExchange{total: 3, failures: 2}
	client := newTestClient(t, fake)

	klines, err := client.GetKlines(context.Background(), KlineParams{Symbol: "BTCUSDT", Interval: Interval1d})
	require.NoError(t, err)
	assert.Len(t, klines, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&fake.requests))
}

func TestGetKlines_GivesUpAfterMaxRetries(t *testing.T) {
	fake := &fakeExchange{total: 3, failures: 100}
	client := newTestClient(t, fake)

	_, err := client.GetKlines(context.Background(), KlineParams{Symbol: "BTCUSDT", Interval: Interval1d})
	require.Error(t, err)
	assert.True(t, IsRateLimitError(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&fake.requests))
}

func TestGetKlines_APIErrorNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeResponse(w, ErrCodeInvalidParameter, "params error: symbol invalid", map[string]interface{}{})
	}))

	_, err := client.GetKlines(context.Background(), KlineParams{Symbol: "NOPE", Interval: Interval1d})
	require.Error(t, err)

	var bybitErr *BybitError
	require.ErrorAs(t, err, &bybitErr)
	assert.Equal(t, ErrCodeInvalidParameter, bybitErr.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetKlines_MalformedRow(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, 0, "OK", map[string]interface{}{
			"list": [][]string{{"1640995200000", "abc", "1", "1", "1", "1", "1"}},
		})
	}))

	_, err := client.GetKlines(context.Background(), KlineParams{Symbol: "BTCUSDT", Interval: Interval1d})
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "open", parseErr.Field)
}

func TestGetKlineHistory_Paginates(t *testing.T) {
	fake := &fakeExchange{total: 2500}
	client := newTestClient(t, fake)

	klines, err := client.GetKlineHistory(context.Background(), HistoryParams{
		Category: "spot",
		Symbol:   "BTCUSDT",
		Interval: Interval1d,
		PageSize: 1000,
		End:      firstBar.AddDate(0, 0, 3000),
	})
	require.NoError(t, err)
	require.Len(t, klines, 2500)

	for i := 1; i < len(klines); i++ {
		require.True(t, klines[i].StartTime.After(klines[i-1].StartTime), "index %d", i)
	}
	assert.Equal(t, firstBar, klines[0].StartTime)
	assert.Equal(t, int32(3), atomic.LoadInt32(&fake.requests))
}

func TestGetKlineHistory_StopsAtStart(t *testing.T) {
	client := newTestClient(t, &fakeExchange{total: 500})

	start := firstBar.AddDate(0, 0, 100)
	klines, err := client.GetKlineHistory(context.Background(), HistoryParams{
		Symbol:   "BTCUSDT",
		Interval: Interval1d,
		Start:    start,
		End:      firstBar.AddDate(0, 0, 499),
		PageSize: 150,
	})
	require.NoError(t, err)
	assert.Len(t, klines, 400)
	assert.Equal(t, start, klines[0].StartTime)
}

func TestGetKlineHistory_Cancelled(t *testing.T) {
	client := newTestClient(t, &fakeExchange{total: 10})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetKlineHistory(ctx, HistoryParams{Symbol: "BTCUSDT", Interval: Interval1d})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseInterval(t *testing.T) {
	for in, want := range map[string]KlineInterval{"D": Interval1d, "1d": Interval1d, "240": Interval4h, "4h": Interval4h, " 60 ": Interval1h} {
		got, err := ParseInterval(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseInterval("7m")
	assert.Error(t, err)

	assert.Equal(t, 24*time.Hour, Interval1d.Duration())
	assert.Equal(t, 4*time.Hour, Interval4h.Duration())
}

func TestCalculateDelay(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}

	assert.Equal(t, 100*time.Millisecond, calculateDelay(0, cfg))
	assert.Equal(t, 400*time.Millisecond, calculateDelay(2, cfg))
	assert.Equal(t, time.Second, calculateDelay(10, cfg))

	cfg.JitterEnabled = true
	d := calculateDelay(1, cfg)
	assert.InDelta(t, float64(200*time.Millisecond), float64(d), float64(20*time.Millisecond))
}

func TestNewClient_RateLimit(t *testing.T) {
	c := NewClient(Config{}, nil)
	assert.Equal(t, float64(DefaultRequestsPerSecond), float64(c.limiter.Limit()))
	assert.Equal(t, DefaultRequestsPerSecond, c.limiter.Burst())

	c = NewClient(Config{RequestsPerSecond: 2}, nil)
	assert.Equal(t, 2.0, float64(c.limiter.Limit()))
}
