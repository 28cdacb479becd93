package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ducminhle1904/dtw-pattern-finder/internal/errors"
	"github.com/ducminhle1904/dtw-pattern-finder/internal/exchange/bybit"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/types"
)

var day0 = time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)

func generateTestData(n int) []types.OHLCV {
	data := make([]types.OHLCV, n)
	for i := range data {
		p := 100 + float64(i)
		data[i] = types.OHLCV{
			Timestamp: day0.AddDate(0, 0, i),
			Open:      p - 0.25,
			High:      p + 1,
			Low:       p - 1,
			Close:     p,
			Volume:    1000 + float64(i),
		}
	}
	return data
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestWriteAndLoadCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bybit", "spot", "BTCUSDT", "D", "candles.csv")
	original := generateTestData(30)
	require.NoError(t, WriteCandlesCSV(path, original))

	loaded, err := NewCSVProvider(nil).LoadData(context.Background(), LoadRequest{Source: path})
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestCSVProvider_DateBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, WriteCandlesCSV(path, generateTestData(30)))

	loaded, err := NewCSVProvider(nil).LoadData(context.Background(), LoadRequest{
		Source: path,
		Start:  day0.AddDate(0, 0, 10),
		End:    day0.AddDate(0, 0, 19),
	})
	require.NoError(t, err)
	require.Len(t, loaded, 10)
	assert.Equal(t, day0.AddDate(0, 0, 10), loaded[0].Timestamp)
}

func TestCSVProvider_AcceptsTimestampVariants(t *testing.T) {
	path := writeFile(t, "timestamp,open,high,low,close,volume\n"+
		"2023-05-01,1,2,0.5,1.5,10\n"+
		"2023-05-02T00:00:00Z,1,2,0.5,1.6,10\n"+
		"1683072000000,1,2,0.5,1.7,10\n")

	loaded, err := NewCSVProvider(nil).LoadData(context.Background(), LoadRequest{Source: path})
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, day0.AddDate(0, 0, 2), loaded[2].Timestamp)
	assert.Equal(t, 1.7, loaded[2].Close)
}

func TestCSVProvider_InvalidRow(t *testing.T) {
	content := "timestamp,open,high,low,close,volume\n" +
		"2023-05-01 00:00:00,1,2,0.5,1.5,10\n" +
		"2023-05-02 00:00:00,1,2,0.5,NaNish,10\n" +
		"2023-05-03 00:00:00,1,2,0.5,1.5,10\n"
	path := writeFile(t, content)

	_, err := NewCSVProvider(nil).LoadData(context.Background(), LoadRequest{Source: path})
	require.Error(t, err)
	assert.True(t, apperrors.IsData(err))
	assert.Contains(t, err.Error(), "line 3")

	lenient := NewCSVProvider(nil)
	lenient.SkipInvalidRows = true
	loaded, err := lenient.LoadData(context.Background(), LoadRequest{Source: path})
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestCSVProvider_MissingFileIsDataError(t *testing.T) {
	_, err := NewCSVProvider(nil).LoadData(context.Background(), LoadRequest{Source: filepath.Join(t.TempDir(), "nope.csv")})
	require.Error(t, err)
	assert.True(t, apperrors.IsData(err))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = NewCSVProvider(nil).LoadData(context.Background(), LoadRequest{})
	assert.True(t, apperrors.IsConfig(err))
}

func TestValidateData(t *testing.T) {
	p := NewCSVProvider(nil)
	assert.NoError(t, p.ValidateData(generateTestData(5)))
	assert.True(t, apperrors.IsData(p.ValidateData(nil)))

	bad := generateTestData(5)
	bad[2].Close = 0
	assert.True(t, apperrors.IsData(p.ValidateData(bad)))

	unordered := generateTestData(5)
	unordered[3], unordered[4] = unordered[4], unordered[3]
	assert.True(t, apperrors.IsData(p.ValidateData(unordered)))
}

func TestDataFilter(t *testing.T) {
	f := NewDefaultDataFilter()
	data := generateTestData(10)

	assert.Len(t, f.FilterByDateRange(data, time.Time{}, time.Time{}), 10)
	assert.Len(t, f.FilterByDateRange(data, day0.AddDate(0, 0, 8), time.Time{}), 2)
	assert.Len(t, f.FilterByDateRange(data, time.Time{}, day0.AddDate(0, 0, 1)), 2)

	shuffled := []types.OHLCV{data[3], data[1], data[2]}
	sorted := f.SortByTimestamp(shuffled)
	assert.NoError(t, f.ValidateTimeSequence(sorted))
	assert.Error(t, f.ValidateTimeSequence(shuffled))
	assert.Equal(t, data[3], shuffled[0], "input left untouched")

	dup := []types.OHLCV{data[1], data[1]}
	assert.Error(t, f.ValidateTimeSequence(dup))
}

type countingProvider struct {
	calls int
	data  []types.OHLCV
}

func (c *countingProvider) LoadData(ctx context.Context, req LoadRequest) ([]types.OHLCV, error) {
	c.calls++
	return c.data, nil
}
func (c *countingProvider) ValidateData(data []types.OHLCV) error { return nil }
func (c *countingProvider) GetName() string                       { return "Counting" }

func TestCachedProvider(t *testing.T) {
	inner := &countingProvider{data: generateTestData(3)}
	p := NewCachedProvider(inner, nil)
	req := LoadRequest{Source: "x.csv", Symbol: "btcusdt"}

	first, err := p.LoadData(context.Background(), req)
	require.NoError(t, err)
	first[0].Close = -1

	second, err := p.LoadData(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 100.0, second[0].Close, "cache hands out copies")
	assert.Equal(t, "Cached Counting", p.GetName())
	assert.Equal(t, 1, p.GetCacheSize())

	_, err = p.LoadData(context.Background(), LoadRequest{Source: "x.csv", Symbol: "btcusdt", Start: day0})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "different bounds are a different key")

	p.ClearCache()
	assert.Equal(t, 0, p.GetCacheSize())
}

func TestFileLocator(t *testing.T) {
	root := t.TempDir()
	path := CandlesPath(root, "bybit", "linear", "ethusdt", "4h")
	assert.Equal(t, filepath.Join(root, "bybit", "linear", "ETHUSDT", "240", "candles.csv"), path)
	require.NoError(t, WriteCandlesCSV(path, generateTestData(2)))

	locator := NewDefaultFileLocator(nil)
	assert.Equal(t, path, locator.FindDataFile(root, "bybit", "ETHUSDT", "240"))
	assert.Empty(t, locator.FindDataFile(root, "bybit", "BTCUSDT", "240"))
}

type fakeKlines struct {
	klines []bybit.Kline
	err    error
	got    bybit.HistoryParams
}

func (f *fakeKlines) GetKlineHistory(ctx context.Context, params bybit.HistoryParams) ([]bybit.Kline, error) {
	f.got = params
	return f.klines, f.err
}

func TestBybitProvider(t *testing.T) {
	src := &fakeKlines{klines: []bybit.Kline{
		{StartTime: day0, OpenPrice: 1, HighPrice: 3, LowPrice: 0.5, ClosePrice: 2, Volume: 7},
		{StartTime: day0.AddDate(0, 0, 1), OpenPrice: 2, HighPrice: 4, LowPrice: 1, ClosePrice: 3, Volume: 8},
	}}
	p := NewBybitProvider(src, nil)

	candles, err := p.LoadData(context.Background(), LoadRequest{Symbol: "btcusdt", Interval: "1d", Start: day0})
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 3.0, candles[1].Close)
	assert.Equal(t, "BTCUSDT", src.got.Symbol)
	assert.Equal(t, bybit.Interval1d, src.got.Interval)
	assert.Equal(t, "spot", src.got.Category)
	assert.Equal(t, day0, src.got.Start)
}

func TestBybitProvider_Errors(t *testing.T) {
	_, err := NewBybitProvider(&fakeKlines{}, nil).LoadData(context.Background(), LoadRequest{Symbol: "BTCUSDT", Interval: "7m"})
	assert.True(t, apperrors.IsConfig(err))

	_, err = NewBybitProvider(&fakeKlines{}, nil).LoadData(context.Background(), LoadRequest{Symbol: "BTCUSDT", Interval: "D"})
	assert.True(t, apperrors.IsData(err), "empty history")

	failing := &fakeKlines{err: bybit.NewBybitError(10001, "params error")}
	_, err = NewBybitProvider(failing, nil).LoadData(context.Background(), LoadRequest{Symbol: "BTCUSDT", Interval: "D"})
	assert.True(t, apperrors.IsData(err))
	var bybitErr *bybit.BybitError
	assert.ErrorAs(t, err, &bybitErr)

	cancelled := &fakeKlines{err: context.Canceled}
	_, err = NewBybitProvider(cancelled, nil).LoadData(context.Background(), LoadRequest{Symbol: "BTCUSDT", Interval: "D"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, apperrors.IsData(err))
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider("CSV", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Cached CSV Provider", p.GetName())

	_, err = NewProvider("bybit", nil, nil)
	assert.True(t, apperrors.IsConfig(err))

	p, err = NewProvider("bybit", &fakeKlines{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Cached Bybit Provider", p.GetName())

	_, err = NewProvider("parquet", nil, nil)
	assert.True(t, apperrors.IsConfig(err))
}
