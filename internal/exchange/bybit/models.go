package bybit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// ParseError reports a response that could not be decoded. It is never retried.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// klineResult is the result object of /v5/market/kline
type klineResult struct {
	Symbol   string     `json:"symbol"`
	Category string     `json:"category"`
	List     [][]string `json:"list"` // newest first
}

// decodeResult checks retCode and decodes the result object of a ServerResponse into out
func decodeResult(response interface{}, out interface{}) error {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok || serverResp == nil {
		return &ParseError{Field: "response", Value: fmt.Sprintf("%T", response), Err: fmt.Errorf("unexpected response type")}
	}
	if err := ParseAPIError(serverResp.RetCode, serverResp.RetMsg); err != nil {
		return err
	}

	raw, err := json.Marshal(serverResp.Result)
	if err != nil {
		return &ParseError{Field: "result", Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ParseError{Field: "result", Value: truncate(string(raw), 120), Err: err}
	}
	return nil
}

// parseKlineRow converts [startTime, open, high, low, close, volume, turnover]
func parseKlineRow(row []string) (Kline, error) {
	if len(row) < 7 {
		return Kline{}, &ParseError{Field: "kline", Value: fmt.Sprint(row), Err: fmt.Errorf("expected 7 fields, got %d", len(row))}
	}

	ms, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return Kline{}, &ParseError{Field: "startTime", Value: row[0], Err: err}
	}

	names := [...]string{"open", "high", "low", "close", "volume", "turnover"}
	var values [6]float64
	for i := range values {
		v, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return Kline{}, &ParseError{Field: names[i], Value: row[i+1], Err: err}
		}
		values[i] = v
	}

	return Kline{
		StartTime:  time.UnixMilli(ms).UTC(),
		OpenPrice:  values[0],
		HighPrice:  values[1],
		LowPrice:   values[2],
		ClosePrice: values[3],
		Volume:     values[4],
		Turnover:   values[5],
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
