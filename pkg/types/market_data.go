package types

import (
	"fmt"
	"strings"
	"time"
)

type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// PriceField selects which candle value feeds the analysed series
type PriceField string

const (
	PriceClose   PriceField = "close"
	PriceOpen    PriceField = "open"
	PriceHigh    PriceField = "high"
	PriceLow     PriceField = "low"
	PriceTypical PriceField = "typical" // (high + low + close) / 3
)

// ParsePriceField converts a user supplied field name into a PriceField
func ParsePriceField(s string) (PriceField, error) {
	switch PriceField(strings.ToLower(strings.TrimSpace(s))) {
	case "", PriceClose:
		return PriceClose, nil
	case PriceOpen:
		return PriceOpen, nil
	case PriceHigh:
		return PriceHigh, nil
	case PriceLow:
		return PriceLow, nil
	case PriceTypical:
		return PriceTypical, nil
	}
	return "", fmt.Errorf("unknown price field %q (close, open, high, low, typical)", s)
}

// Price returns the candle value for the given field
func (c OHLCV) Price(field PriceField) float64 {
	switch field {
	case PriceOpen:
		return c.Open
	case PriceHigh:
		return c.High
	case PriceLow:
		return c.Low
	case PriceTypical:
		return (c.High + c.Low + c.Close) / 3
	default:
		return c.Close
	}
}

// PricePoint is a single (timestamp, price) observation
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}
