package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/ducminhle1904/dtw-pattern-finder/internal/errors"
	"github.com/ducminhle1904/dtw-pattern-finder/pkg/types"
)

const component = "data"

// CSVProvider implements DataProvider for CSV files
type CSVProvider struct {
	format CSVColumnMapping
	// SkipInvalidRows logs and drops malformed rows instead of failing the load
	SkipInvalidRows bool
	logger          logrus.FieldLogger
}

// NewCSVProvider creates a new CSV data provider with default format
func NewCSVProvider(logger logrus.FieldLogger) *CSVProvider {
	return NewCSVProviderWithFormat(DefaultCSVFormat, logger)
}

// NewCSVProviderWithFormat creates a new CSV data provider with custom format
func NewCSVProviderWithFormat(format CSVColumnMapping, logger logrus.FieldLogger) *CSVProvider {
	return &CSVProvider{
		format: format,
		logger: orDiscard(logger).WithField("component", "csv_provider"),
	}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadData reads req.Source and applies the Start/End bounds
func (p *CSVProvider) LoadData(ctx context.Context, req LoadRequest) ([]types.OHLCV, error) {
	if req.Source == "" {
		return nil, apperrors.NewConfigError(component, "LoadData", "csv source path is required")
	}
	file, err := os.Open(req.Source)
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrorKindData, component, "LoadData").
			WithContext("file", req.Source)
	}
	defer file.Close()

	data, err := p.read(ctx, file, filepath.Base(req.Source))
	if err != nil {
		return nil, err
	}

	data = NewDefaultDataFilter().FilterByDateRange(data, req.Start, req.End)
	p.logger.WithFields(logrus.Fields{
		"file":    filepath.Base(req.Source),
		"candles": len(data),
	}).Info("csv history loaded")
	return data, nil
}

func (p *CSVProvider) read(ctx context.Context, r io.Reader, name string) ([]types.OHLCV, error) {
	format := p.format
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// Skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, apperrors.NewDataError(component, "LoadData", "%s is empty", name)
		}
		return nil, apperrors.WrapError(err, apperrors.ErrorKindData, component, "LoadData")
	}

	var data []types.OHLCV
	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			return nil, apperrors.NewDataError(component, "LoadData", "error reading %s at line %d: %v", name, lineNum, err)
		}
		if lineNum%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		candle, err := parseRecord(record, format)
		if err != nil {
			if p.SkipInvalidRows {
				p.logger.WithField("line", lineNum).WithError(err).Warn("skipping invalid row")
				continue
			}
			return nil, apperrors.NewDataError(component, "LoadData", "%s line %d: %v", name, lineNum, err).
				WithContext("line", lineNum)
		}
		data = append(data, candle)
	}

	return data, nil
}

func parseRecord(record []string, format CSVColumnMapping) (types.OHLCV, error) {
	if len(record) < format.MinColumns {
		return types.OHLCV{}, fmt.Errorf("expected %d columns, got %d", format.MinColumns, len(record))
	}

	timestamp, err := parseTimestamp(record[format.TimestampCol], format.DateFormat)
	if err != nil {
		return types.OHLCV{}, err
	}

	cols := []struct {
		name string
		idx  int
	}{
		{"open", format.OpenCol},
		{"high", format.HighCol},
		{"low", format.LowCol},
		{"close", format.CloseCol},
		{"volume", format.VolumeCol},
	}
	var v [5]float64
	for i, c := range cols {
		f, err := strconv.ParseFloat(strings.TrimSpace(record[c.idx]), 64)
		if err != nil {
			return types.OHLCV{}, fmt.Errorf("invalid %s %q", c.name, record[c.idx])
		}
		v[i] = f
	}

	return types.OHLCV{
		Timestamp: timestamp,
		Open:      v[0],
		High:      v[1],
		Low:       v[2],
		Close:     v[3],
		Volume:    v[4],
	}, nil
}

// parseTimestamp accepts the configured layout, RFC3339, a plain date or unix milliseconds
func parseTimestamp(raw, layout string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, l := range []string{layout, time.RFC3339, "2006-01-02"} {
		if l == "" {
			continue
		}
		if ts, err := time.Parse(l, raw); err == nil {
			return ts, nil
		}
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}

// ValidateData validates the integrity of loaded data
func (p *CSVProvider) ValidateData(data []types.OHLCV) error {
	return validateCandles(data)
}

func validateCandles(data []types.OHLCV) error {
	if len(data) == 0 {
		return apperrors.NewDataError(component, "ValidateData", "no data provided")
	}

	for i, candle := range data {
		if candle.Open <= 0 || candle.High <= 0 || candle.Low <= 0 || candle.Close <= 0 {
			return apperrors.NewDataError(component, "ValidateData",
				"invalid price data at index %d: prices must be positive", i)
		}
		if candle.High < candle.Low {
			return apperrors.NewDataError(component, "ValidateData",
				"invalid price data at index %d: high (%.4f) cannot be less than low (%.4f)", i, candle.High, candle.Low)
		}
	}

	if err := NewDefaultDataFilter().ValidateTimeSequence(data); err != nil {
		return apperrors.WrapError(err, apperrors.ErrorKindData, component, "ValidateData")
	}
	return nil
}

// WriteCandlesCSV writes candles in DefaultCSVFormat, creating parent directories
func WriteCandlesCSV(path string, candles []types.OHLCV) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"timestamp", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}

	for _, c := range candles {
		record := []string{
			c.Timestamp.UTC().Format(DefaultCSVFormat.DateFormat),
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatFloat(c.Volume, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

func orDiscard(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger != nil {
		return logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
