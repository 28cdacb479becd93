package data

import (
	"strings"

	"github.com/sirupsen/logrus"

	apperrors "github.com/ducminhle1904/dtw-pattern-finder/internal/errors"
)

// Source names accepted by NewProvider
const (
	SourceCSV   = "csv"
	SourceBybit = "bybit"
)

// NewProvider builds the cached provider for a source name. client is only used for bybit.
func NewProvider(source string, client KlineSource, logger logrus.FieldLogger) (DataProvider, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case SourceCSV:
		return NewCachedProvider(NewCSVProvider(logger), logger), nil
	case SourceBybit:
		if client == nil {
			return nil, apperrors.NewConfigError(component, "NewProvider", "bybit source needs a client")
		}
		return NewCachedProvider(NewBybitProvider(client, logger), logger), nil
	}
	return nil, apperrors.NewConfigError(component, "NewProvider", "unknown data source %q (csv, bybit)", source)
}
