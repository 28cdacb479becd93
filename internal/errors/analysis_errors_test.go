package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisError_IsMatchesSentinelOfKind(t *testing.T) {
	err := NewInsufficientRangeError("scanner", "Scan", "need %d offsets", 120)

	assert.True(t, stderrors.Is(err, ErrInsufficientRange))
	assert.False(t, stderrors.Is(err, ErrInsufficientData))
	assert.True(t, IsInsufficientRange(err))
	assert.False(t, IsConfig(err))
}

func TestAnalysisError_SurvivesFmtWrapping(t *testing.T) {
	base := NewConfigError("config", "Validate", "exclusion factor must be >= 2, got %d", 1)
	wrapped := fmt.Errorf("run failed: %w", base)

	assert.True(t, IsConfig(wrapped))
	assert.Equal(t, ErrorKindConfig, KindOf(wrapped))
}

func TestWrapError_KeepsUnderlying(t *testing.T) {
	err := WrapError(io.ErrUnexpectedEOF, ErrorKindData, "csv", "LoadData")

	assert.True(t, IsData(err))
	assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))
	assert.Contains(t, err.Error(), "[DATA:csv] LoadData")
	assert.Contains(t, err.Error(), io.ErrUnexpectedEOF.Error())
}

func TestWrapError_NilIsNil(t *testing.T) {
	assert.Nil(t, WrapError(nil, ErrorKindData, "csv", "LoadData"))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(io.EOF))
}

func TestWithContext(t *testing.T) {
	err := NewDataError("series", "NewSeries", "duplicate timestamp").WithContext("index", 4)
	assert.Equal(t, 4, err.Context["index"])
}
