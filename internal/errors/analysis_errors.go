package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorKind represents the failure classes a pattern search run can end with
type ErrorKind string

const (
	// Malformed or unusable raw input (empty series, NaN prices, duplicate timestamps,
	// acquisition failures)
	ErrorKindData ErrorKind = "DATA"
	// Reference window is empty or shorter than configured
	ErrorKindInsufficientData ErrorKind = "INSUFFICIENT_DATA"
	// No search offset survives the exclusion zone
	ErrorKindInsufficientRange ErrorKind = "INSUFFICIENT_RANGE"
	// Invalid parameter rejected before scanning starts
	ErrorKindConfig ErrorKind = "CONFIG"
)

// Sentinel values so callers can use errors.Is without inspecting the struct
var (
	ErrData              = stderrors.New("data error")
	ErrInsufficientData  = stderrors.New("insufficient data")
	ErrInsufficientRange = stderrors.New("insufficient search range")
	ErrConfig            = stderrors.New("configuration error")
)

// AnalysisError represents a categorized error with context
type AnalysisError struct {
	Kind       ErrorKind
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s:%s] %s: %s", e.Kind, e.Component, e.Operation, e.Message)
	if e.Underlying != nil {
		fmt.Fprintf(&b, ": %v", e.Underlying)
	}
	return b.String()
}

// Unwrap returns the underlying error for error unwrapping
func (e *AnalysisError) Unwrap() error {
	return e.Underlying
}

// Is matches the sentinel belonging to the error kind
func (e *AnalysisError) Is(target error) bool {
	return target == sentinelFor(e.Kind)
}

// WithContext adds context information to the error
func (e *AnalysisError) WithContext(key string, value interface{}) *AnalysisError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func sentinelFor(kind ErrorKind) error {
	switch kind {
	case ErrorKindData:
		return ErrData
	case ErrorKindInsufficientData:
		return ErrInsufficientData
	case ErrorKindInsufficientRange:
		return ErrInsufficientRange
	case ErrorKindConfig:
		return ErrConfig
	}
	return nil
}

// NewAnalysisError creates a new categorized error
func NewAnalysisError(kind ErrorKind, component, operation, message string) *AnalysisError {
	return &AnalysisError{
		Kind:      kind,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with analysis context
func WrapError(err error, kind ErrorKind, component, operation string) *AnalysisError {
	if err == nil {
		return nil
	}
	return &AnalysisError{
		Kind:       kind,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
	}
}

// KindOf returns the kind of the first AnalysisError in the chain, or "" if there is none
func KindOf(err error) ErrorKind {
	var ae *AnalysisError
	if stderrors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// Common error constructors

func NewDataError(component, operation, format string, args ...interface{}) *AnalysisError {
	return NewAnalysisError(ErrorKindData, component, operation, fmt.Sprintf(format, args...))
}

func NewInsufficientDataError(component, operation, format string, args ...interface{}) *AnalysisError {
	return NewAnalysisError(ErrorKindInsufficientData, component, operation, fmt.Sprintf(format, args...))
}

func NewInsufficientRangeError(component, operation, format string, args ...interface{}) *AnalysisError {
	return NewAnalysisError(ErrorKindInsufficientRange, component, operation, fmt.Sprintf(format, args...))
}

func NewConfigError(component, operation, format string, args ...interface{}) *AnalysisError {
	return NewAnalysisError(ErrorKindConfig, component, operation, fmt.Sprintf(format, args...))
}

// IsData reports whether err is a DataError
func IsData(err error) bool { return stderrors.Is(err, ErrData) }

// IsInsufficientData reports whether err is an InsufficientDataError
func IsInsufficientData(err error) bool { return stderrors.Is(err, ErrInsufficientData) }

// IsInsufficientRange reports whether err is an InsufficientRangeError
func IsInsufficientRange(err error) bool { return stderrors.Is(err, ErrInsufficientRange) }

// IsConfig reports whether err is a ConfigError
func IsConfig(err error) bool { return stderrors.Is(err, ErrConfig) }
