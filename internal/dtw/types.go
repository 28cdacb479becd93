package dtw

import (
	"errors"
	"fmt"
	"strings"
)

// Method selects how the warping grid is evaluated
type Method string

const (
	MethodFull Method = "full"
	MethodBand Method = "band"
	MethodFast Method = "fast"
)

// ParseMethod converts a user supplied method name
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "", MethodFull:
		return MethodFull, nil
	case MethodBand:
		return MethodBand, nil
	case MethodFast:
		return MethodFast, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

var (
	// ErrEmptySequence indicates one or both inputs are empty.
	ErrEmptySequence = errors.New("dtw: input sequences must be non-empty")

	// ErrBadRadius indicates a negative search radius.
	ErrBadRadius = errors.New("dtw: radius must be >= 0")

	// ErrUnknownMethod indicates an unsupported evaluation method.
	ErrUnknownMethod = errors.New("dtw: unknown method")
)

// Options configures a distance computation.
//
// Radius is ignored by MethodFull. For MethodBand it is the band half-width, for MethodFast
// the refinement radius around the projected low resolution path (1 is the usual choice).
type Options struct {
	Method     Method
	Radius     int
	ReturnPath bool
}

// DefaultOptions returns exact DTW without path recovery
func DefaultOptions() Options {
	return Options{
		Method: MethodFull,
		Radius: 1,
	}
}

// Validate checks the option combination
func (o Options) Validate() error {
	switch o.Method {
	case MethodFull, MethodBand, MethodFast:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMethod, o.Method)
	}
	if o.Method != MethodFull && o.Radius < 0 {
		return ErrBadRadius
	}
	return nil
}

// Coord is a cell (I in a, J in b) on the warping path
type Coord struct {
	I int `json:"i"`
	J int `json:"j"`
}
