package colour

import (
	"errors"
	"fmt"
)

var (
	// ErrHueLost is returned when gamut mapping collapses a chromatic
	// colour to grey, losing its hue.
	ErrHueLost = errors.New("hue information lost")

	errDegenerate    = errors.New("degenerate numeric input")
	errNoConvergence = errors.New("gamut mapping did not converge")
)

// ConversionError reports a colour-space conversion or gamut operation that
// could not produce a valid result.
type ConversionError struct {
	Op    string // operation, e.g. "hex", "clamp", "parse"
	Input string // offending input as text
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("colour %s conversion of %q failed: %v", e.Op, e.Input, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// TransformationError reports an optical transform that lost hue
// information or could not be gamut mapped.
type TransformationError struct {
	Reference string
	Target    string
	Err       error
}

func (e *TransformationError) Error() string {
	return fmt.Sprintf("optical transform %s -> %s failed: %v", e.Reference, e.Target, e.Err)
}

func (e *TransformationError) Unwrap() error {
	return e.Err
}
