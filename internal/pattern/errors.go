package pattern

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPalettes is returned when extraction is given no example palettes.
	ErrNoPalettes = errors.New("no example palettes")

	// ErrMissingReference is returned when an example palette lacks the
	// reference stop.
	ErrMissingReference = errors.New("missing reference stop")

	// ErrEmptyHueSet is returned when a circular mean has no inputs.
	ErrEmptyHueSet = errors.New("empty hue-shift set")
)

// ExtractionError reports an example palette set that cannot yield a pattern.
type ExtractionError struct {
	Palette string // empty when the error concerns the whole set
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Palette == "" {
		return fmt.Sprintf("pattern extraction failed: %v", e.Err)
	}
	return fmt.Sprintf("pattern extraction failed for palette %q: %v", e.Palette, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// InterpolationError reports a smoothing step that could not compute a value.
type InterpolationError struct {
	Op  string
	Err error
}

func (e *InterpolationError) Error() string {
	return fmt.Sprintf("interpolation %s failed: %v", e.Op, e.Err)
}

func (e *InterpolationError) Unwrap() error {
	return e.Err
}
