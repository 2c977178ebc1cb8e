package generator

import (
	"fmt"

	"github.com/jmylchreest/tonal/internal/colour"
	"github.com/jmylchreest/tonal/internal/pattern"
)

// FormattedStop is a generated stop with its colour rendered in the
// requested output format.
type FormattedStop struct {
	Position pattern.Stop  `json:"position"`
	Colour   colour.Colour `json:"colour"`
	Value    string        `json:"value"`

	// Clamped is set when gamut mapping altered the computed colour.
	Clamped bool `json:"clamped,omitempty"`
}

// StopFailure records a stop that could not be generated faithfully.
type StopFailure struct {
	Stop   pattern.Stop `json:"stop"`
	Reason string       `json:"reason"`
}

// PaletteResult is a generated palette. It always has exactly ten stops.
type PaletteResult struct {
	Name       string                          `json:"name"`
	Input      string                          `json:"input"`
	Anchor     colour.Colour                   `json:"anchor"`
	AnchorStop pattern.Stop                    `json:"anchor_stop"`
	Pattern    string                          `json:"pattern"`
	Format     colour.Format                   `json:"format"`
	Stops      [pattern.StopCount]FormattedStop `json:"stops"`
	Failures   []StopFailure                   `json:"failures,omitempty"`
}

// Stop returns the generated stop at a position.
func (r *PaletteResult) Stop(s pattern.Stop) FormattedStop {
	return r.Stops[s.Index()]
}

// HasFailures reports whether any stop lost its hue during gamut mapping.
func (r *PaletteResult) HasFailures() bool {
	return len(r.Failures) > 0
}

// Values returns the formatted values keyed by stop.
func (r *PaletteResult) Values() map[pattern.Stop]string {
	out := make(map[pattern.Stop]string, pattern.StopCount)
	for _, s := range r.Stops {
		out[s.Position] = s.Value
	}
	return out
}

// GeneratePaletteError wraps any failure while generating a palette with
// the anchor input that triggered it.
type GeneratePaletteError struct {
	Input string
	Stop  pattern.Stop
	Err   error
}

func (e *GeneratePaletteError) Error() string {
	return fmt.Sprintf("failed to generate palette for %q at stop %d: %v", e.Input, e.Stop, e.Err)
}

func (e *GeneratePaletteError) Unwrap() error {
	return e.Err
}
