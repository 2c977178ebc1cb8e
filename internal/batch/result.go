package batch

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/tonal/internal/colour"
	"github.com/jmylchreest/tonal/internal/generator"
	"github.com/jmylchreest/tonal/internal/pattern"
)

// Result is the terminal output of one batch invocation.
type Result struct {
	ID           string                     `json:"id"`
	GroupName    string                     `json:"group_name"`
	OutputFormat colour.Format              `json:"output_format"`
	Pattern      string                     `json:"pattern"`
	GeneratedAt  time.Time                  `json:"generated_at"`
	Palettes     []*generator.PaletteResult `json:"palettes"`
	Failures     []ItemFailure              `json:"failures"`
}

// Partial reports whether some items failed.
func (r *Result) Partial() bool {
	return len(r.Failures) > 0
}

// ItemFailure attributes a failed batch item to the input that produced it.
type ItemFailure struct {
	// Index is the item's position in the batch input.
	Index int `json:"index"`

	// Colour is the anchor (or transform target) colour as given.
	Colour string `json:"colour"`

	// Reference is set for optical transform items.
	Reference string `json:"reference,omitempty"`

	Stop  pattern.Stop `json:"stop"`
	Error string       `json:"error"`
}

func (f ItemFailure) String() string {
	if f.Reference != "" {
		return fmt.Sprintf("%s -> %s @ %s: %s", f.Reference, f.Colour, f.Stop, f.Error)
	}
	return fmt.Sprintf("%s @ %s: %s", f.Colour, f.Stop, f.Error)
}

// GenerationError is returned when every item in a batch failed.
type GenerationError struct {
	Failures []ItemFailure
}

func (e *GenerationError) Error() string {
	lines := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		lines[i] = f.String()
	}
	return fmt.Sprintf("all %d batch items failed: %s", len(e.Failures), strings.Join(lines, "; "))
}
