package pattern

import (
	"fmt"

	"github.com/jmylchreest/tonal/internal/colour"
)

// PaletteStop is a colour at a stop position.
type PaletteStop struct {
	Position Stop          `json:"position"`
	Colour   colour.Colour `json:"colour"`
}

// Palette is a named set of exactly ten stops indexed by Stop.Index.
// A zero Palette has no stops set; use NewPalette to build a valid one.
type Palette struct {
	Name  string
	Stops [StopCount]PaletteStop
}

// NewPalette builds a palette from stops, which must cover every position
// exactly once.
func NewPalette(name string, stops []PaletteStop) (*Palette, error) {
	if name == "" {
		return nil, &ExtractionError{Err: fmt.Errorf("palette name must not be empty")}
	}
	if len(stops) != StopCount {
		return nil, &ExtractionError{Palette: name, Err: fmt.Errorf("expected %d stops, got %d", StopCount, len(stops))}
	}

	p := &Palette{Name: name}
	for _, s := range stops {
		if !s.Position.Valid() {
			return nil, &ExtractionError{Palette: name, Err: fmt.Errorf("invalid stop position %d", s.Position)}
		}
		if p.Has(s.Position) {
			return nil, &ExtractionError{Palette: name, Err: fmt.Errorf("duplicate stop %s", s.Position)}
		}
		p.Stops[s.Position.Index()] = s
	}
	return p, nil
}

// ParsePalette builds a palette from textual colours keyed by stop
// position, as found in example-palette files.
func ParsePalette(name string, colours map[string]string) (*Palette, error) {
	stops := make([]PaletteStop, 0, len(colours))
	for key, value := range colours {
		stop, err := ParseStop(key)
		if err != nil {
			return nil, &ExtractionError{Palette: name, Err: err}
		}
		c, err := colour.Parse(value)
		if err != nil {
			return nil, &ExtractionError{Palette: name, Err: fmt.Errorf("stop %s: %w", stop, err)}
		}
		stops = append(stops, PaletteStop{Position: stop, Colour: c})
	}
	return NewPalette(name, stops)
}

// Has reports whether the stop position is set.
func (p *Palette) Has(s Stop) bool {
	return s.Valid() && p.Stops[s.Index()].Position == s
}

// At returns the colour at a stop.
func (p *Palette) At(s Stop) colour.Colour {
	return p.Stops[s.Index()].Colour
}
