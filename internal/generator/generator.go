// Package generator synthesises ten-stop palettes from a single anchor
// colour and a transformation pattern.
package generator

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/jmylchreest/tonal/internal/colour"
	"github.com/jmylchreest/tonal/internal/pattern"
)

// multiplierFloor keeps pattern multipliers away from zero when inverting.
const multiplierFloor = 0.001

// Request describes one palette to generate.
type Request struct {
	// Name labels the palette. Defaults to the anchor colour's hex.
	Name string

	// Colour is the anchor colour in any format accepted by colour.Parse.
	Colour string

	// Stop is the position the anchor colour represents.
	Stop pattern.Stop
}

// Generate parses the request's anchor colour and synthesises the palette.
func Generate(req Request, p *pattern.Pattern, format colour.Format) (*PaletteResult, error) {
	anchor, err := colour.Parse(req.Colour)
	if err != nil {
		return nil, &GeneratePaletteError{Input: req.Colour, Stop: req.Stop, Err: err}
	}
	return GenerateColour(req.Name, req.Colour, anchor, req.Stop, p, format)
}

// GenerateColour synthesises all ten stops from an already parsed anchor.
// input is the caller's textual form of the anchor, kept for context.
//
// The anchor is first mapped back to its reference-equivalent colour by
// inverting the pattern at anchorStop; every other stop then applies its own
// transform to that colour, and anchorStop carries the anchor unchanged. Each stop is gamut-mapped independently. A stop
// whose chroma collapses to zero is kept (as grey) and reported in
// PaletteResult.Failures rather than failing the palette.
func GenerateColour(name, input string, anchor colour.Colour, anchorStop pattern.Stop, p *pattern.Pattern, format colour.Format) (*PaletteResult, error) {
	fail := func(err error) error {
		return &GeneratePaletteError{Input: input, Stop: anchorStop, Err: err}
	}
	if !anchorStop.Valid() {
		return nil, fail(fmt.Errorf("invalid anchor stop %d", anchorStop))
	}
	if p == nil {
		return nil, fail(errors.New("no pattern loaded"))
	}
	if !slices.Contains(colour.ValidFormats(), format) {
		return nil, fail(fmt.Errorf("unknown output format: %s", format))
	}

	anchorHex, err := colour.ToHex(anchor)
	if err != nil {
		return nil, fail(err)
	}
	if name == "" {
		name = anchorHex
	}

	ref := referenceEquivalent(anchor, p.Transform(anchorStop))

	result := &PaletteResult{
		Name:       name,
		Input:      input,
		Anchor:     anchor,
		AnchorStop: anchorStop,
		Pattern:    p.Name,
		Format:     format,
	}

	for i, stop := range pattern.Stops() {
		candidate := apply(ref, p.Transform(stop))
		if stop == anchorStop {
			// Multipliers below multiplierFloor do not round-trip.
			candidate = anchor
		}
		clamped, err := colour.ClampToGamut(candidate)
		if err != nil {
			return nil, fail(fmt.Errorf("stop %s: %w", stop, err))
		}
		if clamped.Chroma == 0 && !candidate.IsAchromatic() {
			result.Failures = append(result.Failures, StopFailure{
				Stop:   stop,
				Reason: colour.ErrHueLost.Error(),
			})
		}

		value, err := colour.FormatColour(clamped, format)
		if err != nil {
			return nil, fail(fmt.Errorf("stop %s: %w", stop, err))
		}
		result.Stops[i] = FormattedStop{
			Position: stop,
			Colour:   clamped,
			Value:    value,
			Clamped:  clamped != candidate,
		}
	}
	return result, nil
}

// referenceEquivalent inverts a stop transform: it recovers what the anchor
// would look like at the pattern's reference stop.
func referenceEquivalent(anchor colour.Colour, t pattern.StopTransform) colour.Colour {
	ref := anchor
	ref.Lightness = anchor.Lightness / math.Max(t.LightnessMultiplier, multiplierFloor)
	ref.Chroma = anchor.Chroma / math.Max(t.ChromaMultiplier, multiplierFloor)
	if !math.IsNaN(anchor.Hue) {
		ref.Hue = colour.NormalizeHue(anchor.Hue - t.HueShift)
	}
	return ref
}

// apply maps a reference-stop colour to a stop.
func apply(ref colour.Colour, t pattern.StopTransform) colour.Colour {
	out := ref
	out.Lightness = ref.Lightness * t.LightnessMultiplier
	out.Chroma = ref.Chroma * t.ChromaMultiplier
	if !math.IsNaN(ref.Hue) {
		out.Hue = colour.NormalizeHue(ref.Hue + t.HueShift)
	}
	return out
}
