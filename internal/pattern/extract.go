package pattern

import (
	"math"
	"slices"

	"github.com/jmylchreest/tonal/internal/colour"
)

const (
	// ratioFloor keeps reference lightness and chroma away from zero when
	// dividing.
	ratioFloor = 0.001

	// singleSourceConfidence is the confidence given to a pattern learned
	// from one palette.
	singleSourceConfidence = 0.8
)

// Extract derives raw per-stop ratios from example palettes, relative to
// each palette's reference stop. With several palettes each ratio is the
// median across palettes.
func Extract(name string, palettes []*Palette) (*Pattern, error) {
	if len(palettes) == 0 {
		return nil, &ExtractionError{Err: ErrNoPalettes}
	}

	// samples[stop][source]
	var samples [StopCount][]StopTransform
	for _, p := range palettes {
		if p == nil || !p.Has(ReferenceStop) {
			paletteName := ""
			if p != nil {
				paletteName = p.Name
			}
			return nil, &ExtractionError{Palette: paletteName, Err: ErrMissingReference}
		}
		ratios := paletteRatios(p)
		for i := range samples {
			samples[i] = append(samples[i], ratios[i])
		}
	}

	out := &Pattern{
		Name:          name,
		ReferenceStop: ReferenceStop,
		Metadata: Metadata{
			SourceCount: len(palettes),
			Confidence:  confidence(samples),
		},
	}
	for i, s := range samples {
		out.Transforms[i] = StopTransform{
			LightnessMultiplier: median(component(s, func(t StopTransform) float64 { return t.LightnessMultiplier })),
			ChromaMultiplier:    median(component(s, func(t StopTransform) float64 { return t.ChromaMultiplier })),
			HueShift:            median(component(s, func(t StopTransform) float64 { return t.HueShift })),
		}
	}
	out.Transforms[ReferenceStop.Index()] = Identity
	return out, nil
}

// paletteRatios computes one palette's transforms relative to its
// reference stop. Stops missing from the palette keep the identity.
func paletteRatios(p *Palette) [StopCount]StopTransform {
	ref := p.At(ReferenceStop)
	refL := math.Max(ref.Lightness, ratioFloor)
	refC := math.Max(ref.Chroma, ratioFloor)

	var out [StopCount]StopTransform
	for i, s := range p.Stops {
		if !p.Has(StopAt(i)) {
			out[i] = Identity
			continue
		}
		c := s.Colour
		t := StopTransform{
			LightnessMultiplier: c.Lightness / refL,
			ChromaMultiplier:    c.Chroma / refC,
		}
		// Hue is meaningless for greys.
		if !ref.IsAchromatic() && !c.IsAchromatic() {
			t.HueShift = colour.HueDifference(ref.Hue, c.Hue)
		}
		out[i] = t
	}
	out[ReferenceStop.Index()] = Identity
	return out
}

func component(ts []StopTransform, get func(StopTransform) float64) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = get(t)
	}
	return out
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}

// confidence is fixed for a single source; otherwise one minus the mean
// spread of lightness and chroma ratios over the non-reference stops.
func confidence(samples [StopCount][]StopTransform) float64 {
	if len(samples[0]) <= 1 {
		return singleSourceConfidence
	}

	var total float64
	var n int
	for i, s := range samples {
		if StopAt(i) == ReferenceStop {
			continue
		}
		l := stddev(component(s, func(t StopTransform) float64 { return t.LightnessMultiplier }))
		c := stddev(component(s, func(t StopTransform) float64 { return t.ChromaMultiplier }))
		total += (l + c) / 2
		n++
	}
	return math.Max(0, math.Min(1, 1-total/float64(n)))
}
