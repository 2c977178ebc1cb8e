package colour

import "math"

const (
	// gamutEpsilon is the per-channel sRGB slack accepted as in gamut. It
	// absorbs conversion round-off without admitting visible clipping.
	gamutEpsilon = 1e-6

	// chromaPrecision is the chroma interval at which the gamut search stops.
	chromaPrecision = 1e-6

	// maxGamutIterations bounds the chroma bisection.
	maxGamutIterations = 64
)

// IsDisplayable reports whether the colour maps into the sRGB gamut
// without clipping.
func IsDisplayable(c Colour) bool {
	if !c.valid() {
		return false
	}
	if c.Lightness < -gamutEpsilon || c.Lightness > 1+gamutEpsilon {
		return false
	}
	cf := c.toColorful()
	return inUnit(cf.R) && inUnit(cf.G) && inUnit(cf.B)
}

func inUnit(v float64) bool {
	return v >= -gamutEpsilon && v <= 1+gamutEpsilon
}

// ClampToGamut maps the colour into sRGB by reducing chroma at constant
// lightness and hue. Lightness is first clamped to [0, 1]. The returned
// colour always satisfies IsDisplayable.
//
// When no chroma survives the result has Chroma exactly 0 but keeps the
// input hue so callers can detect the collapse.
func ClampToGamut(c Colour) (Colour, error) {
	if !c.valid() {
		return Colour{}, &ConversionError{Op: "clamp", Input: c.String(), Err: errDegenerate}
	}

	out := c
	out.Lightness = clampUnit(c.Lightness)
	out.Alpha = clampUnit(c.Alpha)
	if !math.IsNaN(c.Hue) {
		out.Hue = NormalizeHue(c.Hue)
	}
	if IsDisplayable(out) {
		return out, nil
	}

	lo, hi := 0.0, out.Chroma
	probe := out
	for i := 0; i < maxGamutIterations && hi-lo > chromaPrecision; i++ {
		probe.Chroma = (lo + hi) / 2
		if IsDisplayable(probe) {
			lo = probe.Chroma
		} else {
			hi = probe.Chroma
		}
	}

	out.Chroma = lo
	if out.Chroma < achromaticChroma {
		out.Chroma = 0
	}
	if !IsDisplayable(out) {
		return Colour{}, &ConversionError{Op: "clamp", Input: c.String(), Err: errNoConvergence}
	}
	return out, nil
}
