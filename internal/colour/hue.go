package colour

import "math"

// NormalizeHue wraps a hue in degrees into [0, 360).
// Negative inputs wrap forward, so -90 becomes 270.
func NormalizeHue(deg float64) float64 {
	h := math.Mod(deg, 360)
	if h < 0 {
		h += 360
	}
	// Tiny negative inputs round up to exactly 360.
	if h >= 360 {
		h = 0
	}
	return h
}

// HueDifference returns the signed shortest angular distance from h1 to h2,
// in (-180, 180]. Positive values mean h2 lies counter-clockwise of h1.
func HueDifference(h1, h2 float64) float64 {
	d := NormalizeHue(h2 - h1)
	if d > 180 {
		d -= 360
	}
	return d
}

// HueDistance returns the unsigned angular distance between two hues,
// between 0 and 180 degrees.
func HueDistance(h1, h2 float64) float64 {
	return math.Abs(HueDifference(h1, h2))
}

// IsAnalogous reports whether two hues lie within 30 degrees of each other.
func IsAnalogous(h1, h2 float64) bool {
	return HueDistance(h1, h2) <= 30
}
