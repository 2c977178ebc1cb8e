// Package colour provides colour-space conversion, gamut mapping and
// formatting for perceptual palette generation.
//
// The canonical representation is OKLCH. RGB, hex and OKLAB are derived
// views computed through go-colorful.
package colour

import (
	"encoding/json"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// achromaticChroma is the chroma below which a colour is treated as grey.
// Conversions of neutral sRGB values leave residual chroma around 1e-8.
const achromaticChroma = 1e-4

// Colour is a colour in OKLCH space.
type Colour struct {
	// Lightness is perceptual lightness in [0, 1].
	Lightness float64 `json:"l"`

	// Chroma is colourfulness, >= 0. sRGB colours stay below ~0.37.
	Chroma float64 `json:"c"`

	// Hue is in degrees. Any range is accepted and normalised on use.
	// Hue carries no meaning when the colour is achromatic and may be NaN.
	Hue float64 `json:"h"`

	// Alpha is opacity in [0, 1].
	Alpha float64 `json:"alpha"`
}

// New returns an opaque OKLCH colour.
func New(lightness, chroma, hue float64) Colour {
	return Colour{Lightness: lightness, Chroma: chroma, Hue: hue, Alpha: 1}
}

// IsAchromatic reports whether the colour has no usable hue.
func (c Colour) IsAchromatic() bool {
	return c.Chroma < achromaticChroma || math.IsNaN(c.Hue)
}

// IsOpaque reports whether alpha is 1.
func (c Colour) IsOpaque() bool {
	return c.Alpha >= 1
}

// valid reports whether the numeric fields can be converted at all.
func (c Colour) valid() bool {
	if math.IsNaN(c.Lightness) || math.IsInf(c.Lightness, 0) {
		return false
	}
	if math.IsNaN(c.Chroma) || math.IsInf(c.Chroma, 0) || c.Chroma < 0 {
		return false
	}
	if math.IsInf(c.Hue, 0) {
		return false
	}
	return !math.IsNaN(c.Alpha)
}

// hueOrZero returns the normalised hue, or 0 for an undefined hue.
func (c Colour) hueOrZero() float64 {
	if math.IsNaN(c.Hue) {
		return 0
	}
	return NormalizeHue(c.Hue)
}

// MarshalJSON writes the hue normalised, and an undefined hue as 0, since
// JSON has no NaN.
func (c Colour) MarshalJSON() ([]byte, error) {
	type plain Colour
	p := plain(c)
	p.Hue = c.hueOrZero()
	return json.Marshal(p)
}

// RGB is an 8-bit sRGB colour.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// OKLAB is a colour in Cartesian OKLAB coordinates.
type OKLAB struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// toColorful converts to an unclamped go-colorful sRGB value.
func (c Colour) toColorful() colorful.Color {
	return colorful.OkLch(c.Lightness, c.Chroma, c.hueOrZero())
}

// fromColorful converts a go-colorful sRGB value to OKLCH.
func fromColorful(cf colorful.Color, alpha float64) Colour {
	l, ch, h := cf.OkLch()
	return Colour{Lightness: l, Chroma: ch, Hue: NormalizeHue(h), Alpha: alpha}
}

// ToHex renders the colour as #rrggbb, or #rrggbbaa when alpha is below 1.
// Out-of-gamut colours are clipped per channel; callers wanting perceptual
// mapping should use ClampToGamut first.
func ToHex(c Colour) (string, error) {
	if !c.valid() {
		return "", &ConversionError{Op: "hex", Input: c.String(), Err: errDegenerate}
	}
	hex := c.toColorful().Clamped().Hex()
	if !c.IsOpaque() {
		hex += byteHex(clampUnit(c.Alpha))
	}
	return hex, nil
}

// FromHex parses a hex colour (#rgb, #rrggbb, #rrggbbaa, with or without #).
func FromHex(s string) (Colour, error) {
	return parseHex(s)
}

// ToRGB converts to 8-bit sRGB, clipping out-of-gamut channels.
func ToRGB(c Colour) (RGB, error) {
	if !c.valid() {
		return RGB{}, &ConversionError{Op: "rgb", Input: c.String(), Err: errDegenerate}
	}
	r, g, b := c.toColorful().Clamped().RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// FromRGB converts 8-bit sRGB to an opaque OKLCH colour.
func FromRGB(rgb RGB) Colour {
	cf := colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}
	return fromColorful(cf, 1)
}

// FromColor converts any image/color value to OKLCH.
func FromColor(c color.Color) Colour {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		// Fully transparent.
		return Colour{Alpha: 0}
	}
	_, _, _, a := c.RGBA()
	return fromColorful(cf, float64(a)/0xffff)
}

// ToOKLAB converts to Cartesian OKLAB.
func ToOKLAB(c Colour) (OKLAB, error) {
	if !c.valid() {
		return OKLAB{}, &ConversionError{Op: "oklab", Input: c.String(), Err: errDegenerate}
	}
	h := c.hueOrZero() * math.Pi / 180
	return OKLAB{
		L: c.Lightness,
		A: c.Chroma * math.Cos(h),
		B: c.Chroma * math.Sin(h),
	}, nil
}

// FromOKLAB converts Cartesian OKLAB to an opaque OKLCH colour.
func FromOKLAB(lab OKLAB) Colour {
	chroma := math.Hypot(lab.A, lab.B)
	hue := math.Atan2(lab.B, lab.A) * 180 / math.Pi
	return Colour{Lightness: lab.L, Chroma: chroma, Hue: NormalizeHue(hue), Alpha: 1}
}

// RGBA implements color.Color so a Colour can be drawn directly.
func (c Colour) RGBA() (r, g, b, a uint32) {
	cf := c.toColorful().Clamped()
	alpha := clampUnit(c.Alpha)
	if math.IsNaN(alpha) {
		alpha = 1
	}
	r = uint32(cf.R*alpha*0xffff + 0.5)
	g = uint32(cf.G*alpha*0xffff + 0.5)
	b = uint32(cf.B*alpha*0xffff + 0.5)
	a = uint32(alpha*0xffff + 0.5)
	return
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
