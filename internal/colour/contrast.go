package colour

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Luminance returns the WCAG relative luminance of c, from 0 (black) to
// 1 (white). Alpha is ignored.
// https://www.w3.org/TR/WCAG21/#dfn-relative-luminance.
func Luminance(c color.Color) float64 {
	cf, _ := colorful.MakeColor(opaque(c))
	r, g, b := cf.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ContrastRatio returns the WCAG contrast ratio between two colours, from
// 1 (identical luminance) to 21 (black on white).
// https://www.w3.org/TR/WCAG21/#dfn-contrast-ratio.
func ContrastRatio(c1, c2 color.Color) float64 {
	l1, l2 := Luminance(c1), Luminance(c2)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// TextColour returns black or white, whichever contrasts more with bg.
func TextColour(bg color.Color) color.Color {
	if ContrastRatio(color.White, bg) >= ContrastRatio(color.Black, bg) {
		return color.White
	}
	return color.Black
}

// opaque drops alpha so MakeColor never sees a zero-alpha colour.
func opaque(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.RGBA64{R: uint16(r), G: uint16(g), B: uint16(b), A: 0xffff}
}
