package colour

import (
	"fmt"
	"math"
	"strings"
)

// Format is a textual colour representation.
type Format string

const (
	// FormatHex renders #rrggbb (or #rrggbbaa).
	FormatHex Format = "hex"

	// FormatRGB renders rgb(r, g, b) (or rgba(r, g, b, a)).
	FormatRGB Format = "rgb"

	// FormatOKLCH renders oklch(L C H).
	FormatOKLCH Format = "oklch"

	// FormatOKLAB renders oklab(L a b).
	FormatOKLAB Format = "oklab"
)

// ValidFormats returns every supported output format.
func ValidFormats() []Format {
	return []Format{FormatHex, FormatRGB, FormatOKLCH, FormatOKLAB}
}

// ParseFormat parses a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ValidFormats() {
		if f == valid {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format: %s (valid formats: %v)", s, ValidFormats())
}

// FormatColour renders a colour in the requested format. It performs no
// gamut mapping.
func FormatColour(c Colour, f Format) (string, error) {
	switch f {
	case FormatHex:
		return ToHex(c)
	case FormatRGB:
		rgb, err := ToRGB(c)
		if err != nil {
			return "", err
		}
		if c.IsOpaque() {
			return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B), nil
		}
		return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", rgb.R, rgb.G, rgb.B, clampUnit(c.Alpha)), nil
	case FormatOKLCH:
		if !c.valid() {
			return "", &ConversionError{Op: "oklch", Input: c.String(), Err: errDegenerate}
		}
		return c.String(), nil
	case FormatOKLAB:
		lab, err := ToOKLAB(c)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("oklab(%.4f %.4f %.4f%s)", lab.L, lab.A, lab.B, alphaSuffix(c)), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", f)
	}
}

// String renders the colour in CSS oklch() notation.
func (c Colour) String() string {
	return fmt.Sprintf("oklch(%.4f %.4f %.2f%s)", c.Lightness, c.Chroma, c.hueOrZero(), alphaSuffix(c))
}

func alphaSuffix(c Colour) string {
	if c.IsOpaque() {
		return ""
	}
	return fmt.Sprintf(" / %.2f", clampUnit(c.Alpha))
}

func byteHex(v float64) string {
	return fmt.Sprintf("%02x", uint8(math.Round(v*255)))
}
