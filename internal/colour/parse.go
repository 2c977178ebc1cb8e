package colour

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Parse parses a colour string. Accepted forms:
//
//	#rgb, #rgba, #rrggbb, #rrggbbaa (the # is optional)
//	rgb(r, g, b), rgba(r, g, b, a)
//	oklch(L C H), oklch(L C H / a)   L may be a percentage
//	oklab(L a b), oklab(L a b / a)
func Parse(s string) (Colour, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	if in == "" {
		return Colour{}, &ConversionError{Op: "parse", Input: s, Err: errors.New("empty colour")}
	}

	var (
		c   Colour
		err error
	)
	switch {
	case strings.HasPrefix(in, "rgb"):
		c, err = parseRGBFunc(in)
	case strings.HasPrefix(in, "oklch("):
		c, err = parseOKLCHFunc(in)
	case strings.HasPrefix(in, "oklab("):
		c, err = parseOKLABFunc(in)
	default:
		return parseHex(s)
	}
	if err != nil {
		return Colour{}, &ConversionError{Op: "parse", Input: s, Err: err}
	}
	return c, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Colour {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(s string) (Colour, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	// Expand shorthand (rgb -> rrggbb, rgba -> rrggbbaa).
	if len(hex) == 3 || len(hex) == 4 {
		expanded := make([]byte, 0, len(hex)*2)
		for i := 0; i < len(hex); i++ {
			expanded = append(expanded, hex[i], hex[i])
		}
		hex = string(expanded)
	}

	if len(hex) != 6 && len(hex) != 8 {
		return Colour{}, &ConversionError{
			Op:    "parse",
			Input: s,
			Err:   fmt.Errorf("invalid hex colour length: expected 3, 4, 6 or 8 digits, got %d", len(hex)),
		}
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return Colour{}, &ConversionError{Op: "parse", Input: s, Err: fmt.Errorf("invalid hex digits: %w", err)}
	}

	cf, err := colorful.Hex("#" + hex[:6])
	if err != nil {
		return Colour{}, &ConversionError{Op: "parse", Input: s, Err: err}
	}

	alpha := 1.0
	if len(hex) == 8 {
		a, _ := strconv.ParseUint(hex[6:], 16, 8)
		alpha = float64(a) / 255.0
	}
	return fromColorful(cf, alpha), nil
}

// funcArgs extracts the arguments of name(...) split on commas, slashes and
// whitespace.
func funcArgs(in string) ([]string, error) {
	open := strings.IndexByte(in, '(')
	if open < 0 || !strings.HasSuffix(in, ")") {
		return nil, errors.New("malformed colour function")
	}
	inner := in[open+1 : len(in)-1]
	inner = strings.NewReplacer(",", " ", "/", " ").Replace(inner)
	args := strings.Fields(inner)
	if len(args) != 3 && len(args) != 4 {
		return nil, fmt.Errorf("expected 3 or 4 components, got %d", len(args))
	}
	return args, nil
}

// parseNumber parses a float, treating a trailing % as a fraction of scale.
func parseNumber(arg string, scale float64) (float64, error) {
	if pct, ok := strings.CutSuffix(arg, "%"); ok {
		v, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid percentage %q", arg)
		}
		return v / 100 * scale, nil
	}
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", arg)
	}
	return v, nil
}

func parseAlpha(args []string) (float64, error) {
	if len(args) < 4 {
		return 1, nil
	}
	a, err := parseNumber(args[3], 1)
	if err != nil {
		return 0, err
	}
	if a < 0 || a > 1 {
		return 0, fmt.Errorf("alpha out of range: %g", a)
	}
	return a, nil
}

func parseRGBFunc(in string) (Colour, error) {
	args, err := funcArgs(in)
	if err != nil {
		return Colour{}, err
	}
	var ch [3]float64
	for i := range ch {
		v, err := parseNumber(args[i], 255)
		if err != nil {
			return Colour{}, err
		}
		if v < 0 || v > 255 {
			return Colour{}, fmt.Errorf("rgb component out of range: %g", v)
		}
		ch[i] = v / 255
	}
	alpha, err := parseAlpha(args)
	if err != nil {
		return Colour{}, err
	}
	return fromColorful(colorful.Color{R: ch[0], G: ch[1], B: ch[2]}, alpha), nil
}

func parseOKLCHFunc(in string) (Colour, error) {
	args, err := funcArgs(in)
	if err != nil {
		return Colour{}, err
	}
	l, err := parseNumber(args[0], 1)
	if err != nil {
		return Colour{}, err
	}
	c, err := parseNumber(args[1], 0.4)
	if err != nil {
		return Colour{}, err
	}
	if c < 0 {
		return Colour{}, fmt.Errorf("negative chroma: %g", c)
	}
	h, err := parseNumber(strings.TrimSuffix(args[2], "deg"), 360)
	if err != nil {
		return Colour{}, err
	}
	alpha, err := parseAlpha(args)
	if err != nil {
		return Colour{}, err
	}
	return Colour{Lightness: l, Chroma: c, Hue: NormalizeHue(h), Alpha: alpha}, nil
}

func parseOKLABFunc(in string) (Colour, error) {
	args, err := funcArgs(in)
	if err != nil {
		return Colour{}, err
	}
	var v [3]float64
	scales := [3]float64{1, 0.4, 0.4}
	for i := range v {
		if v[i], err = parseNumber(args[i], scales[i]); err != nil {
			return Colour{}, err
		}
	}
	alpha, err := parseAlpha(args)
	if err != nil {
		return Colour{}, err
	}
	c := FromOKLAB(OKLAB{L: v[0], A: v[1], B: v[2]})
	c.Alpha = alpha
	return c, nil
}
