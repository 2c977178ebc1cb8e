package colour

import (
	"encoding/json"
	"errors"
	"image/color"
	"math"
	"testing"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestFromHex_KnownColours(t *testing.T) {
	tests := []struct {
		name       string
		hex        string
		wantL      float64
		wantC      float64
		wantH      float64
		achromatic bool
	}{
		{name: "black", hex: "#000000", wantL: 0, wantC: 0, achromatic: true},
		{name: "white", hex: "#ffffff", wantL: 1, wantC: 0, achromatic: true},
		{name: "red", hex: "#ff0000", wantL: 0.6279, wantC: 0.2577, wantH: 29.23},
		{name: "green", hex: "#008000", wantL: 0.5196, wantC: 0.1766, wantH: 142.50},
		{name: "blue", hex: "#0000ff", wantL: 0.4520, wantC: 0.3132, wantH: 264.05},
		{name: "shorthand", hex: "f00", wantL: 0.6279, wantC: 0.2577, wantH: 29.23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := FromHex(tt.hex)
			if err != nil {
				t.Fatalf("FromHex(%q) error = %v", tt.hex, err)
			}
			if !approx(c.Lightness, tt.wantL, 0.01) {
				t.Errorf("Lightness = %.4f, want %.4f", c.Lightness, tt.wantL)
			}
			if !approx(c.Chroma, tt.wantC, 0.01) {
				t.Errorf("Chroma = %.4f, want %.4f", c.Chroma, tt.wantC)
			}
			if tt.achromatic {
				if !c.IsAchromatic() {
					t.Errorf("expected achromatic colour, chroma = %g", c.Chroma)
				}
				return
			}
			if HueDistance(c.Hue, tt.wantH) > 0.6 {
				t.Errorf("Hue = %.2f, want %.2f", c.Hue, tt.wantH)
			}
			if c.Alpha != 1 {
				t.Errorf("Alpha = %g, want 1", c.Alpha)
			}
		})
	}
}

func TestHexRoundTrip(t *testing.T) {
	for _, hex := range []string{"#2d72d2", "#000000", "#ffffff", "#ff0000", "#00ff00", "#0000ff", "#7f7f7f", "#f4c430", "#1e1e2e"} {
		t.Run(hex, func(t *testing.T) {
			c, err := FromHex(hex)
			if err != nil {
				t.Fatalf("FromHex() error = %v", err)
			}
			got, err := ToHex(c)
			if err != nil {
				t.Fatalf("ToHex() error = %v", err)
			}
			if got != hex {
				t.Errorf("round trip = %s, want %s", got, hex)
			}
		})
	}
}

func TestOKLCHRoundTripThroughHex(t *testing.T) {
	inputs := []Colour{
		New(0.7, 0.1, 200),
		New(0.5, 0.15, 30),
		New(0.85, 0.05, 300),
		New(0.3, 0.08, 120),
	}
	for _, in := range inputs {
		t.Run(in.String(), func(t *testing.T) {
			c, err := ClampToGamut(in)
			if err != nil {
				t.Fatalf("ClampToGamut() error = %v", err)
			}
			hex, err := ToHex(c)
			if err != nil {
				t.Fatalf("ToHex() error = %v", err)
			}
			back, err := FromHex(hex)
			if err != nil {
				t.Fatalf("FromHex() error = %v", err)
			}
			if !approx(back.Lightness, c.Lightness, 0.01) {
				t.Errorf("Lightness %.4f -> %.4f", c.Lightness, back.Lightness)
			}
			if !approx(back.Chroma, c.Chroma, 0.01) {
				t.Errorf("Chroma %.4f -> %.4f", c.Chroma, back.Chroma)
			}
			if HueDistance(back.Hue, c.Hue) > 1 {
				t.Errorf("Hue %.2f -> %.2f", c.Hue, back.Hue)
			}
		})
	}
}

func TestToHex_Alpha(t *testing.T) {
	c := MustParse("#ff000080")
	got, err := ToHex(c)
	if err != nil {
		t.Fatalf("ToHex() error = %v", err)
	}
	if got != "#ff000080" {
		t.Errorf("ToHex() = %s, want #ff000080", got)
	}
}

func TestToHex_Degenerate(t *testing.T) {
	inputs := []Colour{
		{Lightness: math.NaN(), Chroma: 0.1, Hue: 10, Alpha: 1},
		{Lightness: 0.5, Chroma: math.Inf(1), Hue: 10, Alpha: 1},
		{Lightness: 0.5, Chroma: -0.1, Hue: 10, Alpha: 1},
	}
	for _, c := range inputs {
		_, err := ToHex(c)
		var convErr *ConversionError
		if !errors.As(err, &convErr) {
			t.Errorf("ToHex(%v) error = %v, want ConversionError", c, err)
		}
	}
}

func TestRGBConversions(t *testing.T) {
	rgb := RGB{R: 45, G: 114, B: 210}
	c := FromRGB(rgb)
	got, err := ToRGB(c)
	if err != nil {
		t.Fatalf("ToRGB() error = %v", err)
	}
	if got != rgb {
		t.Errorf("ToRGB(FromRGB(%v)) = %v", rgb, got)
	}

	fromStd := FromColor(color.RGBA{R: 45, G: 114, B: 210, A: 255})
	if !approx(fromStd.Lightness, c.Lightness, 1e-9) || !approx(fromStd.Chroma, c.Chroma, 1e-9) {
		t.Errorf("FromColor() = %v, want %v", fromStd, c)
	}
}

func TestOKLABConversions(t *testing.T) {
	c := New(0.6, 0.12, 135)
	lab, err := ToOKLAB(c)
	if err != nil {
		t.Fatalf("ToOKLAB() error = %v", err)
	}
	if !approx(lab.A, lab.B*-1, 1e-9) {
		t.Errorf("hue 135 should give a = -b, got a=%g b=%g", lab.A, lab.B)
	}
	back := FromOKLAB(lab)
	if !approx(back.Lightness, 0.6, 1e-9) || !approx(back.Chroma, 0.12, 1e-9) || !approx(back.Hue, 135, 1e-9) {
		t.Errorf("FromOKLAB(ToOKLAB(c)) = %v, want %v", back, c)
	}
}

func TestNormalizeHue(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{in: -90, want: 270},
		{in: 720, want: 0},
		{in: 360, want: 0},
		{in: 0, want: 0},
		{in: 45, want: 45},
		{in: -720.5, want: 359.5},
		{in: 1e-14 - 360, want: 0},
	}
	for _, tt := range tests {
		if got := NormalizeHue(tt.in); !approx(got, tt.want, 1e-9) {
			t.Errorf("NormalizeHue(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestHueDifference(t *testing.T) {
	tests := []struct {
		h1, h2, want float64
	}{
		{h1: 10, h2: 20, want: 10},
		{h1: 20, h2: 10, want: -10},
		{h1: 350, h2: 10, want: 20},
		{h1: 10, h2: 350, want: -20},
		{h1: 0, h2: 180, want: 180},
		{h1: 180, h2: 0, want: 180},
		{h1: -90, h2: 270, want: 0},
	}
	for _, tt := range tests {
		got := HueDifference(tt.h1, tt.h2)
		if !approx(got, tt.want, 1e-9) {
			t.Errorf("HueDifference(%g, %g) = %g, want %g", tt.h1, tt.h2, got, tt.want)
		}
		if got <= -180 || got > 180 {
			t.Errorf("HueDifference(%g, %g) = %g out of (-180, 180]", tt.h1, tt.h2, got)
		}
	}
}

func TestIsDisplayable(t *testing.T) {
	if !IsDisplayable(MustParse("#2d72d2")) {
		t.Error("hex-derived colour should be displayable")
	}
	if IsDisplayable(New(0.9, 0.35, 264)) {
		t.Error("light, highly chromatic blue should be out of gamut")
	}
	if IsDisplayable(New(1.2, 0, 0)) {
		t.Error("lightness above 1 should not be displayable")
	}
}

func TestClampToGamut_Closure(t *testing.T) {
	for l := 0.0; l <= 1.0; l += 0.1 {
		for h := 0.0; h < 360; h += 30 {
			for _, c := range []float64{0, 0.05, 0.2, 0.4} {
				in := New(l, c, h)
				out, err := ClampToGamut(in)
				if err != nil {
					t.Fatalf("ClampToGamut(%v) error = %v", in, err)
				}
				if !IsDisplayable(out) {
					t.Errorf("ClampToGamut(%v) = %v is not displayable", in, out)
				}
				if out.Chroma > in.Chroma {
					t.Errorf("ClampToGamut(%v) increased chroma to %g", in, out.Chroma)
				}
			}
		}
	}
}

func TestClampToGamut_PreservesInGamut(t *testing.T) {
	in := MustParse("#2d72d2")
	out, err := ClampToGamut(in)
	if err != nil {
		t.Fatalf("ClampToGamut() error = %v", err)
	}
	if out != in {
		t.Errorf("ClampToGamut() = %v, want unchanged %v", out, in)
	}
}

func TestClampToGamut_CollapseKeepsHue(t *testing.T) {
	out, err := ClampToGamut(New(1.0, 0.2, 120))
	if err != nil {
		t.Fatalf("ClampToGamut() error = %v", err)
	}
	if out.Chroma != 0 {
		t.Errorf("Chroma = %g, want 0 at full lightness", out.Chroma)
	}
	if out.Hue != 120 {
		t.Errorf("Hue = %g, want 120 preserved", out.Hue)
	}
}

func TestClampToGamut_Degenerate(t *testing.T) {
	_, err := ClampToGamut(Colour{Lightness: math.NaN(), Alpha: 1})
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("error = %v, want ConversionError", err)
	}
}

func TestContrast(t *testing.T) {
	tests := []struct {
		name     string
		bg       color.Color
		wantLum  float64
		wantText color.Color
	}{
		{name: "black", bg: color.Black, wantLum: 0, wantText: color.White},
		{name: "white", bg: color.White, wantLum: 1, wantText: color.Black},
		{name: "tailwind blue 500", bg: color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}, wantLum: 0.235, wantText: color.Black},
		{name: "tailwind blue 900", bg: color.RGBA{R: 0x1e, G: 0x3a, B: 0x8a, A: 0xff}, wantLum: 0.051, wantText: color.White},
		{name: "transparent white", bg: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0}, wantLum: 0, wantText: color.White},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Luminance(tt.bg); !approx(got, tt.wantLum, 0.005) {
				t.Errorf("Luminance() = %g, want %g", got, tt.wantLum)
			}
			if got := TextColour(tt.bg); got != tt.wantText {
				t.Errorf("TextColour() = %v, want %v", got, tt.wantText)
			}
		})
	}

	if r := ContrastRatio(color.Black, color.White); !approx(r, 21, 0.01) {
		t.Errorf("ContrastRatio(black, white) = %g, want 21", r)
	}
	if r := ContrastRatio(color.White, color.White); !approx(r, 1, 1e-9) {
		t.Errorf("ContrastRatio(white, white) = %g, want 1", r)
	}
}

func TestColourMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   Colour
		want string
	}{
		{name: "normalised hue", in: New(0.5, 0.1, -30), want: `{"l":0.5,"c":0.1,"h":330,"alpha":1}`},
		{name: "undefined hue", in: New(0.5, 0, math.NaN()), want: `{"l":0.5,"c":0,"h":0,"alpha":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}
