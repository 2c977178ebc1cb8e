package colour

import (
	"errors"
	"math"
	"testing"
)

func TestTransfer(t *testing.T) {
	blue := MustParse("#2d72d2")
	red := MustParse("#ff0000")
	grey := MustParse("#808080")

	t.Run("chromatic reference and target", func(t *testing.T) {
		got, err := Transfer(blue, red)
		if err != nil {
			t.Fatalf("Transfer() error = %v", err)
		}
		if got.Lightness != blue.Lightness || got.Chroma != blue.Chroma {
			t.Errorf("Transfer() = %v, want lightness/chroma of %v", got, blue)
		}
		if !approx(got.Hue, red.Hue, 1e-9) {
			t.Errorf("Hue = %g, want target hue %g", got.Hue, red.Hue)
		}
	})

	t.Run("achromatic target keeps reference hue", func(t *testing.T) {
		got, err := Transfer(blue, grey)
		if err != nil {
			t.Fatalf("Transfer() error = %v", err)
		}
		if !approx(got.Hue, blue.Hue, 1e-9) {
			t.Errorf("Hue = %g, want reference hue %g", got.Hue, blue.Hue)
		}
	})

	t.Run("NaN target hue keeps reference hue", func(t *testing.T) {
		got, err := Transfer(blue, Colour{Lightness: 0.5, Chroma: 0, Hue: math.NaN(), Alpha: 1})
		if err != nil {
			t.Fatalf("Transfer() error = %v", err)
		}
		if !approx(got.Hue, blue.Hue, 1e-9) {
			t.Errorf("Hue = %g, want reference hue %g", got.Hue, blue.Hue)
		}
	})

	t.Run("achromatic reference records target hue", func(t *testing.T) {
		ref := New(0.5, 0, 0)
		got, err := Transfer(ref, red)
		if err != nil {
			t.Fatalf("Transfer() error = %v", err)
		}
		if got.Chroma != 0 {
			t.Errorf("Chroma = %g, want 0", got.Chroma)
		}
		if !approx(got.Hue, red.Hue, 1e-9) {
			t.Errorf("Hue = %g, want target hue %g", got.Hue, red.Hue)
		}
	})

	t.Run("out of gamut is clamped", func(t *testing.T) {
		// Saturated blue chroma does not fit at yellow's hue.
		got, err := Transfer(MustParse("#0000ff"), MustParse("#ffff00"))
		if err != nil {
			t.Fatalf("Transfer() error = %v", err)
		}
		if !IsDisplayable(got) {
			t.Errorf("Transfer() = %v is not displayable", got)
		}
		if got.Chroma <= 0 {
			t.Errorf("Chroma = %g, want > 0", got.Chroma)
		}
	})

	t.Run("hue lost is an error", func(t *testing.T) {
		_, err := Transfer(New(1.0, 0.1, 0), red)
		var tErr *TransformationError
		if !errors.As(err, &tErr) {
			t.Fatalf("error = %v, want TransformationError", err)
		}
		if !errors.Is(err, ErrHueLost) {
			t.Errorf("error = %v, want ErrHueLost", err)
		}
	})
}

func TestIsTransferViable(t *testing.T) {
	tests := []struct {
		name      string
		reference Colour
		target    Colour
		want      bool
	}{
		{name: "mid blue to red", reference: MustParse("#2d72d2"), target: MustParse("#ff0000"), want: true},
		{name: "too dark", reference: New(0.02, 0.01, 30), target: MustParse("#ff0000"), want: false},
		{name: "too light", reference: New(0.98, 0.01, 30), target: MustParse("#ff0000"), want: false},
		{name: "both grey", reference: MustParse("#808080"), target: MustParse("#404040"), want: true},
		{name: "heavy chroma loss", reference: New(0.45, 0.31, 264), target: New(0.9, 0.2, 110), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransferViable(tt.reference, tt.target); got != tt.want {
				t.Errorf("IsTransferViable() = %v, want %v", got, tt.want)
			}
		})
	}
}
