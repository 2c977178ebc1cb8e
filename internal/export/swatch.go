package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/jmylchreest/tonal/internal/colour"
	"github.com/jmylchreest/tonal/internal/generator"
	"github.com/jmylchreest/tonal/internal/pattern"
	"github.com/jmylchreest/tonal/internal/security"
)

// Swatch geometry, in pixels.
const (
	SwatchBandWidth = 96
	SwatchRowHeight = 64
	swatchTitle     = 20
	swatchPadding   = 6
	// hatchShade darkens the stripes drawn over stops that lost their hue.
	hatchShade = 48
)

// Swatch draws one row per palette with a band per stop. Each band is
// labelled with its stop and hex value; stops that lost their hue are
// hatched.
func Swatch(doc *Document) (*image.RGBA, error) {
	if len(doc.Palettes) == 0 {
		return nil, errors.New("no palettes to draw")
	}
	width := SwatchBandWidth * pattern.StopCount
	height := (swatchTitle + SwatchRowHeight) * len(doc.Palettes)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	for row, pal := range doc.Palettes {
		top := row * (swatchTitle + SwatchRowHeight)
		drawLabel(img, pal.Name, swatchPadding, top+swatchTitle-swatchPadding, color.Black)
		if err := drawRow(img, pal, top+swatchTitle); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// WriteSwatch encodes the swatch as PNG.
func WriteSwatch(w io.Writer, doc *Document) error {
	img, err := Swatch(doc)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode swatch: %w", err)
	}
	return nil
}

func drawRow(img *image.RGBA, pal *generator.PaletteResult, top int) error {
	failed := make(map[pattern.Stop]bool, len(pal.Failures))
	for _, f := range pal.Failures {
		failed[f.Stop] = true
	}

	for i, s := range pal.Stops {
		rgb, err := colour.ToRGB(s.Colour)
		if err != nil {
			return fmt.Errorf("palette %s stop %s: %w", pal.Name, s.Position, err)
		}
		hex, err := colour.ToHex(s.Colour)
		if err != nil {
			return fmt.Errorf("palette %s stop %s: %w", pal.Name, s.Position, err)
		}
		fill := color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 0xff}
		band := image.Rect(i*SwatchBandWidth, top, (i+1)*SwatchBandWidth, top+SwatchRowHeight)
		draw.Draw(img, band, image.NewUniform(fill), image.Point{}, draw.Src)

		if failed[s.Position] {
			hatch(img, band, fill)
		}

		text := colour.TextColour(fill)
		drawLabel(img, s.Position.String(), band.Min.X+swatchPadding, band.Min.Y+swatchPadding+13, text)
		drawLabel(img, hex, band.Min.X+swatchPadding, band.Max.Y-swatchPadding, text)
	}
	return nil
}

// hatch draws diagonal stripes in a darker shade of fill.
func hatch(img *image.RGBA, r image.Rectangle, fill color.RGBA) {
	shade := color.RGBA{
		R: security.SafeUint8(int(fill.R) - hatchShade),
		G: security.SafeUint8(int(fill.G) - hatchShade),
		B: security.SafeUint8(int(fill.B) - hatchShade),
		A: 0xff,
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if (x+y)%8 < 2 {
				img.SetRGBA(x, y, shade)
			}
		}
	}
}

// drawLabel draws text with its baseline at (x, y).
func drawLabel(img draw.Image, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
