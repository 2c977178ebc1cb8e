// Package export renders generated palettes for people and other programs:
// JSON, a terminal preview, PNG swatches and external exporter plugins.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/jmylchreest/tonal/internal/batch"
	"github.com/jmylchreest/tonal/internal/colour"
	"github.com/jmylchreest/tonal/internal/generator"
	"github.com/jmylchreest/tonal/pkg/plugin"
)

// Document is the common input of every exporter.
type Document struct {
	ID          string                     `json:"id,omitempty"`
	Group       string                     `json:"group"`
	Format      colour.Format              `json:"format"`
	Pattern     string                     `json:"pattern"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Palettes    []*generator.PaletteResult `json:"palettes"`
	Failures    []batch.ItemFailure        `json:"failures,omitempty"`
}

// FromBatch wraps a batch result.
func FromBatch(r *batch.Result) *Document {
	return &Document{
		ID:          r.ID,
		Group:       r.GroupName,
		Format:      r.OutputFormat,
		Pattern:     r.Pattern,
		GeneratedAt: r.GeneratedAt,
		Palettes:    r.Palettes,
		Failures:    r.Failures,
	}
}

// FromPalette wraps a single generated palette.
func FromPalette(p *generator.PaletteResult, at time.Time) *Document {
	return &Document{
		Group:       p.Name,
		Format:      p.Format,
		Pattern:     p.Pattern,
		GeneratedAt: at.UTC(),
		Palettes:    []*generator.PaletteResult{p},
	}
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// PluginData converts a document to the plugin wire format.
func PluginData(doc *Document, args map[string]any, dryRun bool) (plugin.ExportData, error) {
	data := plugin.ExportData{
		ID:          doc.ID,
		Group:       doc.Group,
		Format:      string(doc.Format),
		Pattern:     doc.Pattern,
		GeneratedAt: doc.GeneratedAt.Format(time.RFC3339),
		Palettes:    make([]plugin.PaletteData, 0, len(doc.Palettes)),
		PluginArgs:  args,
		DryRun:      dryRun,
	}
	for _, p := range doc.Palettes {
		pd := plugin.PaletteData{
			Name:       p.Name,
			Input:      p.Input,
			AnchorStop: int(p.AnchorStop),
			Stops:      make([]plugin.StopData, 0, len(p.Stops)),
		}
		for _, s := range p.Stops {
			hex, err := colour.ToHex(s.Colour)
			if err != nil {
				return plugin.ExportData{}, fmt.Errorf("palette %s stop %s: %w", p.Name, s.Position, err)
			}
			rgb, err := colour.ToRGB(s.Colour)
			if err != nil {
				return plugin.ExportData{}, fmt.Errorf("palette %s stop %s: %w", p.Name, s.Position, err)
			}
			pd.Stops = append(pd.Stops, plugin.StopData{
				Stop:      int(s.Position),
				Value:     s.Value,
				Hex:       hex,
				RGB:       plugin.RGBColour{R: rgb.R, G: rgb.G, B: rgb.B},
				Lightness: s.Colour.Lightness,
				Chroma:    s.Colour.Chroma,
				Hue:       hueOrZero(s.Colour.Hue),
				Clamped:   s.Clamped,
			})
		}
		data.Palettes = append(data.Palettes, pd)
	}
	return data, nil
}

// hueOrZero keeps NaN hues off the wire.
func hueOrZero(h float64) float64 {
	if math.IsNaN(h) {
		return 0
	}
	return colour.NormalizeHue(h)
}
