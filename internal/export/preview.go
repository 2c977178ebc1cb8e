package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/jmylchreest/tonal/internal/colour"
	"github.com/jmylchreest/tonal/internal/pattern"
)

// blockWidth is the width of a stop's colour block.
const blockWidth = 8

// Preview renders palettes to a terminal. Each stop is a coloured block
// labelled with its position, followed by the formatted value.
type Preview struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	colour   bool
}

// NewPreview creates a preview writing to w. Colour blocks are drawn only
// when w is a terminal and NO_COLOR is unset.
func NewPreview(w io.Writer) *Preview {
	return &Preview{
		w:        w,
		renderer: lipgloss.NewRenderer(w),
		colour:   isTerminal(w) && os.Getenv("NO_COLOR") == "",
	}
}

// SetColour forces colour output on or off.
func (p *Preview) SetColour(enabled bool) {
	p.colour = enabled
}

// Render writes every palette in doc, then any batch failures.
func (p *Preview) Render(doc *Document) error {
	var b strings.Builder

	title := p.renderer.NewStyle().Bold(true)
	dim := p.renderer.NewStyle().Faint(true)
	warn := p.renderer.NewStyle().Foreground(lipgloss.Color("#f59e0b"))

	for i, pal := range doc.Palettes {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(title.Render(pal.Name))
		b.WriteString(" ")
		b.WriteString(dim.Render(fmt.Sprintf("(%s @ %s, pattern %s)", pal.Input, pal.AnchorStop, pal.Pattern)))
		b.WriteString("\n")

		failed := make(map[pattern.Stop]string, len(pal.Failures))
		for _, f := range pal.Failures {
			failed[f.Stop] = f.Reason
		}

		for _, s := range pal.Stops {
			b.WriteString("  ")
			b.WriteString(p.block(s.Colour, s.Position))
			b.WriteString("  ")
			b.WriteString(s.Value)
			if s.Position == pal.AnchorStop {
				b.WriteString(dim.Render("  anchor"))
			}
			if _, ok := failed[s.Position]; ok {
				b.WriteString(warn.Render("  ⚠ hue lost"))
			} else if s.Clamped {
				b.WriteString(dim.Render("  clamped"))
			}
			b.WriteString("\n")
		}
		for _, f := range pal.Failures {
			b.WriteString(warn.Render(fmt.Sprintf("  ⚠ stop %s: %s", f.Stop, f.Reason)))
			b.WriteString("\n")
		}
	}

	if len(doc.Failures) > 0 {
		b.WriteString("\n")
		b.WriteString(warn.Render(fmt.Sprintf("%d item(s) failed:", len(doc.Failures))))
		b.WriteString("\n")
		for _, f := range doc.Failures {
			b.WriteString("  ")
			b.WriteString(f.String())
			b.WriteString("\n")
		}
	}

	if _, err := io.WriteString(p.w, b.String()); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	return nil
}

// block renders the stop label, on a background of the stop's colour when
// colour output is enabled.
func (p *Preview) block(c colour.Colour, s pattern.Stop) string {
	label := fmt.Sprintf("%*s", blockWidth-2, s.String())
	if !p.colour {
		return fmt.Sprintf("%-*s", blockWidth, label)
	}
	hex, err := colour.ToHex(c)
	if err != nil {
		return fmt.Sprintf("%-*s", blockWidth, label)
	}
	return p.renderer.NewStyle().
		Background(lipgloss.Color(hex)).
		Foreground(lipgloss.Color(textHex(c))).
		Width(blockWidth).
		Render(label)
}

// textHex returns black or white, whichever reads better on c.
func textHex(c colour.Colour) string {
	r, _, _, _ := colour.TextColour(c).RGBA()
	if r > 0x7fff {
		return "#ffffff"
	}
	return "#000000"
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
