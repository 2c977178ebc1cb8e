package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tonal/internal/export"
	"github.com/jmylchreest/tonal/internal/pattern"
	"github.com/jmylchreest/tonal/internal/pattern/store"
)

func newPatternCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pattern",
		Short: "Inspect and extract transformation patterns",
		Long: `A pattern records, for each stop, how lightness and chroma scale and how
hue shifts relative to stop 500. Patterns are learned from example palettes
and smoothed before use; they can be saved as JSON and used in place of the
example palettes.`,
	}
	cmd.AddCommand(newPatternExtractCmd(a), newPatternShowCmd(a))
	return cmd
}

func newPatternExtractCmd(a *app) *cobra.Command {
	var (
		out string
		raw bool
	)
	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Learn a pattern from example palettes and print it as JSON",
		Example: `  tonal pattern extract tailwind.json -O tailwind-pattern.json
  tonal pattern extract --raw palettes.txt.xz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := extractPattern(args[0], raw)
			if err != nil {
				return err
			}
			a.logger.Debug("extracted pattern", "name", p.Name, "sources", p.Metadata.SourceCount,
				"confidence", p.Metadata.Confidence)
			if out == "" {
				return export.WriteJSON(cmd.OutOrStdout(), p)
			}
			if err := writeJSONFile(out, p); err != nil {
				return err
			}
			a.logger.Info("wrote pattern", "path", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "O", "", "write the pattern to a file instead of stdout")
	cmd.Flags().BoolVar(&raw, "raw", false, "skip smoothing")
	return cmd
}

func newPatternShowCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show [FILE]",
		Short: "Show the pattern's per-stop transforms",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Pattern
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no pattern file: pass FILE, --pattern or set pattern in the config file")
			}
			p, err := a.cache.Get(path)
			if err != nil {
				return err
			}
			switch output {
			case outputJSON:
				return export.WriteJSON(cmd.OutOrStdout(), p)
			case outputPreview:
				return writePatternTable(cmd.OutOrStdout(), p)
			default:
				return fmt.Errorf("unknown output mode %q", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputPreview, "output mode (preview, json)")
	return cmd
}

// extractPattern builds a pattern from a palette file, optionally without
// smoothing.
func extractPattern(path string, raw bool) (*pattern.Pattern, error) {
	if !raw {
		return store.Load(path)
	}
	f, err := store.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if f.Pattern != nil {
		return nil, fmt.Errorf("%s already holds a pattern", path)
	}
	palettes, err := f.ParsePalettes()
	if err != nil {
		return nil, &store.LoadError{Path: path, Err: err}
	}
	p, err := pattern.Extract(f.Name, palettes)
	if err != nil {
		return nil, &store.LoadError{Path: path, Err: err}
	}
	return p, nil
}

func writePatternTable(w io.Writer, p *pattern.Pattern) error {
	fmt.Fprintf(w, "Pattern:     %s\n", p.Name)
	fmt.Fprintf(w, "Reference:   %s\n", p.ReferenceStop)
	fmt.Fprintf(w, "Sources:     %d\n", p.Metadata.SourceCount)
	fmt.Fprintf(w, "Confidence:  %.2f\n\n", p.Metadata.Confidence)

	table := NewTable("Stop", "Lightness", "Chroma", "Hue shift")
	table.AlignRight(0, 1, 2, 3)
	for _, s := range pattern.Stops() {
		t := p.Transform(s)
		table.AddRow(
			s.String(),
			fmt.Sprintf("×%.3f", t.LightnessMultiplier),
			fmt.Sprintf("×%.3f", t.ChromaMultiplier),
			fmt.Sprintf("%+.2f°", t.HueShift),
		)
	}
	_, err := io.WriteString(w, table.Render())
	return err
}

func writeJSONFile(path string, v any) (err error) {
	f, err := os.Create(path) // #nosec G304 - output path is chosen by the user
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return export.WriteJSON(f, v)
}
