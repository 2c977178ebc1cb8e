package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tonal/internal/export"
	"github.com/jmylchreest/tonal/internal/generator"
)

type generateOptions struct {
	outputOptions
	name  string
	stop  int
	watch bool
}

func newGenerateCmd(a *app) *cobra.Command {
	o := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate COLOUR",
		Short: "Generate a ten-stop palette from one colour",
		Long: `Generate a ten-stop palette from one anchor colour.

The colour may be hex (#2d72d2, #2d72d2ff), rgb()/rgba(), oklch() or oklab().
It is placed at the anchor stop (500 unless --stop or the config says
otherwise) and every other stop is derived from the pattern.

Examples:
  # Preview a palette in the terminal
  tonal generate -p tailwind.json '#2d72d2'

  # Anchor a darker colour at 700 and print JSON in OKLCH
  tonal generate -p tailwind.json --stop 700 -f oklch -o json '#1d4ed8'

  # Write CSS custom properties and a PNG swatch
  tonal generate -p tailwind.json --name brand -e css --swatch brand.png '#2d72d2'

  # Regenerate whenever the palette file changes
  tonal generate -p tailwind.json --watch '#2d72d2'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, o, args[0])
		},
	}
	o.register(cmd.Flags())
	cmd.Flags().StringVarP(&o.name, "name", "n", "", "palette name (default: the colour's hex)")
	cmd.Flags().IntVarP(&o.stop, "stop", "s", 0, "stop the colour is anchored at (default from config)")
	cmd.Flags().BoolVarP(&o.watch, "watch", "w", false, "regenerate when the pattern file changes")
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, o *generateOptions, colour string) error {
	if err := o.validate(); err != nil {
		return err
	}
	path, err := a.patternPath()
	if err != nil {
		return err
	}
	req := generator.Request{Name: o.name, Colour: colour, Stop: a.stopFlag(cmd, o.stop)}
	ctx := commandContext(cmd)

	if !o.watch {
		return a.generateOnce(ctx, cmd, o, path, req)
	}

	changes, err := a.cache.Watch(ctx, path)
	if err != nil {
		return err
	}
	a.logger.Info("watching pattern file", "path", path)
	for {
		if err := a.generateOnce(ctx, cmd, o, path, req); err != nil {
			// Keep watching; the next save may fix the file.
			a.logger.Error("generation failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout())
		}
	}
}

func (a *app) generateOnce(ctx context.Context, cmd *cobra.Command, o *generateOptions, path string, req generator.Request) error {
	p, err := a.cache.Get(path)
	if err != nil {
		return err
	}
	res, err := generator.Generate(req, p, a.cfg.OutputFormat())
	if err != nil {
		return err
	}
	for _, f := range res.Failures {
		a.logger.Warn("stop lost its hue", "palette", res.Name, "stop", f.Stop, "reason", f.Reason)
	}
	return a.emit(ctx, cmd, &o.outputOptions, export.FromPalette(res, time.Now()))
}
