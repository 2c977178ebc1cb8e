package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/tonal/internal/export"
	"github.com/jmylchreest/tonal/pkg/plugin"
)

// Output modes for --output.
const (
	outputPreview = "preview"
	outputJSON    = "json"
)

// builtinExporters are exporters linked into tonal, selectable by name
// with --export.
var builtinExporters = map[string]func() plugin.Exporter{
	"css":      func() plugin.Exporter { return &export.CSSExporter{} },
	"tailwind": func() plugin.Exporter { return &export.TailwindExporter{} },
	"template": func() plugin.Exporter { return &export.TemplateExporter{} },
}

// outputOptions are the flags shared by every command that produces
// palettes.
type outputOptions struct {
	output     string
	swatch     string
	exporters  []string
	pluginArgs map[string]string
	outputDir  string
	dryRun     bool
}

func (o *outputOptions) register(f *pflag.FlagSet) {
	f.StringVarP(&o.output, "output", "o", outputPreview, "output mode (preview, json)")
	f.StringVar(&o.swatch, "swatch", "", "also write a PNG swatch to this path")
	f.StringSliceVarP(&o.exporters, "export", "e", nil, "exporters to run: a built-in name (css, tailwind, template) or a plugin path")
	f.StringToStringVar(&o.pluginArgs, "plugin-args", nil, "arguments passed to exporters (key=value, repeatable)")
	f.StringVar(&o.outputDir, "output-dir", "", "directory exporters write to (default from config)")
	f.BoolVar(&o.dryRun, "dry-run", false, "run exporters without writing files")
}

func (o *outputOptions) validate() error {
	switch o.output {
	case outputPreview, outputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output mode %q (valid modes: %s, %s)", o.output, outputPreview, outputJSON)
	}
}

// emit renders doc to stdout, writes the optional swatch and runs every
// configured exporter.
func (a *app) emit(ctx context.Context, cmd *cobra.Command, o *outputOptions, doc *export.Document) error {
	out := cmd.OutOrStdout()
	switch o.output {
	case outputJSON:
		if err := export.WriteJSON(out, doc); err != nil {
			return err
		}
	default:
		if err := export.NewPreview(out).Render(doc); err != nil {
			return err
		}
	}

	if o.swatch != "" {
		if err := writeSwatch(o.swatch, doc); err != nil {
			return err
		}
		a.logger.Info("wrote swatch", "path", o.swatch)
	}

	return a.runExporters(ctx, o, doc)
}

func writeSwatch(path string, doc *export.Document) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create swatch directory: %w", err)
		}
	}
	f, err := os.Create(path) // #nosec G304 - swatch path is chosen by the user
	if err != nil {
		return fmt.Errorf("failed to create swatch: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close swatch: %w", cerr)
		}
	}()
	return export.WriteSwatch(f, doc)
}

// runExporters runs configured plugins followed by those named with
// --export. A failing exporter stops the run.
func (a *app) runExporters(ctx context.Context, o *outputOptions, doc *export.Document) error {
	names := append(append([]string{}, a.cfg.Plugins...), o.exporters...)
	if len(names) == 0 {
		return nil
	}

	dir := a.cfg.OutputDir
	if o.outputDir != "" {
		dir = o.outputDir
	}
	args := make(map[string]any, len(o.pluginArgs))
	for k, v := range o.pluginArgs {
		args[k] = v
	}
	opts := export.RunOptions{OutputDir: dir, Args: args, DryRun: o.dryRun}

	for _, name := range names {
		runner := a.newRunner(name)
		res, err := runner.Run(ctx, doc, opts)
		runner.Close()
		if err != nil {
			return err
		}
		switch {
		case res.Skipped:
			a.logger.Warn("exporter skipped", "exporter", res.Plugin, "reason", res.Reason)
		case o.dryRun:
			a.logger.Info("dry run", "exporter", res.Plugin, "files", strings.Join(res.Files, ", "))
		default:
			a.logger.Info("exported", "exporter", res.Plugin, "files", strings.Join(res.Files, ", "))
		}
	}
	return nil
}

// newRunner resolves an exporter name to a built-in or a plugin executable.
func (a *app) newRunner(name string) *export.PluginRunner {
	if builtin, ok := builtinExporters[name]; ok {
		return export.NewInProcessRunner(builtin(), a.logger)
	}
	return export.NewPluginRunner(name, a.logger, a.logger.IsDebug())
}
