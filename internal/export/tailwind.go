package export

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"regexp"
	"strconv"
	"text/template"

	"github.com/jmylchreest/tonal/internal/version"
	"github.com/jmylchreest/tonal/pkg/plugin"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Tailwind output formats.
const (
	TailwindTheme  = "theme"
	TailwindConfig = "config"
)

// TailwindExporter renders palettes for Tailwind CSS, either as a v4
// @theme block of --color-* variables or as a v3 tailwind.config.js
// colour extension.
type TailwindExporter struct{}

var _ plugin.Exporter = (*TailwindExporter)(nil)

type tailwindData struct {
	Group    string
	Pattern  string
	Palettes []tailwindPalette
}

type tailwindPalette struct {
	Name    string
	Default string
	Stops   []plugin.StopData
}

// Export renders the template selected by the "format" argument.
func (e *TailwindExporter) Export(_ context.Context, data plugin.ExportData) (map[string][]byte, error) {
	format := stringArg(data.PluginArgs, "format", TailwindTheme)

	var tmplName, file string
	switch format {
	case TailwindTheme:
		tmplName, file = "theme.css.tmpl", cssIdent(data.Group)+".theme.css"
	case TailwindConfig:
		tmplName, file = "tailwind.config.js.tmpl", "tailwind.config.js"
	default:
		return nil, fmt.Errorf("invalid format: %s (must be '%s' or '%s')", format, TailwindTheme, TailwindConfig)
	}
	file = stringArg(data.PluginArgs, "file", file)

	tmpl, err := template.New(tmplName).Funcs(template.FuncMap{"jsKey": jsKey}).ParseFS(templates, "templates/"+tmplName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", format, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, prepareTailwindData(data)); err != nil {
		return nil, fmt.Errorf("failed to execute %s template: %w", format, err)
	}
	return map[string][]byte{file: buf.Bytes()}, nil
}

func prepareTailwindData(data plugin.ExportData) tailwindData {
	td := tailwindData{Group: data.Group, Pattern: data.Pattern}
	for _, p := range data.Palettes {
		tp := tailwindPalette{Name: cssIdent(p.Name), Stops: p.Stops}
		for _, s := range p.Stops {
			if s.Stop == p.AnchorStop {
				tp.Default = s.Value
			}
		}
		td.Palettes = append(td.Palettes, tp)
	}
	return td
}

var jsIdent = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// jsKey quotes object keys that are not plain identifiers.
func jsKey(s string) string {
	if jsIdent.MatchString(s) {
		return s
	}
	return strconv.Quote(s)
}

// PreExecute never skips.
func (e *TailwindExporter) PreExecute(context.Context) (bool, string, error) {
	return false, "", nil
}

// PostExecute does nothing.
func (e *TailwindExporter) PostExecute(context.Context, []string) error {
	return nil
}

// GetMetadata returns plugin metadata.
func (e *TailwindExporter) GetMetadata() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:            "tailwind",
		Version:         version.Version,
		ProtocolVersion: plugin.ProtocolVersion,
		Description:     "Export palettes as a Tailwind CSS theme or config",
		PluginProtocol:  plugin.PluginTypeGoPlugin,
	}
}

// GetFlagHelp describes the accepted arguments.
func (e *TailwindExporter) GetFlagHelp() []plugin.FlagHelp {
	return []plugin.FlagHelp{
		{Name: "format", Type: "string", Default: TailwindTheme, Description: "Output format (theme or config)"},
		{Name: "file", Type: "string", Default: "<group>.theme.css", Description: "Output file name, relative to the output directory"},
	}
}
