package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/tonal/internal/security"
	"github.com/jmylchreest/tonal/internal/version"
	"github.com/jmylchreest/tonal/pkg/plugin"
)

// maxTemplateSize caps template and template config files.
const maxTemplateSize = 1 << 20

// TemplateExporter renders user-supplied text/template files listed in a
// YAML or JSON config:
//
//	templates:
//	  - name: kitty
//	    template_path: kitty.conf.tmpl
//	    output_path: kitty/brand.conf
//
// Template paths are relative to the config file; output paths are
// relative to the output directory.
type TemplateExporter struct{}

var _ plugin.Exporter = (*TemplateExporter)(nil)

// TemplateConfig lists the templates to render.
type TemplateConfig struct {
	Templates []TemplateEntry `yaml:"templates" json:"templates"`
}

// TemplateEntry is a single template.
type TemplateEntry struct {
	Name         string `yaml:"name" json:"name"`
	Description  string `yaml:"description" json:"description"`
	TemplatePath string `yaml:"template_path" json:"template_path"`
	OutputPath   string `yaml:"output_path" json:"output_path"`
	Enabled      *bool  `yaml:"enabled" json:"enabled"`
}

func (e TemplateEntry) enabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// TemplateData is the value templates execute against.
type TemplateData struct {
	Group       string
	Format      string
	Pattern     string
	GeneratedAt string
	Palettes    []plugin.PaletteData
}

// LoadTemplateConfig reads a template config, choosing the decoder by
// extension and falling back to YAML then JSON.
func LoadTemplateConfig(path string) (*TemplateConfig, error) {
	data, err := readCapped(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template config: %w", err)
	}

	var config TemplateConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML template config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON template config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			if jsonErr := json.Unmarshal(data, &config); jsonErr != nil {
				return nil, fmt.Errorf("failed to parse template config as YAML or JSON: %w", err)
			}
		}
	}

	if len(config.Templates) == 0 {
		return nil, fmt.Errorf("no templates defined in %s", path)
	}
	base := filepath.Dir(path)
	for i, t := range config.Templates {
		switch {
		case t.Name == "":
			return nil, fmt.Errorf("template %d: name is required", i)
		case t.TemplatePath == "":
			return nil, fmt.Errorf("template %q: template_path is required", t.Name)
		case t.OutputPath == "":
			return nil, fmt.Errorf("template %q: output_path is required", t.Name)
		}
		if !filepath.IsAbs(t.TemplatePath) {
			config.Templates[i].TemplatePath = filepath.Join(base, t.TemplatePath)
		}
	}
	return &config, nil
}

// Export renders every enabled template. The "config" argument names the
// template config; "templates" optionally restricts the run to a
// comma-separated list of template names.
func (e *TemplateExporter) Export(_ context.Context, data plugin.ExportData) (map[string][]byte, error) {
	path := stringArg(data.PluginArgs, "config", "")
	if path == "" {
		return nil, fmt.Errorf("template exporter needs a config: pass --plugin-args config=PATH")
	}
	config, err := LoadTemplateConfig(path)
	if err != nil {
		return nil, err
	}
	only := listArg(data.PluginArgs, "templates")

	td := &TemplateData{
		Group:       data.Group,
		Format:      data.Format,
		Pattern:     data.Pattern,
		GeneratedAt: data.GeneratedAt,
		Palettes:    data.Palettes,
	}

	files := make(map[string][]byte)
	for _, t := range config.Templates {
		if !t.enabled() || (len(only) > 0 && !only[t.Name]) {
			continue
		}
		if _, dup := files[t.OutputPath]; dup {
			return nil, fmt.Errorf("template %q: output %s is written by another template", t.Name, t.OutputPath)
		}
		out, err := renderTemplate(t, td)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", t.Name, err)
		}
		files[t.OutputPath] = out
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates selected in %s", path)
	}
	return files, nil
}

func renderTemplate(t TemplateEntry, td *TemplateData) ([]byte, error) {
	content, err := readCapped(t.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	tmpl, err := template.New(t.Name).Funcs(templateFuncs()).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, td); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// palette looks a palette up by name.
		"palette": func(data any, name string) (plugin.PaletteData, error) {
			td, ok := data.(*TemplateData)
			if !ok {
				return plugin.PaletteData{}, fmt.Errorf("palette: expected *TemplateData, got %T", data)
			}
			for _, p := range td.Palettes {
				if p.Name == name {
					return p, nil
				}
			}
			return plugin.PaletteData{}, fmt.Errorf("palette %q not found", name)
		},

		"has": func(data any, name string) bool {
			td, ok := data.(*TemplateData)
			if !ok {
				return false
			}
			for _, p := range td.Palettes {
				if p.Name == name {
					return true
				}
			}
			return false
		},

		// stop returns one stop of a palette.
		"stop": func(p plugin.PaletteData, stop int) (plugin.StopData, error) {
			for _, s := range p.Stops {
				if s.Stop == stop {
					return s, nil
				}
			}
			return plugin.StopData{}, fmt.Errorf("palette %q has no stop %d", p.Name, stop)
		},

		"anchor": func(p plugin.PaletteData) (plugin.StopData, error) {
			for _, s := range p.Stops {
				if s.Stop == p.AnchorStop {
					return s, nil
				}
			}
			return plugin.StopData{}, fmt.Errorf("palette %q has no anchor stop", p.Name)
		},

		"ident":     cssIdent,
		"hexNoHash": func(s plugin.StopData) string { return strings.TrimPrefix(s.Hex, "#") },
		"rgbSpaces": func(s plugin.StopData) string { return fmt.Sprintf("%d %d %d", s.RGB.R, s.RGB.G, s.RGB.B) },
		"rgbDecimal": func(s plugin.StopData) string {
			return fmt.Sprintf("%d,%d,%d", s.RGB.R, s.RGB.G, s.RGB.B)
		},
	}
}

// readCapped reads a file, refusing anything over maxTemplateSize.
func readCapped(path string) ([]byte, error) {
	f, err := os.Open(path) // #nosec G304 - template files are chosen by the user
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(security.NewLimitedReader(f, maxTemplateSize)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// listArg reads a comma-separated string or a list argument as a set.
func listArg(args map[string]any, key string) map[string]bool {
	var names []string
	switch v := args[key].(type) {
	case string:
		names = strings.Split(v, ",")
	case []any:
		for _, n := range v {
			if s, ok := n.(string); ok {
				names = append(names, s)
			}
		}
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			set[n] = true
		}
	}
	return set
}

// PreExecute never skips.
func (e *TemplateExporter) PreExecute(context.Context) (bool, string, error) {
	return false, "", nil
}

// PostExecute does nothing.
func (e *TemplateExporter) PostExecute(context.Context, []string) error {
	return nil
}

// GetMetadata returns plugin metadata.
func (e *TemplateExporter) GetMetadata() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:            "template",
		Version:         version.Version,
		ProtocolVersion: plugin.ProtocolVersion,
		Description:     "Render palettes through user-supplied Go templates",
		PluginProtocol:  plugin.PluginTypeGoPlugin,
	}
}

// GetFlagHelp describes the accepted arguments.
func (e *TemplateExporter) GetFlagHelp() []plugin.FlagHelp {
	return []plugin.FlagHelp{
		{Name: "config", Type: "string", Required: true, Description: "YAML or JSON file listing templates"},
		{Name: "templates", Type: "string", Description: "Comma-separated template names to render (default: all enabled)"},
	}
}
