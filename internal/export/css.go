package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jmylchreest/tonal/internal/version"
	"github.com/jmylchreest/tonal/pkg/plugin"
)

// CSSExporter renders palettes as CSS custom properties, one per stop:
//
//	:root {
//	  --blue-100: #dbeafe;
//	}
//
// It is linked into tonal and also served as the tonal-export-css plugin.
type CSSExporter struct{}

var _ plugin.Exporter = (*CSSExporter)(nil)

// Export renders a single stylesheet.
func (e *CSSExporter) Export(_ context.Context, data plugin.ExportData) (map[string][]byte, error) {
	prefix := stringArg(data.PluginArgs, "prefix", "")
	selector := stringArg(data.PluginArgs, "selector", ":root")
	file := stringArg(data.PluginArgs, "file", cssIdent(data.Group)+".css")

	var b bytes.Buffer
	fmt.Fprintf(&b, "/* %s: generated by tonal from pattern %s */\n", data.Group, data.Pattern)
	fmt.Fprintf(&b, "%s {\n", selector)
	for i, p := range data.Palettes {
		if i > 0 {
			b.WriteString("\n")
		}
		name := cssIdent(p.Name)
		for _, s := range p.Stops {
			fmt.Fprintf(&b, "  --%s%s-%d: %s;\n", prefix, name, s.Stop, s.Value)
		}
	}
	b.WriteString("}\n")

	return map[string][]byte{file: b.Bytes()}, nil
}

// PreExecute never skips.
func (e *CSSExporter) PreExecute(context.Context) (bool, string, error) {
	return false, "", nil
}

// PostExecute does nothing.
func (e *CSSExporter) PostExecute(context.Context, []string) error {
	return nil
}

// GetMetadata returns plugin metadata.
func (e *CSSExporter) GetMetadata() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:            "css",
		Version:         version.Version,
		ProtocolVersion: plugin.ProtocolVersion,
		Description:     "Export palettes as CSS custom properties",
		PluginProtocol:  plugin.PluginTypeGoPlugin,
	}
}

// GetFlagHelp describes the accepted arguments.
func (e *CSSExporter) GetFlagHelp() []plugin.FlagHelp {
	return []plugin.FlagHelp{
		{Name: "prefix", Type: "string", Default: "", Description: "Prefix for every custom property name"},
		{Name: "selector", Type: "string", Default: ":root", Description: "Selector the properties are declared on"},
		{Name: "file", Type: "string", Default: "<group>.css", Description: "Output file name, relative to the output directory"},
	}
}

func stringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

// cssIdent lowercases s and replaces anything outside [a-z0-9_-] with '-'.
func cssIdent(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if id := strings.Trim(b.String(), "-"); id != "" {
		return id
	}
	return "palette"
}
