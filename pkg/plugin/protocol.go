// Package plugin provides the public API for tonal exporter plugins.
// External plugins should import this package instead of internal packages.
package plugin

// FlagHelp represents help information for a single plugin argument.
type FlagHelp struct {
	Name        string `json:"name"`        // Argument name (e.g., "prefix")
	Type        string `json:"type"`        // Type (e.g., "string", "int", "bool")
	Default     string `json:"default"`     // Default value as string
	Description string `json:"description"` // Help text
	Required    bool   `json:"required"`
}

// PluginInfo contains metadata about a plugin.
type PluginInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	Description     string `json:"description"`
	PluginProtocol  string `json:"plugin_protocol"`
}
