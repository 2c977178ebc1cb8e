// Package plugin provides the public API for tonal exporter plugins.
package plugin

import (
	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion defines the current exporter API version.
	// Format: MAJOR.MINOR.PATCH.
	// - Increment MAJOR for breaking changes (incompatible API changes).
	// - Increment MINOR for backward-compatible additions.
	// - Increment PATCH for backward-compatible bug fixes.
	ProtocolVersion = "0.1.0"

	// ExporterPluginName is the key exporters are served under.
	ExporterPluginName = "exporter"

	// InfoFlag makes a plugin print its PluginInfo as JSON and exit.
	InfoFlag = "--plugin-info"
)

// Handshake is the handshake configuration for the go-plugin protocol.
// Plugins and host must agree on it before any RPC is attempted.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  0, // Major version from ProtocolVersion
	MagicCookieKey:   "TONAL_PLUGIN",
	MagicCookieValue: "tonal_palette_export",
}

// PluginTypeGoPlugin identifies plugins speaking go-plugin net/rpc.
const PluginTypeGoPlugin = "go-plugin"

// PluginMap returns the go-plugin plugin set for an exporter.
// Hosts pass a nil impl.
func PluginMap(impl Exporter) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		ExporterPluginName: &ExporterRPC{Impl: impl},
	}
}

// Serve runs impl as an exporter plugin. It blocks until the host
// disconnects.
func Serve(impl Exporter) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins:         PluginMap(impl),
	})
}
