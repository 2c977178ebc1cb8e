package plugin

import (
	"context"
)

// Exporter is the interface exporter plugins implement for go-plugin RPC.
type Exporter interface {
	// Export renders the palettes, returning file contents keyed by
	// relative file name. The host writes the files.
	Export(ctx context.Context, data ExportData) (map[string][]byte, error)

	// PreExecute runs before Export. Returning skip=true skips the plugin
	// without error.
	PreExecute(ctx context.Context) (skip bool, reason string, err error)

	// PostExecute runs after the host has written the exported files.
	PostExecute(ctx context.Context, writtenFiles []string) error

	// GetMetadata returns plugin metadata.
	GetMetadata() PluginInfo

	// GetFlagHelp describes the plugin arguments accepted in
	// ExportData.PluginArgs.
	GetFlagHelp() []FlagHelp
}
