// Package version provides build-time version information for tonal.
package version

import (
	"fmt"
	"runtime"

	"github.com/jmylchreest/tonal/pkg/plugin"
)

// Set with -ldflags "-X github.com/jmylchreest/tonal/internal/version.<Name>=<value>".
var (
	// Version is the release version.
	Version = "0.1.0-dev"

	// Commit is the git commit the binary was built from.
	Commit = "unknown"

	// Date is the UTC build time in RFC 3339.
	Date = "unknown"
)

// Info is the version report printed by `tonal version`.
type Info struct {
	Version        string `json:"version"`
	Commit         string `json:"commit"`
	Date           string `json:"date"`
	PluginProtocol string `json:"plugin_protocol"`
	GoVersion      string `json:"go_version"`
	Platform       string `json:"platform"`
}

// GetInfo returns the version report.
func GetInfo() Info {
	return Info{
		Version:        Version,
		Commit:         Commit,
		Date:           Date,
		PluginProtocol: plugin.ProtocolVersion,
		GoVersion:      runtime.Version(),
		Platform:       runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders the report on one line. Build details are included only
// when both commit and date were injected.
func String() string {
	info := GetInfo()
	build := ""
	if info.Commit != "unknown" && info.Date != "unknown" {
		build = fmt.Sprintf("commit: %s, built: %s, ", shortCommit(info.Commit), info.Date)
	}
	return fmt.Sprintf("tonal version %s (%splugin protocol %s, %s, %s)",
		info.Version, build, info.PluginProtocol, info.GoVersion, info.Platform)
}

// Short returns just the release version.
func Short() string {
	return Version
}

func shortCommit(c string) string {
	if len(c) > 8 {
		return c[:8]
	}
	return c
}
