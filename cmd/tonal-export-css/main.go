// tonal-export-css - tonal exporter plugin writing CSS custom properties
//
// This is the built-in css exporter served over the go-plugin protocol. It
// doubles as a reference for writing exporter plugins.
//
// Build:
//
//	go build -o tonal-export-css ./cmd/tonal-export-css
//
// Usage:
//
//	tonal generate -p tailwind.json -e ./tonal-export-css '#2d72d2'
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jmylchreest/tonal/internal/export"
	"github.com/jmylchreest/tonal/pkg/plugin"
)

func main() {
	exporter := &export.CSSExporter{}

	// Hosts query --plugin-info before starting the RPC server.
	if len(os.Args) > 1 && os.Args[1] == plugin.InfoFlag {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(exporter.GetMetadata()); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding plugin info: %v\n", err)
			os.Exit(1)
		}
		return
	}

	plugin.Serve(exporter)
}
