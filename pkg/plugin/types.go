package plugin

// ExportData is the batch sent to exporter plugins.
type ExportData struct {
	ID          string         `json:"id"`
	Group       string         `json:"group"`
	Format      string         `json:"format"`
	Pattern     string         `json:"pattern"`
	GeneratedAt string         `json:"generated_at"` // RFC 3339
	Palettes    []PaletteData  `json:"palettes"`
	PluginArgs  map[string]any `json:"plugin_args,omitempty"`
	DryRun      bool           `json:"dry_run"`
}

// PaletteData is one generated ten-stop palette.
type PaletteData struct {
	Name       string     `json:"name"`
	Input      string     `json:"input"`
	AnchorStop int        `json:"anchor_stop"`
	Stops      []StopData `json:"stops"`
}

// StopData is a single stop. Value is rendered in ExportData.Format; Hex
// and the OKLCH components are always present.
type StopData struct {
	Stop      int       `json:"stop"`
	Value     string    `json:"value"`
	Hex       string    `json:"hex"`
	RGB       RGBColour `json:"rgb"`
	Lightness float64   `json:"l"`
	Chroma    float64   `json:"c"`
	Hue       float64   `json:"h"`
	Clamped   bool      `json:"clamped,omitempty"`
}

// RGBColour represents an RGB color.
type RGBColour struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}
