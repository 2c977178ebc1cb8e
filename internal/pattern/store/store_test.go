package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/tonal/internal/pattern"
)

const blueJSON = `{
  "name": "tailwind",
  "palettes": [
    {"name": "blue", "stops": {
      "100": "#dbeafe", "200": "#bfdbfe", "300": "#93c5fd", "400": "#60a5fa", "500": "#3b82f6",
      "600": "#2563eb", "700": "#1d4ed8", "800": "#1e40af", "900": "#1e3a8a", "1000": "#172554"
    }},
    {"name": "indigo", "stops": {
      "100": "#e0e7ff", "200": "#c7d2fe", "300": "#a5b4fc", "400": "#818cf8", "500": "#6366f1",
      "600": "#4f46e5", "700": "#4338ca", "800": "#3730a3", "900": "#312e81", "1000": "#1e1b4b"
    }}
  ]
}`

const blueShorthandJSON = `{"name": "blue", "stops": {
  "100": "#dbeafe", "200": "#bfdbfe", "300": "#93c5fd", "400": "#60a5fa", "500": "#3b82f6",
  "600": "#2563eb", "700": "#1d4ed8", "800": "#1e40af", "900": "#1e3a8a", "1000": "#172554"
}}`

const blueTOML = `name = "tailwind"

[[palettes]]
name = "blue"

[palettes.stops]
100 = "#dbeafe"
200 = "#bfdbfe"
300 = "#93c5fd"
400 = "#60a5fa"
500 = "#3b82f6"
600 = "#2563eb"
700 = "#1d4ed8"
800 = "#1e40af"
900 = "#1e3a8a"
1000 = "#172554"
`

const blueText = `name: tailwind
# Tailwind blue, with 950 mapped to 1000.
[blue]
100=#dbeafe
200=#bfdbfe
300=#93c5fd
400=#60a5fa
500=#3b82f6
600=#2563eb
700=#1d4ed8
800=#1e40af
900=#1e3a8a
1000=#172554

[indigo]
100 = #e0e7ff
200 = #c7d2fe
300 = #a5b4fc
400 = #818cf8
500 = #6366f1
600 = #4f46e5
700 = #4338ca
800 = #3730a3
900 = #312e81
1000 = #1e1b4b
`

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name         string
		file         string
		data         string
		wantName     string
		wantPalettes []string
	}{
		{name: "json", file: "p.json", data: blueJSON, wantName: "tailwind", wantPalettes: []string{"blue", "indigo"}},
		{name: "json shorthand", file: "p.json", data: blueShorthandJSON, wantName: "blue", wantPalettes: []string{"blue"}},
		{name: "toml", file: "p.toml", data: blueTOML, wantName: "tailwind", wantPalettes: []string{"blue"}},
		{name: "text", file: "p.txt", data: blueText, wantName: "tailwind", wantPalettes: []string{"blue", "indigo"}},
		{name: "compressed suffix ignored", file: "p.toml.xz", data: blueTOML, wantName: "tailwind", wantPalettes: []string{"blue"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Decode(tt.file, []byte(tt.data))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if f.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", f.Name, tt.wantName)
			}
			var names []string
			for _, p := range f.Palettes {
				names = append(names, p.Name)
				if len(p.Stops) != pattern.StopCount {
					t.Errorf("palette %s has %d stops", p.Name, len(p.Stops))
				}
			}
			if diff := cmp.Diff(tt.wantPalettes, names); diff != "" {
				t.Errorf("palette names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_NameFromFile(t *testing.T) {
	f, err := Decode("/tmp/brand.txt.gz", []byte("100=#dbeafe\n500=#3b82f6\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if f.Name != "brand" {
		t.Errorf("Name = %q, want brand", f.Name)
	}
	if f.Palettes[0].Name != "brand-1" {
		t.Errorf("palette name = %q, want brand-1", f.Palettes[0].Name)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{name: "bad json", file: "p.json", data: `{"name":`},
		{name: "empty json", file: "p.json", data: `{"name": "x"}`},
		{name: "bad toml", file: "p.toml", data: `name = `},
		{name: "text without pairs", file: "p.txt", data: "100 #dbeafe\n"},
		{name: "comments only", file: "p.txt", data: "# nothing here\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.file, []byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	if _, err := zw.Write([]byte(blueJSON)); err != nil {
		t.Fatalf("gzip: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip: %v", err)
	}

	var xzBuf bytes.Buffer
	xw, err := xz.NewWriter(&xzBuf)
	if err != nil {
		t.Fatalf("xz: %v", err)
	}
	if _, err := xw.Write([]byte(blueText)); err != nil {
		t.Fatalf("xz: %v", err)
	}
	if err := xw.Close(); err != nil {
		t.Fatalf("xz: %v", err)
	}

	paths := []string{
		writeFile(t, dir, "plain.json", []byte(blueJSON)),
		writeFile(t, dir, "packed.json.gz", gz.Bytes()),
		writeFile(t, dir, "packed.txt.xz", xzBuf.Bytes()),
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			p, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if p.Name != "tailwind"+pattern.SmoothedSuffix {
				t.Errorf("Name = %q, want smoothed tailwind", p.Name)
			}
			if p.Metadata.SourceCount != 2 {
				t.Errorf("SourceCount = %d, want 2", p.Metadata.SourceCount)
			}
			if err := p.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestLoad_ExtractedPattern(t *testing.T) {
	dir := t.TempDir()
	src, err := Load(writeFile(t, dir, "src.json", []byte(blueJSON)))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	data, err := json.Marshal(src)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	got, err := Load(writeFile(t, dir, "pattern.json", data))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("pattern file mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.json"))
		var loadErr *LoadError
		if !errors.As(err, &loadErr) || !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want LoadError wrapping ErrNotExist", err)
		}
	})

	t.Run("incomplete palette", func(t *testing.T) {
		path := writeFile(t, dir, "short.txt", []byte("100=#dbeafe\n500=#3b82f6\n"))
		_, err := Load(path)
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("error = %v, want LoadError", err)
		}
		if loadErr.Path != path {
			t.Errorf("Path = %q, want %q", loadErr.Path, path)
		}
		var extErr *pattern.ExtractionError
		if !errors.As(err, &extErr) {
			t.Errorf("error = %v, want wrapped ExtractionError", err)
		}
	})
}

func TestLoader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Loader("unused.json")(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "blue.json", []byte(blueJSON))

	cache := NewCache(nil)
	loads := 0
	cache.load = func(p string) (*pattern.Pattern, error) {
		loads++
		return Load(p)
	}

	first, err := cache.Get(path)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	second, err := cache.Loader(path)(context.Background())
	if err != nil {
		t.Fatalf("Loader() error = %v", err)
	}
	if first != second || loads != 1 {
		t.Errorf("expected cached pattern, loads = %d", loads)
	}

	// Rewrite with a different mtime so the entry goes stale.
	writeFile(t, dir, "blue.json", []byte(blueShorthandJSON))
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}
	third, err := cache.Get(path)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if loads != 2 {
		t.Errorf("loads = %d, want 2 after file change", loads)
	}
	if third.Metadata.SourceCount != 1 {
		t.Errorf("SourceCount = %d, want 1 from rewritten file", third.Metadata.SourceCount)
	}

	cache.Invalidate(path)
	if cache.Len() != 0 {
		t.Errorf("Len() = %d after Invalidate, want 0", cache.Len())
	}
}

func TestCache_Watch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "blue.json", []byte(blueJSON))
	writeFile(t, dir, "other.json", []byte(blueJSON))

	cache := NewCache(nil)
	if _, err := cache.Get(path); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := cache.Watch(ctx, path)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(path, []byte(blueShorthandJSON), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case changed := <-changes:
		if !strings.HasSuffix(changed, "blue.json") {
			t.Errorf("changed = %q, want blue.json", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d after change, want 0", cache.Len())
	}

	cancel()
	for range changes {
		// Drain until the watcher closes the channel.
	}
}

func TestLoad_BundledPalettes(t *testing.T) {
	p, err := Load(filepath.Join("..", "..", "..", "testdata", "palettes", "tailwind.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.Name != "tailwind-smoothed" {
		t.Errorf("Name = %q, want tailwind-smoothed", p.Name)
	}
	if p.Metadata.SourceCount != 6 {
		t.Errorf("SourceCount = %d, want 6", p.Metadata.SourceCount)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
