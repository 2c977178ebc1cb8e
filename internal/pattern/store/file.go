// Package store loads transformation patterns from example-palette files on
// disk and caches them.
package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jmylchreest/tonal/internal/compression"
	"github.com/jmylchreest/tonal/internal/pattern"
)

// MaxFileSize caps the decompressed size of a pattern file.
const MaxFileSize = 10 * 1024 * 1024

// PaletteSpec is one example palette as written in a file: ten stops keyed
// by position, each a colour string.
type PaletteSpec struct {
	Name  string            `json:"name" toml:"name"`
	Stops map[string]string `json:"stops" toml:"stops"`
}

// File is the decoded content of an example-palette file. Exactly one of
// Palettes or Pattern is set: a file either holds example palettes to
// extract from, or a pattern that was already extracted.
type File struct {
	Name     string           `json:"name" toml:"name"`
	Palettes []PaletteSpec    `json:"palettes" toml:"palettes"`
	Pattern  *pattern.Pattern `json:"-" toml:"-"`
}

// rawFile also accepts the single-palette shorthand {"name", "stops"}.
type rawFile struct {
	Name       string            `json:"name" toml:"name"`
	Palettes   []PaletteSpec     `json:"palettes" toml:"palettes"`
	Stops      map[string]string `json:"stops" toml:"stops"`
	Transforms json.RawMessage   `json:"transforms" toml:"-"`
}

func (r *rawFile) file() (*File, error) {
	f := &File{Name: r.Name, Palettes: r.Palettes}
	if len(r.Stops) > 0 {
		if len(f.Palettes) > 0 {
			return nil, errors.New("file has both top-level stops and palettes")
		}
		f.Palettes = []PaletteSpec{{Name: r.Name, Stops: r.Stops}}
	}
	if len(f.Palettes) == 0 {
		return nil, errors.New("file contains no palettes")
	}
	return f, nil
}

// Decode parses file content. The format is chosen from the file name
// (after any compression suffix): .json, .toml, otherwise plain text.
func Decode(name string, data []byte) (*File, error) {
	base := compression.TrimExtension(filepath.Base(name))
	var (
		f   *File
		err error
	)
	switch strings.ToLower(filepath.Ext(base)) {
	case ".json":
		f, err = decodeJSON(data)
	case ".toml":
		f, err = decodeTOML(data)
	default:
		f, err = decodeText(data)
	}
	if err != nil {
		return nil, err
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for i := range f.Palettes {
		if f.Palettes[i].Name == "" {
			f.Palettes[i].Name = fmt.Sprintf("%s-%d", f.Name, i+1)
		}
	}
	return f, nil
}

func decodeJSON(data []byte) (*File, error) {
	var raw rawFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if len(raw.Transforms) > 0 {
		p := &pattern.Pattern{}
		if err := json.Unmarshal(data, p); err != nil {
			return nil, fmt.Errorf("failed to parse pattern: %w", err)
		}
		return &File{Name: p.Name, Pattern: p}, nil
	}
	return raw.file()
}

func decodeTOML(data []byte) (*File, error) {
	var raw rawFile
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return raw.file()
}

// decodeText parses the line format:
//
//	# comment
//	[blue]
//	100=#dbeafe
//	...
//	1000=#172554
//
// A blank line or a [name] header starts a new palette. "name: x" at the top
// names the file.
func decodeText(data []byte) (*File, error) {
	f := &File{}
	var current *PaletteSpec

	flush := func() {
		if current != nil && len(current.Stops) > 0 {
			f.Palettes = append(f.Palettes, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			flush()
			continue
		case strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			flush()
			current = &PaletteSpec{Name: strings.TrimSpace(line[1 : len(line)-1])}
			continue
		}

		if name, ok := strings.CutPrefix(line, "name:"); ok && len(f.Palettes) == 0 && current == nil {
			f.Name = strings.TrimSpace(name)
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected <stop>=<colour>, got %q", lineNum, line)
		}
		if current == nil {
			current = &PaletteSpec{}
		}
		if current.Stops == nil {
			current.Stops = make(map[string]string, pattern.StopCount)
		}
		current.Stops[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read text palette: %w", err)
	}
	flush()

	if len(f.Palettes) == 0 {
		return nil, errors.New("file contains no palettes")
	}
	return f, nil
}

// ParsePalettes parses every palette spec in the file.
func (f *File) ParsePalettes() ([]*pattern.Palette, error) {
	out := make([]*pattern.Palette, 0, len(f.Palettes))
	for _, spec := range f.Palettes {
		p, err := pattern.ParsePalette(spec.Name, spec.Stops)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
