package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmylchreest/tonal/internal/compression"
	"github.com/jmylchreest/tonal/internal/pattern"
)

// LoadError reports a pattern file that could not be turned into a pattern.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load pattern from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ReadFile reads and decodes a pattern file, decompressing it if needed.
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path) // #nosec G304 - pattern path is chosen by the user
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer fh.Close()

	data, err := compression.ReadAll(fh, filepath.Base(path), MaxFileSize)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	f, err := Decode(path, data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return f, nil
}

// Build turns decoded file content into a smoothed pattern. A file that
// already holds a pattern is validated and returned as is.
func Build(f *File) (*pattern.Pattern, error) {
	if f.Pattern != nil {
		if err := f.Pattern.Validate(); err != nil {
			return nil, err
		}
		return f.Pattern, nil
	}

	palettes, err := f.ParsePalettes()
	if err != nil {
		return nil, err
	}
	raw, err := pattern.Extract(f.Name, palettes)
	if err != nil {
		return nil, err
	}
	return pattern.Smooth(raw)
}

// Load reads the file at path and builds its pattern.
func Load(path string) (*pattern.Pattern, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Build(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return p, nil
}

// Loader returns a pattern loader for path, suitable for batch.New.
func Loader(path string) func(context.Context) (*pattern.Pattern, error) {
	return func(ctx context.Context) (*pattern.Pattern, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return Load(path)
	}
}
