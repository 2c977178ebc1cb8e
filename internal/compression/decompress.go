// Package compression provides transparent decompression of single-file
// gzip, xz and bzip2 streams.
package compression

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/tonal/internal/security"
	"github.com/ulikunitz/xz"
)

// Format identifies a compression scheme.
type Format string

const (
	None  Format = "none"
	Gzip  Format = "gzip"
	Xz    Format = "xz"
	Bzip2 Format = "bzip2"
)

var extensions = map[string]Format{
	".gz":  Gzip,
	".xz":  Xz,
	".bz2": Bzip2,
}

var magic = []struct {
	format Format
	prefix []byte
}{
	{Gzip, []byte{0x1f, 0x8b}},
	{Xz, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}},
	{Bzip2, []byte{'B', 'Z', 'h'}},
}

// FormatFromName detects compression from a filename extension.
func FormatFromName(name string) Format {
	if f, ok := extensions[strings.ToLower(filepath.Ext(name))]; ok {
		return f
	}
	return None
}

// FormatFromHeader detects compression from the leading bytes of a stream.
func FormatFromHeader(header []byte) Format {
	for _, m := range magic {
		if bytes.HasPrefix(header, m.prefix) {
			return m.format
		}
	}
	return None
}

// TrimExtension removes a compression suffix, so "blue.toml.xz" becomes
// "blue.toml".
func TrimExtension(name string) string {
	if FormatFromName(name) == None {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// NewReader wraps r with a decompressor for format.
func NewReader(r io.Reader, format Format) (io.ReadCloser, error) {
	switch format {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzr, nil
	case Xz:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return io.NopCloser(xzr), nil
	case Bzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression format: %s", format)
	}
}

// ReadAll reads r, decompressing it when the name's extension or the
// stream's magic bytes indicate compression. At most maxBytes of
// decompressed data are accepted.
func ReadAll(r io.Reader, name string, maxBytes int64) ([]byte, error) {
	br := bufio.NewReader(r)

	format := FormatFromName(name)
	if format == None {
		header, _ := br.Peek(6)
		format = FormatFromHeader(header)
	}

	dr, err := NewReader(br, format)
	if err != nil {
		return nil, err
	}
	defer dr.Close()

	data, err := io.ReadAll(security.NewLimitedReader(dr, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s (%s): %w", name, format, err)
	}
	return data, nil
}
