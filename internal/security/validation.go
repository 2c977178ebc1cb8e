// Package security provides validation helpers for untrusted input: pattern
// files read from disk and file names returned by exporter plugins.
package security

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrSizeLimit is returned once a LimitedReader's budget is exhausted.
var ErrSizeLimit = errors.New("size limit exceeded")

// ValidateFilePath validates a relative file path to prevent directory traversal.
// It is used for file names supplied by exporter plugins.
func ValidateFilePath(filePath, baseDir string) error {
	if filePath == "" {
		return fmt.Errorf("empty file path")
	}

	if strings.Contains(filePath, "..") {
		return fmt.Errorf("file path contains directory traversal (..) - not allowed")
	}

	if filepath.IsAbs(filePath) {
		return fmt.Errorf("absolute paths are not allowed: %s", filePath)
	}

	finalPath := filepath.Join(baseDir, filePath)
	cleanFinal := filepath.Clean(finalPath)
	cleanBase := filepath.Clean(baseDir)

	if !strings.HasPrefix(cleanFinal, cleanBase+string(filepath.Separator)) &&
		cleanFinal != cleanBase {
		return fmt.Errorf("file path would escape base directory")
	}

	return nil
}

// SafeUint8 converts an integer to uint8, clamping to 0-255.
func SafeUint8(val int) uint8 {
	if val < 0 {
		return 0
	}
	if val > 255 {
		return 255
	}
	return uint8(val)
}

// LimitedReader wraps an io.Reader and limits the total bytes that can be read.
// Unlike io.LimitedReader it fails loudly rather than truncating, which
// guards against decompression bombs.
type LimitedReader struct {
	R         io.Reader
	Remaining int64
}

// Read implements io.Reader with size limits.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if l.Remaining <= 0 {
		// Exactly at the limit is fine if the stream has ended.
		var probe [1]byte
		n, err := l.R.Read(probe[:])
		if n == 0 && err != nil {
			return 0, err
		}
		return 0, ErrSizeLimit
	}
	if int64(len(p)) > l.Remaining {
		p = p[:l.Remaining]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	return n, err
}

// NewLimitedReader creates a new LimitedReader with the specified size limit.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{
		R:         r,
		Remaining: maxBytes,
	}
}
