package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/tonal/internal/pattern"
)

type cacheEntry struct {
	modTime time.Time
	size    int64
	pattern *pattern.Pattern
}

// Cache memoises loaded patterns per file. An entry is reused only while
// the file's modification time and size are unchanged.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	logger  hclog.Logger
	load    func(path string) (*pattern.Pattern, error)
}

// NewCache creates an empty cache. A nil logger discards output.
func NewCache(logger hclog.Logger) *Cache {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		logger:  logger,
		load:    Load,
	}
}

// Get returns the pattern for path, loading it if it is not cached or the
// file has changed.
func (c *Cache) Get(path string) (*pattern.Pattern, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	c.mu.Lock()
	entry, ok := c.entries[abs]
	c.mu.Unlock()
	if ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		c.logger.Trace("pattern cache hit", "path", abs)
		return entry.pattern, nil
	}

	c.logger.Debug("loading pattern", "path", abs)
	p, err := c.load(abs)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[abs] = cacheEntry{modTime: info.ModTime(), size: info.Size(), pattern: p}
	c.mu.Unlock()
	return p, nil
}

// Loader returns a batch pattern loader backed by the cache.
func (c *Cache) Loader(path string) func(context.Context) (*pattern.Pattern, error) {
	return func(ctx context.Context) (*pattern.Pattern, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return c.Get(path)
	}
}

// Invalidate drops the cached pattern for path.
func (c *Cache) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	c.mu.Lock()
	delete(c.entries, abs)
	c.mu.Unlock()
}

// Len returns the number of cached patterns.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Watch evicts the cached pattern for path whenever the file is written,
// replaced or removed, and sends path on the returned channel after each
// eviction. The directory is watched rather than the file so editors that
// save by renaming are still seen. The channel is closed when ctx ends.
func (c *Cache) Watch(ctx context.Context, path string) (<-chan string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	changes := make(chan string, 1)
	go func() {
		defer close(changes)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
					!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				c.logger.Debug("pattern file changed", "path", abs, "op", ev.Op.String())
				c.Invalidate(abs)
				select {
				case changes <- abs:
				case <-ctx.Done():
					return
				default:
					// A notification is already pending.
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warn("file watcher error", "path", abs, "error", err)
			}
		}
	}()
	return changes, nil
}
