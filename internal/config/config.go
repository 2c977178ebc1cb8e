// Package config provides layered configuration for tonal: built-in
// defaults, a TOML file, .env files and TONAL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"

	"github.com/jmylchreest/tonal/internal/colour"
	"github.com/jmylchreest/tonal/internal/pattern"
)

// EnvPrefix prefixes every environment variable read by the builder.
const EnvPrefix = "TONAL_"

// Config holds resolved settings.
type Config struct {
	// Pattern is the path of the example-palette file.
	Pattern string `toml:"pattern"`

	// Format is the output format: hex, rgb, oklch or oklab.
	Format string `toml:"format"`

	// Stop is the default anchor stop.
	Stop int `toml:"stop"`

	// Concurrency bounds batch workers. 0 means unbounded.
	Concurrency int `toml:"concurrency"`

	LogLevel string `toml:"log_level"`

	// Plugins are exporter plugin executables.
	Plugins []string `toml:"plugins"`

	// Group is the default batch group name.
	Group string `toml:"group"`

	// OutputDir is where exporter plugins write their files.
	OutputDir string `toml:"output_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Format:    string(colour.FormatHex),
		Stop:      int(pattern.ReferenceStop),
		LogLevel:  "info",
		Group:     "palettes",
		OutputDir: ".",
	}
}

// DefaultPath returns the default config file location,
// $XDG_CONFIG_HOME/tonal/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	return filepath.Join(dir, "tonal", "config.toml"), nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := colour.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if !pattern.Stop(c.Stop).Valid() {
		return fmt.Errorf("config: invalid stop %d (must be 100-1000 in steps of 100)", c.Stop)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config: concurrency must not be negative, got %d", c.Concurrency)
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	return nil
}

// OutputFormat returns the parsed output format.
func (c Config) OutputFormat() colour.Format {
	f, err := colour.ParseFormat(c.Format)
	if err != nil {
		return colour.FormatHex
	}
	return f
}

// AnchorStop returns the default anchor stop.
func (c Config) AnchorStop() pattern.Stop {
	return pattern.Stop(c.Stop)
}

// Level returns the configured log level.
func (c Config) Level() hclog.Level {
	if l := hclog.LevelFromString(c.LogLevel); l != hclog.NoLevel {
		return l
	}
	return hclog.Info
}

// Builder provides a fluent interface for layering configuration sources.
type Builder struct {
	config       Config
	file         string
	fileRequired bool
	dotEnv       []string
	useEnv       bool
}

// NewBuilder creates a builder seeded with Default().
func NewBuilder() *Builder {
	return &Builder{config: Default()}
}

// WithConfig replaces the base configuration.
func (b *Builder) WithConfig(config Config) *Builder {
	b.config = config
	return b
}

// WithFile reads a TOML config file. A missing file is an error.
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	b.fileRequired = true
	return b
}

// WithDefaultFile reads DefaultPath() if it exists.
func (b *Builder) WithDefaultFile() *Builder {
	if path, err := DefaultPath(); err == nil {
		b.file = path
		b.fileRequired = false
	}
	return b
}

// WithDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are skipped.
// With no paths, ".env" in the working directory is used.
func (b *Builder) WithDotEnv(paths ...string) *Builder {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	b.dotEnv = append(b.dotEnv, paths...)
	return b
}

// WithEnvConfig applies TONAL_* environment variables.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// Build resolves all sources and validates the result.
// Precedence, lowest first: base config, file, environment (including .env).
func (b *Builder) Build() (Config, error) {
	config := b.config

	if b.file != "" {
		if err := decodeFile(b.file, &config); err != nil {
			if b.fileRequired || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	for _, path := range b.dotEnv {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if b.useEnv {
		if err := applyEnv(&config); err != nil {
			return Config{}, err
		}
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func decodeFile(path string, config *Config) error {
	data, err := os.ReadFile(path) // #nosec G304 - config path is chosen by the user
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	md, err := toml.Decode(string(data), config)
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys in config file %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func applyEnv(config *Config) error {
	if v, ok := lookup("PATTERN"); ok {
		config.Pattern = v
	}
	if v, ok := lookup("FORMAT"); ok {
		config.Format = v
	}
	if v, ok := lookup("STOP"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sSTOP: %w", EnvPrefix, err)
		}
		config.Stop = n
	}
	if v, ok := lookup("CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sCONCURRENCY: %w", EnvPrefix, err)
		}
		config.Concurrency = n
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		config.LogLevel = v
	}
	if v, ok := lookup("PLUGINS"); ok {
		config.Plugins = parseList(v)
	}
	if v, ok := lookup("GROUP"); ok {
		config.Group = v
	}
	if v, ok := lookup("OUTPUT_DIR"); ok {
		config.OutputDir = v
	}
	return nil
}

// lookup returns a non-empty TONAL_* variable.
func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// parseList parses a comma-separated list, dropping empty entries.
func parseList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
