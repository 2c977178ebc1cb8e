package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/tonal/internal/colour"
	"github.com/jmylchreest/tonal/internal/pattern"
)

// clearEnv unsets every TONAL_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PATTERN", "FORMAT", "STOP", "CONCURRENCY", "LOG_LEVEL", "PLUGINS", "GROUP", "OUTPUT_DIR"} {
		t.Setenv(EnvPrefix+key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if c.OutputFormat() != colour.FormatHex {
		t.Errorf("OutputFormat() = %s, want hex", c.OutputFormat())
	}
	if c.AnchorStop() != pattern.ReferenceStop {
		t.Errorf("AnchorStop() = %d, want %d", c.AnchorStop(), pattern.ReferenceStop)
	}
	if c.Level() != hclog.Info {
		t.Errorf("Level() = %s, want info", c.Level())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "oklch", mutate: func(c *Config) { c.Format = "oklch" }},
		{name: "unknown format", mutate: func(c *Config) { c.Format = "cmyk" }, wantErr: true},
		{name: "bad stop", mutate: func(c *Config) { c.Stop = 450 }, wantErr: true},
		{name: "negative concurrency", mutate: func(c *Config) { c.Concurrency = -1 }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "chatty" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuilder_Layering(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
pattern = "/palettes/tailwind.json"
format = "rgb"
stop = 600
concurrency = 4
plugins = ["/usr/lib/tonal/css"]
`)
	t.Setenv("TONAL_FORMAT", "oklch")
	t.Setenv("TONAL_PLUGINS", "a, b,,c")

	got, err := NewBuilder().WithFile(path).WithEnvConfig().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := Default()
	want.Pattern = "/palettes/tailwind.json"
	want.Format = "oklch"
	want.Stop = 600
	want.Concurrency = 4
	want.Plugins = []string{"a", "b", "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("TONAL_GROUP=brand\nTONAL_STOP=300\n"), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	// godotenv only fills variables that are unset.
	os.Unsetenv("TONAL_GROUP")
	os.Unsetenv("TONAL_STOP")
	t.Cleanup(func() {
		os.Unsetenv("TONAL_GROUP")
		os.Unsetenv("TONAL_STOP")
	})

	got, err := NewBuilder().WithDotEnv(envPath, filepath.Join(dir, "missing.env")).WithEnvConfig().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got.Group != "brand" || got.Stop != 300 {
		t.Errorf("got group %q stop %d, want brand 300", got.Group, got.Stop)
	}
}

func TestBuilder_Errors(t *testing.T) {
	clearEnv(t)

	t.Run("missing explicit file", func(t *testing.T) {
		if _, err := NewBuilder().WithFile(filepath.Join(t.TempDir(), "none.toml")).Build(); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		path := writeConfig(t, `colour_space = "lab"`)
		if _, err := NewBuilder().WithFile(path).Build(); err == nil {
			t.Error("expected error for unknown key")
		}
	})

	t.Run("invalid env stop", func(t *testing.T) {
		t.Setenv("TONAL_STOP", "middle")
		if _, err := NewBuilder().WithEnvConfig().Build(); err == nil {
			t.Error("expected error for non-numeric stop")
		}
	})

	t.Run("invalid value from file", func(t *testing.T) {
		path := writeConfig(t, `format = "hsl"`)
		if _, err := NewBuilder().WithFile(path).Build(); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestBuilder_EnvIgnoredWithoutOptIn(t *testing.T) {
	clearEnv(t)
	t.Setenv("TONAL_FORMAT", "oklab")
	got, err := NewBuilder().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got.Format != "hex" {
		t.Errorf("Format = %q, want hex when env is not enabled", got.Format)
	}
}
