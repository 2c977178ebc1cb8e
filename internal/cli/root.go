// Package cli provides the command-line interface for tonal.
package cli

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/tonal/internal/config"
	"github.com/jmylchreest/tonal/internal/export"
	"github.com/jmylchreest/tonal/internal/pattern/store"
	"github.com/jmylchreest/tonal/internal/version"
)

// app carries state shared by every command: the resolved configuration,
// the logger and the pattern cache.
type app struct {
	cfg    config.Config
	logger hclog.Logger
	cache  *store.Cache

	configPath string
	pattern    string
	format     string
	logLevel   string
	verbose    bool
	quiet      bool
}

// NewRootCmd builds the tonal command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "tonal",
		Short: "Generate tonal colour palettes from a single colour",
		Long: `tonal learns how lightness, chroma and hue change across the stops of
example palettes (such as Tailwind's blue-100 to blue-950) and applies that
pattern to any colour, producing a ten-stop palette from 100 to 1000.

The pattern is read from a JSON, TOML or plain-text palette file, optionally
compressed with gzip, xz or bzip2.`,
		Version:           version.Short(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/tonal/config.toml)")
	flags.StringVarP(&a.pattern, "pattern", "p", "", "example palette or pattern file")
	flags.StringVarP(&a.format, "format", "f", "", "output colour format (hex, rgb, oklch, oklab)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "only log errors")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(
		newGenerateCmd(a),
		newBatchCmd(a),
		newTransformCmd(a),
		newPatternCmd(a),
		newPluginsCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// setup resolves configuration (defaults, config file, .env, TONAL_*
// environment, then flags) and creates the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	b := config.NewBuilder()
	if a.configPath != "" {
		b.WithFile(a.configPath)
	} else {
		b.WithDefaultFile()
	}
	cfg, err := b.WithDotEnv().WithEnvConfig().Build()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("pattern") {
		cfg.Pattern = a.pattern
	}
	if flags.Changed("format") {
		cfg.Format = a.format
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	switch {
	case a.verbose && a.quiet:
		return errors.New("--verbose and --quiet are mutually exclusive")
	case a.verbose:
		cfg.LogLevel = "debug"
	case a.quiet:
		cfg.LogLevel = "error"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "tonal",
		Output: cmd.ErrOrStderr(),
		Level:  cfg.Level(),
		Color:  hclog.AutoColor,
	})
	a.cache = store.NewCache(a.logger.Named("pattern"))
	a.logger.Debug("configuration resolved", "pattern", cfg.Pattern, "format", cfg.Format, "stop", cfg.Stop)
	return nil
}

// patternPath returns the configured pattern file or an error explaining
// how to set one.
func (a *app) patternPath() (string, error) {
	if a.cfg.Pattern == "" {
		return "", errors.New("no pattern file: pass --pattern or set pattern in the config file")
	}
	return a.cfg.Pattern, nil
}

func newVersionCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, plugin protocol and Go version.`,
		Args:  cobra.NoArgs,
		// Version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch output {
			case outputJSON:
				return export.WriteJSON(cmd.OutOrStdout(), version.GetInfo())
			case "", "text":
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
				return err
			default:
				return fmt.Errorf("unknown output mode %q (valid modes: text, %s)", output, outputJSON)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output mode (text, json)")
	return cmd
}
