package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tonal/internal/batch"
	"github.com/jmylchreest/tonal/internal/export"
	"github.com/jmylchreest/tonal/internal/pattern"
)

type batchOptions struct {
	outputOptions
	file        string
	group       string
	concurrency int
}

func newBatchCmd(a *app) *cobra.Command {
	o := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch [ITEM...]",
		Short: "Generate many palettes against one pattern",
		Long: `Generate a palette for every item, loading the pattern once.

Each item is "[name=]colour[@stop]". Items come from the arguments and, with
--file, from a file (or "-" for stdin) holding one item per line; blank lines
and comment lines starting with "# " are ignored.

Items that fail are reported and skipped. The command fails only when every
item fails.

Examples:
  tonal batch -p tailwind.json primary=#2d72d2 danger=#e5484d@600 '#30a46c'
  tonal batch -p tailwind.json --file brand.txt --group brand -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd, o, args)
		},
	}
	o.register(cmd.Flags())
	cmd.Flags().StringVar(&o.file, "file", "", `read items from a file, or "-" for stdin`)
	cmd.Flags().StringVarP(&o.group, "group", "g", "", "group name for the batch (default from config)")
	cmd.Flags().IntVar(&o.concurrency, "concurrency", -1, "maximum parallel items, 0 for unbounded (default from config)")
	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, o *batchOptions, args []string) error {
	if err := o.validate(); err != nil {
		return err
	}
	path, err := a.patternPath()
	if err != nil {
		return err
	}

	lines := append([]string{}, args...)
	if o.file != "" {
		fromFile, err := readItems(cmd.InOrStdin(), o.file)
		if err != nil {
			return err
		}
		lines = append(lines, fromFile...)
	}
	if len(lines) == 0 {
		return fmt.Errorf("no batch items: pass items as arguments or use --file")
	}

	items := batch.ParseItems(lines, a.cfg.AnchorStop())

	orch := a.orchestrator(path, o.concurrency)
	res, err := orch.Generate(commandContext(cmd), batch.Options{GroupName: a.group(o.group), Format: a.cfg.OutputFormat()}, items)
	if err != nil {
		return err
	}
	return a.emit(commandContext(cmd), cmd, &o.outputOptions, export.FromBatch(res))
}

// orchestrator builds a batch orchestrator over the cached pattern.
// A negative concurrency uses the configured value.
func (a *app) orchestrator(path string, concurrency int) *batch.Orchestrator {
	if concurrency < 0 {
		concurrency = a.cfg.Concurrency
	}
	return batch.New(a.cache.Loader(path),
		batch.WithLogger(a.logger.Named("batch")),
		batch.WithConcurrency(concurrency),
	)
}

func (a *app) group(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Group
}

// readItems reads one item per line from path ("-" for stdin), skipping
// blank lines and "# " comments. A bare "#" prefix is a hex colour.
func readItems(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path) // #nosec G304 - item file is chosen by the user
		if err != nil {
			return nil, fmt.Errorf("failed to open item file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var items []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "#" || strings.HasPrefix(line, "# ") {
			continue
		}
		items = append(items, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items from %s: %w", path, err)
	}
	return items, nil
}

// stopFlag returns the flag value when set, otherwise the configured stop.
func (a *app) stopFlag(cmd *cobra.Command, value int) pattern.Stop {
	if cmd.Flags().Changed("stop") {
		return pattern.Stop(value)
	}
	return a.cfg.AnchorStop()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
