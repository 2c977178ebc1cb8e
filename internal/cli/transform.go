package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tonal/internal/batch"
	"github.com/jmylchreest/tonal/internal/colour"
	"github.com/jmylchreest/tonal/internal/export"
)

type transformOptions struct {
	outputOptions
	stop        int
	group       string
	concurrency int
}

func newTransformCmd(a *app) *cobra.Command {
	o := &transformOptions{}
	cmd := &cobra.Command{
		Use:   "transform REFERENCE TARGET...",
		Short: "Carry one colour's lightness and chroma onto other hues",
		Long: `Build palettes whose anchors share the reference colour's lightness and
chroma but take each target's hue. This keeps a set of brand colours
visually balanced: a red, a green and a blue that all sit at the same
perceived weight.

Each target is "[name=]colour[@stop]". Achromatic targets keep the
reference hue. Targets that fail are reported and skipped; the command
fails only when every target fails.

Examples:
  tonal transform -p tailwind.json '#2d72d2' danger=#ff0000 success=#00ff00
  tonal transform -p tailwind.json --stop 600 'oklch(0.55 0.18 255)' '#f5a623'`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTransform(cmd, o, args[0], args[1:])
		},
	}
	o.register(cmd.Flags())
	cmd.Flags().IntVarP(&o.stop, "stop", "s", 0, "stop the transformed colours are anchored at (default from config)")
	cmd.Flags().StringVarP(&o.group, "group", "g", "", "group name (default from config)")
	cmd.Flags().IntVar(&o.concurrency, "concurrency", -1, "maximum parallel items, 0 for unbounded (default from config)")
	return cmd
}

func (a *app) runTransform(cmd *cobra.Command, o *transformOptions, reference string, targets []string) error {
	if err := o.validate(); err != nil {
		return err
	}
	path, err := a.patternPath()
	if err != nil {
		return err
	}

	stop := a.stopFlag(cmd, o.stop)
	ref, refErr := colour.Parse(reference)
	items := make([]batch.TransformItem, len(targets))
	plain := true
	for i, t := range targets {
		item, err := batch.ParseItem(t, stop)
		if err != nil {
			items[i] = batch.TransformItem{Reference: reference, Target: strings.TrimSpace(t), Stop: stop, Err: err}
			plain = false
			continue
		}
		if refErr == nil {
			if target, err := colour.Parse(item.Colour); err == nil && !colour.IsTransferViable(ref, target) {
				a.logger.Warn("transfer may lose most of the reference chroma",
					"reference", reference, "target", item.Colour)
			}
		}
		if item.Name != "" || item.Stop != stop {
			plain = false
		}
		items[i] = batch.TransformItem{
			Name:      item.Name,
			Reference: reference,
			Target:    item.Colour,
			Stop:      item.Stop,
		}
	}

	ctx := commandContext(cmd)
	opts := batch.Options{GroupName: a.group(o.group), Format: a.cfg.OutputFormat()}
	orch := a.orchestrator(path, o.concurrency)
	// Unnamed targets anchored at the command's stop share one reference.
	var res *batch.Result
	if plain {
		colours := make([]string, len(items))
		for i, item := range items {
			colours[i] = item.Target
		}
		res, err = orch.TransformMany(ctx, opts, reference, colours, stop)
	} else {
		res, err = orch.Transform(ctx, opts, items)
	}
	if err != nil {
		return err
	}
	return a.emit(ctx, cmd, &o.outputOptions, export.FromBatch(res))
}
