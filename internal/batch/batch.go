// Package batch applies palette generation and optical transforms to many
// inputs concurrently against a single loaded pattern.
package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/tonal/internal/colour"
	"github.com/jmylchreest/tonal/internal/generator"
	"github.com/jmylchreest/tonal/internal/pattern"
)

// DefaultGroupName labels a batch when the caller gives no group name.
const DefaultGroupName = "palettes"

// Loader supplies the pattern for a batch. It is called once per batch.
type Loader func(ctx context.Context) (*pattern.Pattern, error)

// Item is a direct colour/stop generation request.
type Item struct {
	Name   string
	Colour string
	Stop   pattern.Stop

	// Err marks an item whose text could not be parsed. The item is
	// recorded as a failure without generating.
	Err error
}

// TransformItem is an optical transform request: the reference colour's
// lightness and chroma carried onto the target's hue, then expanded into a
// palette with the result anchored at Stop.
type TransformItem struct {
	Name      string
	Reference string
	Target    string
	Stop      pattern.Stop
	Err       error
}

// Options apply to a whole batch.
type Options struct {
	GroupName string
	Format    colour.Format
}

// Orchestrator runs batches. It is safe for concurrent use.
type Orchestrator struct {
	load        Loader
	logger      hclog.Logger
	concurrency int
	now         func() time.Time
	newID       func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger hclog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithConcurrency bounds the number of items processed at once.
// Zero or less means unbounded.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		o.concurrency = n
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an orchestrator that obtains its pattern from load.
func New(load Loader, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		load:   load,
		logger: hclog.NewNullLogger(),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// task produces one palette, or an error attributed to its item.
type task func(p *pattern.Pattern, format colour.Format) (*generator.PaletteResult, error)

// Generate produces one palette per colour/stop pair.
func (o *Orchestrator) Generate(ctx context.Context, opts Options, items []Item) (*Result, error) {
	tasks := make([]task, len(items))
	attrs := make([]ItemFailure, len(items))
	for i, item := range items {
		attrs[i] = ItemFailure{Index: i, Colour: item.Colour, Stop: item.Stop}
		tasks[i] = func(p *pattern.Pattern, format colour.Format) (*generator.PaletteResult, error) {
			if item.Err != nil {
				return nil, item.Err
			}
			return generator.Generate(generator.Request{Name: item.Name, Colour: item.Colour, Stop: item.Stop}, p, format)
		}
	}
	return o.run(ctx, opts, tasks, attrs)
}

// Transform produces one palette per reference/target pair.
func (o *Orchestrator) Transform(ctx context.Context, opts Options, items []TransformItem) (*Result, error) {
	tasks := make([]task, len(items))
	attrs := make([]ItemFailure, len(items))
	for i, item := range items {
		attrs[i] = ItemFailure{Index: i, Colour: item.Target, Reference: item.Reference, Stop: item.Stop}
		tasks[i] = func(p *pattern.Pattern, format colour.Format) (*generator.PaletteResult, error) {
			return transform(item, p, format)
		}
	}
	return o.run(ctx, opts, tasks, attrs)
}

// TransformMany carries one reference colour onto many target hues, all
// anchored at the same stop.
func (o *Orchestrator) TransformMany(ctx context.Context, opts Options, reference string, targets []string, stop pattern.Stop) (*Result, error) {
	items := make([]TransformItem, len(targets))
	for i, t := range targets {
		items[i] = TransformItem{Reference: reference, Target: t, Stop: stop}
	}
	return o.Transform(ctx, opts, items)
}

func transform(item TransformItem, p *pattern.Pattern, format colour.Format) (*generator.PaletteResult, error) {
	if item.Err != nil {
		return nil, item.Err
	}
	input := item.Reference + " -> " + item.Target
	wrap := func(err error) error {
		return &generator.GeneratePaletteError{Input: input, Stop: item.Stop, Err: err}
	}

	ref, err := colour.Parse(item.Reference)
	if err != nil {
		return nil, wrap(fmt.Errorf("reference: %w", err))
	}
	target, err := colour.Parse(item.Target)
	if err != nil {
		return nil, wrap(fmt.Errorf("target: %w", err))
	}
	anchor, err := colour.Transfer(ref, target)
	if err != nil {
		return nil, wrap(err)
	}
	return generator.GenerateColour(item.Name, input, anchor, item.Stop, p, format)
}

func (o *Orchestrator) run(ctx context.Context, opts Options, tasks []task, attrs []ItemFailure) (*Result, error) {
	if len(tasks) == 0 {
		return nil, errors.New("batch has no items")
	}
	if o.load == nil {
		return nil, errors.New("no pattern loader configured")
	}
	if opts.GroupName == "" {
		opts.GroupName = DefaultGroupName
	}
	if opts.Format == "" {
		opts.Format = colour.FormatHex
	}

	p, err := o.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern: %w", err)
	}
	if p == nil {
		return nil, errors.New("failed to load pattern: loader returned no pattern")
	}

	o.logger.Debug("starting batch",
		"group", opts.GroupName,
		"items", len(tasks),
		"pattern", p.Name,
		"format", opts.Format,
		"concurrency", o.concurrency)

	// Each task writes only its own slot.
	results := make([]*generator.PaletteResult, len(tasks))
	errs := make([]error, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}
	for i, t := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = t(p, opts.Format)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		GroupName:    opts.GroupName,
		OutputFormat: opts.Format,
		Pattern:      p.Name,
		Palettes:     make([]*generator.PaletteResult, 0, len(tasks)),
		Failures:     []ItemFailure{},
	}
	for i := range tasks {
		if errs[i] != nil {
			failure := attrs[i]
			failure.Error = errs[i].Error()
			result.Failures = append(result.Failures, failure)
			o.logger.Warn("batch item failed", "index", i, "colour", failure.Colour, "stop", failure.Stop, "error", errs[i])
			continue
		}
		if results[i].HasFailures() {
			o.logger.Warn("palette lost hue at some stops",
				"palette", results[i].Name,
				"stops", failedStops(results[i]))
		}
		result.Palettes = append(result.Palettes, results[i])
	}

	if len(result.Palettes) == 0 {
		return nil, &GenerationError{Failures: result.Failures}
	}

	result.ID = o.newID()
	result.GeneratedAt = o.now().UTC()

	o.logger.Info("batch complete",
		"group", result.GroupName,
		"palettes", len(result.Palettes),
		"failures", len(result.Failures))
	return result, nil
}

func failedStops(r *generator.PaletteResult) string {
	stops := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		stops[i] = f.Stop.String()
	}
	return strings.Join(stops, ",")
}

// ParseItem parses "[name=]colour[@stop]" into an Item. Without a stop
// the colour is anchored at defaultStop.
func ParseItem(s string, defaultStop pattern.Stop) (Item, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Item{}, errors.New("empty batch item")
	}
	var item Item
	if eq := strings.Index(s, "="); eq >= 0 && !strings.Contains(s[:eq], "(") {
		item.Name = strings.TrimSpace(s[:eq])
		s = strings.TrimSpace(s[eq+1:])
	}
	idx := strings.LastIndex(s, "@")
	if idx < 0 {
		item.Colour = s
		item.Stop = defaultStop
	} else {
		stop, err := pattern.ParseStop(s[idx+1:])
		if err != nil {
			return Item{}, fmt.Errorf("batch item %q: %w", s, err)
		}
		item.Colour = strings.TrimSpace(s[:idx])
		item.Stop = stop
	}
	if item.Colour == "" {
		return Item{}, fmt.Errorf("batch item %q has no colour", s)
	}
	return item, nil
}

// ParseItems parses one item per line. A line that does not parse becomes
// an item carrying the parse error, so it fails on its own when the batch
// runs and the remaining items still generate.
func ParseItems(lines []string, defaultStop pattern.Stop) []Item {
	items := make([]Item, len(lines))
	for i, line := range lines {
		item, err := ParseItem(line, defaultStop)
		if err != nil {
			item = Item{Colour: strings.TrimSpace(line), Stop: defaultStop, Err: err}
		}
		items[i] = item
	}
	return items
}
