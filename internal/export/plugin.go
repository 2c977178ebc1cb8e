package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/tonal/internal/security"
	"github.com/jmylchreest/tonal/pkg/plugin"
)

// infoTimeout bounds the --plugin-info query.
const infoTimeout = 5 * time.Second

// QueryInfo runs the plugin with --plugin-info and checks that it speaks a
// compatible go-plugin exporter protocol.
func QueryInfo(ctx context.Context, path string) (plugin.PluginInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, infoTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, plugin.InfoFlag) // #nosec G204 - plugin path is configured by the user
	output, err := cmd.Output()
	if err != nil {
		return plugin.PluginInfo{}, fmt.Errorf("failed to query plugin %s: %w", path, err)
	}

	var info plugin.PluginInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return plugin.PluginInfo{}, fmt.Errorf("failed to parse plugin info from %s: %w", path, err)
	}
	if info.PluginProtocol != plugin.PluginTypeGoPlugin {
		return info, fmt.Errorf("plugin %s: unsupported plugin_protocol %q", path, info.PluginProtocol)
	}
	if err := plugin.CheckCompatible(info.ProtocolVersion); err != nil {
		return info, fmt.Errorf("plugin %s: %w", path, err)
	}
	return info, nil
}

// RunOptions control a single exporter run.
type RunOptions struct {
	// OutputDir receives the exported files.
	OutputDir string

	// Args are passed to the plugin as ExportData.PluginArgs.
	Args map[string]any

	// DryRun asks the plugin to render without the host writing files.
	DryRun bool
}

// RunResult reports what an exporter did.
type RunResult struct {
	Plugin  string
	Skipped bool
	Reason  string
	// Files are the paths written, or that would be written on a dry run.
	Files []string
}

// PluginRunner drives an exporter plugin: pre-execute, export, write the
// returned files and post-execute.
type PluginRunner struct {
	path     string
	logger   hclog.Logger
	verbose  bool
	client   *goplugin.Client
	exporter plugin.Exporter
}

// NewPluginRunner creates a runner for the plugin executable at path. The
// process is started on first use.
func NewPluginRunner(path string, logger hclog.Logger, verbose bool) *PluginRunner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &PluginRunner{
		path:    path,
		logger:  logger.Named("export").With("plugin", filepath.Base(path)),
		verbose: verbose,
	}
}

// NewInProcessRunner runs an exporter linked into the current binary.
func NewInProcessRunner(exp plugin.Exporter, logger hclog.Logger) *PluginRunner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	name := exp.GetMetadata().Name
	return &PluginRunner{
		path:     name,
		logger:   logger.Named("export").With("plugin", name),
		exporter: exp,
	}
}

// Run exports doc through the plugin.
func (r *PluginRunner) Run(ctx context.Context, doc *Document, opts RunOptions) (*RunResult, error) {
	exp, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}
	result := &RunResult{Plugin: exp.GetMetadata().Name}
	if result.Plugin == "" {
		result.Plugin = filepath.Base(r.path)
	}

	skip, reason, err := exp.PreExecute(ctx)
	if err != nil {
		return nil, fmt.Errorf("plugin %s pre-execute failed: %w", result.Plugin, err)
	}
	if skip {
		r.logger.Info("plugin skipped", "reason", reason)
		result.Skipped = true
		result.Reason = reason
		return result, nil
	}

	data, err := PluginData(doc, opts.Args, opts.DryRun)
	if err != nil {
		return nil, err
	}
	files, err := exp.Export(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("plugin %s export failed: %w", result.Plugin, err)
	}

	written, err := r.writeFiles(files, opts)
	if err != nil {
		return nil, err
	}
	result.Files = written
	if opts.DryRun {
		return result, nil
	}

	if err := exp.PostExecute(ctx, written); err != nil {
		return result, fmt.Errorf("plugin %s post-execute failed: %w", result.Plugin, err)
	}
	return result, nil
}

// Describe returns the exporter's metadata and the arguments it accepts.
func (r *PluginRunner) Describe(ctx context.Context) (plugin.PluginInfo, []plugin.FlagHelp, error) {
	exp, err := r.connect(ctx)
	if err != nil {
		return plugin.PluginInfo{}, nil, err
	}
	return exp.GetMetadata(), exp.GetFlagHelp(), nil
}

// writeFiles validates every returned name against the output directory
// and writes the files, in name order.
func (r *PluginRunner) writeFiles(files map[string][]byte, opts RunOptions) ([]string, error) {
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	base, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		if err := security.ValidateFilePath(name, base); err != nil {
			return nil, fmt.Errorf("plugin returned invalid file name %q: %w", name, err)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	written := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(base, name)
		written = append(written, path)
		if opts.DryRun {
			r.logger.Info("would write file", "path", path, "bytes", len(files[name]))
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		if err := os.WriteFile(path, files[name], 0o644); err != nil { // #nosec G306 - exported themes are meant to be readable
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		r.logger.Debug("wrote file", "path", path, "bytes", len(files[name]))
	}
	return written, nil
}

// connect starts the plugin process and dispenses the exporter.
func (r *PluginRunner) connect(ctx context.Context) (plugin.Exporter, error) {
	if r.exporter != nil {
		return r.exporter, nil
	}
	if _, err := QueryInfo(ctx, r.path); err != nil {
		return nil, err
	}

	var logger hclog.Logger
	if r.verbose {
		logger = hclog.New(&hclog.LoggerOptions{
			Name:   "plugin",
			Output: log.Writer(),
			Level:  hclog.Debug,
		})
	} else {
		logger = hclog.New(&hclog.LoggerOptions{
			Name:   "plugin",
			Output: io.Discard,
			Level:  hclog.Off,
		})
	}

	r.client = goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig:  plugin.Handshake,
		Plugins:          plugin.PluginMap(nil),
		Cmd:              exec.Command(r.path), // #nosec G204 - plugin path is configured by the user
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger:           logger,
	})

	rpcClient, err := r.client.Client()
	if err != nil {
		r.client.Kill()
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}
	raw, err := rpcClient.Dispense(plugin.ExporterPluginName)
	if err != nil {
		r.client.Kill()
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}
	exp, ok := raw.(plugin.Exporter)
	if !ok {
		r.client.Kill()
		return nil, fmt.Errorf("plugin %s does not implement the exporter interface", r.path)
	}
	r.exporter = exp
	return exp, nil
}

// Close stops the plugin process, if one was started.
func (r *PluginRunner) Close() {
	if r.client != nil {
		r.client.Kill()
		r.client = nil
		r.exporter = nil
	}
}
