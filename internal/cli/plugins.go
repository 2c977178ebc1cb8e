package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tonal/internal/export"
)

func newPluginsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plugins",
		Aliases: []string{"plugin"},
		Short:   "List and describe exporters",
		Long: `Exporters turn generated palettes into files. tonal ships built-in css,
tailwind and template exporters; any executable speaking the tonal exporter plugin protocol can be
used by passing its path to --export or listing it under plugins in the
config file.`,
	}
	cmd.AddCommand(newPluginsListCmd(a), newPluginsInfoCmd(a))
	return cmd
}

func newPluginsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and configured exporters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := NewTable("Name", "Source", "Version", "Description")
			table.SetColumnMaxWidth(3, 50)

			builtins := make([]string, 0, len(builtinExporters))
			for name := range builtinExporters {
				builtins = append(builtins, name)
			}
			sort.Strings(builtins)
			for _, name := range builtins {
				info := builtinExporters[name]().GetMetadata()
				table.AddRow(info.Name, "built-in", info.Version, info.Description)
			}

			for _, path := range a.cfg.Plugins {
				if _, ok := builtinExporters[path]; ok {
					continue
				}
				info, err := export.QueryInfo(commandContext(cmd), path)
				if err != nil {
					a.logger.Warn("plugin unavailable", "path", path, "error", err)
					table.AddRow(path, path, "-", "unavailable: "+err.Error())
					continue
				}
				table.AddRow(info.Name, path, info.Version, info.Description)
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), table.Render())
			return err
		},
	}
}

func newPluginsInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info NAME|PATH",
		Short: "Show an exporter's metadata and arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := a.newRunner(args[0])
			defer runner.Close()

			info, help, err := runner.Describe(commandContext(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:         %s\n", info.Name)
			fmt.Fprintf(out, "Version:      %s\n", info.Version)
			fmt.Fprintf(out, "Protocol:     %s (%s)\n", info.PluginProtocol, info.ProtocolVersion)
			fmt.Fprintf(out, "Description:  %s\n", info.Description)
			if len(help) == 0 {
				return nil
			}

			fmt.Fprintln(out, "\nArguments (--plugin-args key=value):")
			table := NewTable("Name", "Type", "Default", "Description")
			table.SetColumnMaxWidth(3, 50)
			for _, h := range help {
				desc := h.Description
				if h.Required {
					desc += " (required)"
				}
				table.AddRow(h.Name, h.Type, h.Default, desc)
			}
			_, err = fmt.Fprint(out, table.Render())
			return err
		},
	}
}
