package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/tablespan/pkg/buildinfo"
	"github.com/matzehuels/tablespan/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Before any subcommand runs, the config file is loaded and the logger is
// attached to the command context.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Tablespan lays out and renders tables with spanning cells",
		Long: `Tablespan turns a compact table description (rows of cell labels plus a
map of column and row spans) into a resolved grid, and renders it as a
bordered text table, a JSON layout or a spreadsheet.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tablespan/config.toml)")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file and attaches the logger to the command.
func (c *CLI) setup(cmd *cobra.Command) error {
	path, required := c.configPath, true
	if path == "" {
		var err error
		if path, err = configPath(); err != nil {
			c.Logger.Debug("no config directory", "err", err)
			path = ""
		}
		required = false
	}
	if path != "" {
		cfg, err := loadConfig(path, required)
		if err != nil {
			return err
		}
		c.config = cfg
		c.Logger.Debug("loaded config", "path", path)
	}

	if c.Logger.GetLevel() <= LogDebug {
		observability.NewLogHooks(c.Logger).Install()
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}
