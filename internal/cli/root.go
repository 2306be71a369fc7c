package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/autofilter/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// The --config flag is loaded before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Autofilter lays out tag-filtered masonry walls",
		Long: `Autofilter computes masonry layouts for tagged items and filters them by tag,
the way the autofilter widget does in a browser. Walls come from manifests
(TOML or JSON) or from HTML documents, and render to SVG, JSON or HTML.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (toml, yaml or json)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.filterCommand())
	root.AddCommand(c.htmlCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
