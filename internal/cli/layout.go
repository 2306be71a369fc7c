package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/autofilter/pkg/pipeline"
)

// layoutOpts holds the flags shared by layout and watch.
type layoutOpts struct {
	output     string
	formats    string
	width      float64
	filter     string
	query      string
	url        string
	legend     bool
	showHidden bool
	noCache    bool
}

func (o *layoutOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&o.formats, "format", "f", "", "output format(s): svg (default), json (comma-separated)")
	cmd.Flags().Float64Var(&o.width, "width", 0, "container width (default: manifest width or 1000)")
	cmd.Flags().StringVar(&o.filter, "filter", "", "button filter token")
	cmd.Flags().StringVarP(&o.query, "query", "q", "", "text input token")
	cmd.Flags().StringVar(&o.url, "url", "", "page URL; url_search_param in it is applied on load")
	cmd.Flags().BoolVar(&o.legend, "legend", false, "add a legend line with the active filter (svg)")
	cmd.Flags().BoolVar(&o.showHidden, "show-hidden", false, "draw hidden items as outlines (svg)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
}

func (o *layoutOpts) pipelineOptions(c *CLI) pipeline.Options {
	return pipeline.Options{
		Config:     c.config,
		Width:      o.width,
		Filter:     o.filter,
		Query:      o.query,
		URL:        o.url,
		Formats:    parseFormats(o.formats),
		Legend:     o.legend,
		ShowHidden: o.showHidden,
		Logger:     c.Logger,
	}
}

// layoutCommand creates the layout command for rendering a manifest.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [manifest]",
		Short: "Lay out a manifest and render it to SVG or JSON",
		Long: `Lay out a manifest and render it to SVG or JSON.

The manifest (TOML or JSON) lists items with their tags and heights. Items
are placed into the shortest column of a masonry grid whose column count
follows the configured breakpoints. --filter, --query and --url apply filters
the way a button click, a text input and a page load would.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormats(parseFormats(opts.formats)); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], &opts)
		},
	}
	opts.register(cmd)

	return cmd
}

// runLayout loads the manifest, runs the pipeline and writes every artifact.
func (c *CLI) runLayout(ctx context.Context, input string, o *layoutOpts) error {
	m, err := c.loadManifest(input)
	if err != nil {
		return fmt.Errorf("load manifest %s: %w", input, err)
	}

	runner, err := c.newRunner(o.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Cache.Close()

	opts := o.pipelineOptions(c)
	opts.Manifest = m

	spinner := newSpinnerWithContext(ctx, "Laying out wall...")
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(input, o.output, opts.Formats, res)
	if err != nil {
		return err
	}

	s := res.Summary
	if s.Matched {
		printSuccess("Layout complete")
	} else {
		printWarning("No item matches %q", s.Filter)
	}
	for _, p := range paths {
		printFile(p)
	}
	printStats(s.Visible, s.Total, s.Columns, res.CacheHit)
	if s.URL != "" && s.URL != "/" {
		printDetail("URL: %s", s.URL)
	}

	return nil
}

func writeArtifacts(input, output string, formats []string, res *pipeline.Result) ([]string, error) {
	multi := len(formats) > 1
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := outputPath(input, output, f, multi)
		if err := os.WriteFile(path, res.Artifacts[f], 0o644); err != nil {
			return nil, fmt.Errorf("write output %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
