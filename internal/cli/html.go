package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/autofilter/pkg/autofilter"
	"github.com/matzehuels/autofilter/pkg/dom"
	"github.com/matzehuels/autofilter/pkg/nav"
)

type htmlOpts struct {
	output string
	url    string
	click  string
	input  string
	width  float64
}

// htmlCommand creates the html command, which runs a wall inside a page.
func (c *CLI) htmlCommand() *cobra.Command {
	var opts htmlOpts

	cmd := &cobra.Command{
		Use:   "html [page.html]",
		Short: "Apply filters and layout to an HTML page",
		Long: `Apply filters and layout to an HTML page.

The page is parsed and the configured selectors locate the container, the
items and the filter controls. Item heights come from data-height and the
container width from data-width (or --width). After the initial load,
--click and --input are applied, and the page is written back with classes
and inline styles set as the widget would set them. Use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHTML(args[0], &opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.url, "url", "/", "page URL; url_search_param in it is applied on load")
	cmd.Flags().StringVar(&opts.click, "click", "", "click the filter button with this value")
	cmd.Flags().StringVar(&opts.input, "input", "", "type this text into the filter input")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "container width (default: data-width)")

	return cmd
}

func (c *CLI) runHTML(input string, o *htmlOpts, stdout io.Writer) error {
	var r io.Reader = os.Stdin
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("open %s: %w", input, err)
		}
		defer f.Close()
		r = f
	}

	u, err := nav.Parse(o.url)
	if err != nil {
		return err
	}
	doc, err := dom.Parse(r, c.config, u)
	if err != nil {
		return err
	}
	if !doc.HasContainer() {
		c.Logger.Warn("container not found; layout skipped", "selector", c.config.ContainerSelector)
	}
	if o.width > 0 {
		doc.SetWidth(o.width)
	}

	ctrl, err := autofilter.New(c.config, doc, doc.Elements(), autofilter.WithLogger(c.Logger))
	if err != nil {
		return err
	}
	if o.click != "" {
		ctrl.Click(o.click)
	}
	if o.input != "" {
		ctrl.Input(o.input)
		ctrl.Flush()
	}

	active, _ := ctrl.ActiveFilter()
	c.Logger.Info("wall applied",
		"items", len(doc.Elements()),
		"visible", ctrl.VisibleCount(),
		"columns", ctrl.Layout().Columns,
		"filter", active,
		"url", doc.String())

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	if o.output == "" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(o.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", o.output, err)
	}
	printSuccess("Page written")
	printFile(o.output)
	return nil
}
