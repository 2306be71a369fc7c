package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/autofilter/pkg/pipeline"
	"github.com/matzehuels/autofilter/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		redisURL string
		watch    bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve [manifest]",
		Short: "Serve a wall over HTTP",
		Long: `Serve a wall over HTTP.

Routes:
  GET /wall.svg   rendered wall
  GET /wall.json  item placement
  GET /tags       distinct tags (the filter buttons)
  GET /healthz    health check

The request URL is the page URL: the configured url_search_param in the
query string filters on load. filter= clicks a button, q= types into the
text input and width= sets the container width. The URL after filtering is
returned in Content-Location.

Rendered walls are cached on disk, or in redis with --redis (or
AUTOFILTER_REDIS_URL) when several instances share one cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if redisURL == "" {
				redisURL = os.Getenv("AUTOFILTER_REDIS_URL")
			}
			return c.runServe(cmd.Context(), args[0], addr, redisURL, watch, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", "", "redis URL for a shared render cache")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the manifest when it changes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input, addr, redisURL string, watch, noCache bool) error {
	m, err := c.loadManifest(input)
	if err != nil {
		return fmt.Errorf("load manifest %s: %w", input, err)
	}

	store, keyer, err := c.newServerCache(ctx, redisURL, noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer store.Close()

	srv := server.New(pipeline.NewRunner(store, keyer, c.Logger), c.config, m, c.Logger)

	if watch {
		go func() {
			err := watchFile(ctx, input, c.Logger, func() {
				next, err := c.loadManifest(input)
				if err != nil {
					c.Logger.Error("manifest rejected", "err", err)
					return
				}
				srv.SetManifest(next)
			})
			if err != nil {
				c.Logger.Error("watch stopped", "err", err)
			}
		}()
	}

	printSuccess("Serving %s", StyleHighlight.Render(input))
	printDetail("Address: %s", addr)
	return srv.ListenAndServe(ctx, addr)
}
