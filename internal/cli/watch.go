package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/autofilter/pkg/debounce"
	"github.com/matzehuels/autofilter/pkg/pipeline"
)

// reloadDelay absorbs the burst of events editors produce on save.
const reloadDelay = 150 * time.Millisecond

// watchCommand creates the watch command, which re-renders on change.
func (c *CLI) watchCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "watch [manifest]",
		Short: "Re-render a manifest whenever it changes",
		Long: `Re-render a manifest whenever it changes.

Accepts the same flags as layout. The manifest is rendered once on start and
again after every save; invalid manifests are reported and the previous
output is kept. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormats(parseFormats(opts.formats)); err != nil {
				return err
			}
			return c.runWatch(cmd.Context(), args[0], &opts)
		},
	}
	opts.register(cmd)

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input string, o *layoutOpts) error {
	runner, err := c.newRunner(o.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Cache.Close()

	prog := newProgress(c.Logger)
	render := func() {
		prog.restart()
		m, err := c.loadManifest(input)
		if err != nil {
			c.Logger.Error("manifest rejected", "err", err)
			return
		}
		opts := o.pipelineOptions(c)
		opts.Manifest = m
		res, err := runner.Execute(ctx, opts)
		if err != nil {
			c.Logger.Error("render failed", "err", err)
			return
		}
		paths, err := writeArtifacts(input, o.output, opts.Formats, res)
		if err != nil {
			c.Logger.Error("write failed", "err", err)
			return
		}
		prog.done("rendered", "files", paths, "visible", res.Summary.Visible, "total", res.Summary.Total)
	}

	render()
	printInfo("Watching %s (Ctrl+C to stop)", input)
	return watchFile(ctx, input, c.Logger, render)
}

// watchFile calls onChange after path is written, created or renamed into
// place, debounced by reloadDelay. It blocks until ctx is done. The parent
// directory is watched so that editors replacing the file are seen.
func watchFile(ctx context.Context, path string, logger *log.Logger, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	d := debounce.New(reloadDelay, func(struct{}) { onChange() })
	defer d.Cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				logger.Debug("manifest changed", "op", ev.Op.String())
				d.Trigger(struct{}{})
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}
