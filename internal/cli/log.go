// Package cli implements the autofilter command-line interface.
//
// Walls come from manifests (TOML or JSON item lists) or HTML documents.
// Every command runs the same controller the library exposes, against an
// in-memory host, a parsed document or a terminal.
//
// # Commands
//
//   - layout: render a manifest to SVG and/or JSON
//   - filter: print which items a token shows
//   - html: apply filters to an HTML document and write it back
//   - serve: serve walls over HTTP
//   - watch: re-render a manifest whenever it changes
//   - tui: browse a wall interactively in the terminal
//   - cache: manage the render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, including
// per-filter and per-layout controller events.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered wall (12ms)"
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg+" ("+time.Since(p.start).Round(time.Millisecond).String()+")", keyvals...)
}

// restart resets the start time, for loops that report each iteration.
func (p *progress) restart() {
	p.start = time.Now()
}
