// Package pipeline renders a manifest into wall artifacts.
//
// The pipeline runs a real controller against an in-memory host, so the
// CLI and the HTTP server produce exactly what a page would show:
//
//  1. Load: populate a memory host from the manifest
//  2. Filter: apply the URL parameter, a button filter and a text query
//  3. Render: snapshot the host and emit SVG and/or JSON
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Manifest: m,
//	    Config:   cfg,
//	    Width:    1000,
//	    Filter:   "web",
//	    Formats:  []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/autofilter/pkg/config"
	"github.com/matzehuels/autofilter/pkg/errors"
	"github.com/matzehuels/autofilter/pkg/manifest"
	"github.com/matzehuels/autofilter/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the container width when neither the options nor the
	// manifest set one.
	DefaultWidth = 1000.0

	// DefaultTTL is how long rendered artifacts stay cached.
	DefaultTTL = 24 * time.Hour
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options
// =============================================================================

// Options configure one pipeline run.
type Options struct {
	Manifest *manifest.Manifest
	Config   config.Options

	// Width is the container width. Zero falls back to the manifest width,
	// then DefaultWidth.
	Width float64
	// URL is the page URL. When Config.URLSearchParam is set and present in
	// URL, it is applied as the initial filter.
	URL string
	// Filter is applied as a button click after the initial load.
	Filter string
	// Query is applied as text input after Filter.
	Query string

	Formats []string
	// Legend adds a header with the active filter to SVG output.
	Legend bool
	// ShowHidden draws hidden items as outlines in SVG output.
	ShowHidden bool

	// Refresh bypasses the cache read.
	Refresh bool
	TTL     time.Duration

	Logger *log.Logger
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Manifest == nil {
		return errors.New(errors.ErrCodeInvalidInput, "manifest is required")
	}
	if o.Width < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "width must be >= 0, got %v", o.Width)
	}
	if o.Width == 0 {
		o.Width = o.Manifest.Width
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.URL == "" {
		o.URL = "/"
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.TTL == 0 {
		o.TTL = DefaultTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o.Config.Validate()
}

// svgOptions maps the render flags to SVG options.
func (o Options) svgOptions() []render.SVGOption {
	var opts []render.SVGOption
	if o.Legend {
		opts = append(opts, render.WithLegend())
	}
	if o.ShowHidden {
		opts = append(opts, render.WithHidden())
	}
	return opts
}

// ValidateFormat checks a single output format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want svg or json)", format)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result is the outcome of one run.
type Result struct {
	// Wall is the rendered state. It is the zero value on a full cache hit.
	Wall render.Wall
	// Artifacts maps format to bytes.
	Artifacts map[string][]byte

	Summary Summary
	Stats   Stats
	// CacheHit is true when every artifact came from the cache.
	CacheHit bool
}

// Summary describes the filter outcome. It is cached next to the
// artifacts.
type Summary struct {
	Matched bool   `json:"matched"`
	Filter  string `json:"filter"`
	URL     string `json:"url"`
	Visible int    `json:"visible"`
	Total   int    `json:"total"`
	Columns int    `json:"columns"`
}

// Stats contains timings.
type Stats struct {
	LayoutTime time.Duration
	RenderTime time.Duration
}
