// Package config holds the wall configuration and its deep-merge loader.
//
// [Default] returns the stock options. [Load] and [FromMap] layer overrides
// on top of the defaults through a private viper instance: nested tables
// (animation, layout, layout.columns_breakpoints) merge key by key, scalars
// overwrite. The merged result is decoded once and treated as immutable.
//
// Example TOML file:
//
//	min_chars = 2
//	sub_string = true
//	url_search_param = "cat"
//
//	[layout]
//	gutter = 16
//
//	[layout.columns_breakpoints]
//	1600 = 4
//
// With the file above the breakpoints become {1600:4, 1200:3, 768:2, 0:1}.
package config

import (
	stderrors "errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/autofilter/pkg/errors"
	"github.com/matzehuels/autofilter/pkg/filter"
	"github.com/matzehuels/autofilter/pkg/layout"
)

// ResizeDebounce is the fixed window for container resize reactions.
const ResizeDebounce = 100 * time.Millisecond

// envPrefix is the environment prefix, e.g. AUTOFILTER_MIN_CHARS.
const envPrefix = "AUTOFILTER"

// Options is the complete wall configuration.
type Options struct {
	// FilterSelector selects filter buttons and text inputs.
	FilterSelector string `mapstructure:"filter_selector"`
	// TargetSelector selects the filterable items.
	TargetSelector string `mapstructure:"target_selector"`
	// ContainerSelector selects the layout container.
	ContainerSelector string `mapstructure:"container_selector"`
	// ActiveButtonClass marks the active filter button.
	ActiveButtonClass string `mapstructure:"active_button_class"`
	// HiddenClass marks non-matching items.
	HiddenClass string `mapstructure:"hidden_class"`
	// MinChars is the minimum trimmed input length evaluated. Empty input
	// always evaluates so that clearing the field resets the wall.
	MinChars int `mapstructure:"min_chars"`
	// CaseSensitive disables lowercase normalization.
	CaseSensitive bool `mapstructure:"case_sensitive"`
	// SubString enables substring matching for text input filters.
	SubString bool `mapstructure:"sub_string"`
	// URLSearchParam mirrors the active filter into a query parameter.
	// Empty disables URL sync.
	URLSearchParam string `mapstructure:"url_search_param"`
	// DebounceDelayMs is the text input debounce window in milliseconds.
	DebounceDelayMs int `mapstructure:"debounce_delay"`

	Animation AnimationOptions `mapstructure:"animation"`
	Layout    LayoutOptions    `mapstructure:"layout"`

	// OnFilter runs after every filter with the filter value and whether
	// any item matched.
	OnFilter func(value string, matched bool) `mapstructure:"-" json:"-"`
	// OnReset runs after every show-all.
	OnReset func() `mapstructure:"-" json:"-"`
}

// AnimationOptions are transition parameters applied by visual sinks.
type AnimationOptions struct {
	DurationMs int    `mapstructure:"duration"`
	Easing     string `mapstructure:"easing"`
}

// LayoutOptions configure the masonry layout.
type LayoutOptions struct {
	Gutter             float64     `mapstructure:"gutter"`
	ColumnsBreakpoints map[int]int `mapstructure:"columns_breakpoints"`
}

// Default returns the stock configuration.
func Default() Options {
	return Options{
		FilterSelector:    "[data-filter]",
		TargetSelector:    ".af-item",
		ContainerSelector: ".af-container",
		ActiveButtonClass: "af-button--active",
		HiddenClass:       "af-hidden",
		MinChars:          3,
		CaseSensitive:     false,
		SubString:         false,
		URLSearchParam:    "",
		DebounceDelayMs:   250,
		Animation: AnimationOptions{
			DurationMs: 400,
			Easing:     "cubic-bezier(0.4, 0, 0.2, 1)",
		},
		Layout: LayoutOptions{
			Gutter:             20,
			ColumnsBreakpoints: layout.DefaultBreakpoints(),
		},
	}
}

// DebounceDelay returns the input debounce window as a time.Duration.
func (o Options) DebounceDelay() time.Duration {
	return time.Duration(o.DebounceDelayMs) * time.Millisecond
}

// AnimationDuration returns the transition duration as a time.Duration.
func (o Options) AnimationDuration() time.Duration {
	return time.Duration(o.Animation.DurationMs) * time.Millisecond
}

// LayoutConfig returns the layout engine settings.
func (o Options) LayoutConfig() layout.Config {
	return layout.Config{
		Gutter:      o.Layout.Gutter,
		Breakpoints: layout.Breakpoints(o.Layout.ColumnsBreakpoints).Clone(),
	}
}

// FilterMode returns the matching flags for an origin.
func (o Options) FilterMode(origin filter.Origin) filter.Mode {
	return filter.Mode{
		CaseSensitive: o.CaseSensitive,
		SubString:     o.SubString,
		Origin:        origin,
	}
}

// URLSyncEnabled reports whether the active filter is mirrored into the URL.
func (o Options) URLSyncEnabled() bool {
	return o.URLSearchParam != ""
}

// Clone returns a copy that shares no maps with o.
func (o Options) Clone() Options {
	out := o
	out.Layout.ColumnsBreakpoints = layout.Breakpoints(o.Layout.ColumnsBreakpoints).Clone()
	return out
}

// Load reads a TOML, YAML or JSON file (by extension) and merges it over the
// defaults. Environment variables prefixed AUTOFILTER_ override both.
// An empty path loads defaults plus environment.
func Load(path string) (Options, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if isNotExist(err) {
				return Options{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
			}
			return Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
		}
	}
	return decode(v)
}

// FromMap merges overrides over the defaults. Nested maps merge
// recursively; any other value replaces the default.
func FromMap(overrides map[string]any) (Options, error) {
	v := newViper()
	if len(overrides) > 0 {
		if err := v.MergeConfigMap(normalizeKeys(overrides)); err != nil {
			return Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "merge overrides")
		}
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers every option with the viper instance.
func setDefaults(v *viper.Viper, d Options) {
	v.SetDefault("filter_selector", d.FilterSelector)
	v.SetDefault("target_selector", d.TargetSelector)
	v.SetDefault("container_selector", d.ContainerSelector)
	v.SetDefault("active_button_class", d.ActiveButtonClass)
	v.SetDefault("hidden_class", d.HiddenClass)
	v.SetDefault("min_chars", d.MinChars)
	v.SetDefault("case_sensitive", d.CaseSensitive)
	v.SetDefault("sub_string", d.SubString)
	v.SetDefault("url_search_param", d.URLSearchParam)
	v.SetDefault("debounce_delay", d.DebounceDelayMs)

	v.SetDefault("animation.duration", d.Animation.DurationMs)
	v.SetDefault("animation.easing", d.Animation.Easing)

	v.SetDefault("layout.gutter", d.Layout.Gutter)
	for width, cols := range d.Layout.ColumnsBreakpoints {
		v.SetDefault("layout.columns_breakpoints."+strconv.Itoa(width), cols)
	}
}

func decode(v *viper.Viper) (Options, error) {
	var o Options
	if err := v.Unmarshal(&o); err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// normalizeKeys converts map keys that are not strings (for example the int
// keys of a breakpoint table) so viper can merge them.
func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeKeys(t)
	case map[int]int:
		out := make(map[string]any, len(t))
		for k, n := range t {
			out[strconv.Itoa(k)] = n
		}
		return out
	case layout.Breakpoints:
		return normalizeValue(map[int]int(t))
	default:
		return v
	}
}

func isNotExist(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return stderrors.As(err, &nf) || stderrors.Is(err, fs.ErrNotExist)
}
