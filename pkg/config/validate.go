package config

import (
	"fmt"
	"strings"

	"github.com/matzehuels/autofilter/pkg/errors"
	"github.com/matzehuels/autofilter/pkg/layout"
)

// FieldError is a single validation failure.
type FieldError struct {
	Field string // config key, e.g. "layout.gutter"
	Err   error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, errors.UserMessage(e.Err))
}

// FieldErrors collects every failure found by [Options.Validate].
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:", len(e))
	for _, fe := range e {
		sb.WriteString("\n  - ")
		sb.WriteString(fe.Error())
	}
	return sb.String()
}

// Validate reports every invalid option. The returned error carries
// ErrCodeInvalidConfig and wraps a [FieldErrors].
func (o Options) Validate() error {
	var errs FieldErrors
	add := func(field string, err error) {
		if err != nil {
			errs = append(errs, FieldError{Field: field, Err: err})
		}
	}

	add("filter_selector", errors.ValidateSelector("filter_selector", o.FilterSelector))
	add("target_selector", errors.ValidateSelector("target_selector", o.TargetSelector))
	add("container_selector", errors.ValidateSelector("container_selector", o.ContainerSelector))
	add("active_button_class", errors.ValidateClassName("active_button_class", o.ActiveButtonClass))
	add("hidden_class", errors.ValidateClassName("hidden_class", o.HiddenClass))
	add("url_search_param", errors.ValidateParamName(o.URLSearchParam))

	if o.MinChars < 0 {
		add("min_chars", errors.New(errors.ErrCodeInvalidConfig, "must be >= 0, got %d", o.MinChars))
	}
	if o.DebounceDelayMs < 0 {
		add("debounce_delay", errors.New(errors.ErrCodeInvalidConfig, "must be >= 0, got %d", o.DebounceDelayMs))
	}
	if o.Animation.DurationMs < 0 {
		add("animation.duration", errors.New(errors.ErrCodeInvalidConfig, "must be >= 0, got %d", o.Animation.DurationMs))
	}

	if o.Layout.Gutter < 0 {
		add("layout.gutter", errors.New(errors.ErrCodeInvalidConfig, "must be >= 0, got %v", o.Layout.Gutter))
	}
	add("layout.columns_breakpoints", layout.Breakpoints(o.Layout.ColumnsBreakpoints).Validate())

	if len(errs) == 0 {
		return nil
	}
	return errors.Wrap(errors.ErrCodeInvalidConfig, errs, "invalid configuration")
}
