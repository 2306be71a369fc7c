package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateParamName validates a URL query parameter name used to mirror the
// active filter. An empty name is valid and disables URL sync.
func ValidateParamName(name string) error {
	if name == "" {
		return nil
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidConfig, "url search param too long (max 64 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidConfig, "url search param contains invalid characters: %q", name)
		}
	}

	// These characters would break the query string encoding of the parameter itself.
	if strings.ContainsAny(name, "&=#?") {
		return New(ErrCodeInvalidConfig, "url search param contains reserved characters: %q", name)
	}

	return nil
}

// classNameRegex matches a single CSS class name.
var classNameRegex = regexp.MustCompile(`^-?[_a-zA-Z][_a-zA-Z0-9-]*$`)

// ValidateClassName validates a CSS class name such as the hidden or active
// button class.
func ValidateClassName(field, name string) error {
	if name == "" {
		return New(ErrCodeInvalidConfig, "%s cannot be empty", field)
	}

	if !classNameRegex.MatchString(name) {
		return New(ErrCodeInvalidConfig, "%s is not a valid class name: %q", field, name)
	}

	return nil
}

// ValidateSelector performs a cheap sanity check on a selector string before
// it is compiled. Full compilation happens in the dom package.
func ValidateSelector(field, selector string) error {
	if strings.TrimSpace(selector) == "" {
		return New(ErrCodeInvalidSelector, "%s cannot be empty", field)
	}

	for _, r := range selector {
		if r == '\x00' || (unicode.IsControl(r) && r != '\t') {
			return New(ErrCodeInvalidSelector, "%s contains invalid characters", field)
		}
	}

	if strings.Count(selector, "[") != strings.Count(selector, "]") {
		return New(ErrCodeInvalidSelector, "%s has unbalanced brackets: %q", field, selector)
	}

	if strings.Count(selector, "(") != strings.Count(selector, ")") {
		return New(ErrCodeInvalidSelector, "%s has unbalanced parentheses: %q", field, selector)
	}

	return nil
}

// ValidateItemID validates an item identifier from a manifest or document.
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidManifest, "item id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidManifest, "item id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidManifest, "item id contains invalid control characters")
		}
	}

	return nil
}
