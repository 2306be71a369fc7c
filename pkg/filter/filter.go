// Package filter decides which items of a wall are visible for a filter token.
//
// [Apply] is a pure function: it receives the parsed tags of every item, a
// token and a [Mode], and returns the per-item visibility together with
// whether anything matched. It never touches elements, URLs or layout.
//
// Matching rules:
//
//   - A button with an empty token shows everything (the "show all" case).
//   - Items without tags are hidden for every other token.
//   - Button tokens match tags exactly. Substring matching never applies.
//   - Input tokens match exactly, or by substring when [Mode.SubString] is set.
//   - An empty input token shows every tagged item.
//
// Tokens and tags are lowercased unless [Mode.CaseSensitive] is set.
package filter

import (
	"slices"
	"strings"
)

// Origin identifies what triggered a filter.
type Origin int

const (
	// OriginButton is a discrete filter button.
	OriginButton Origin = iota
	// OriginInput is a free-text input.
	OriginInput
)

// String returns the origin name used in logs.
func (o Origin) String() string {
	if o == OriginInput {
		return "input"
	}
	return "button"
}

// Mode carries the matching flags.
type Mode struct {
	CaseSensitive bool
	SubString     bool
	Origin        Origin
}

// Item is the filter's view of a wall item.
type Item struct {
	// Tagged is false when the item has no tag attribute at all.
	Tagged bool
	// Tags are already split, trimmed and case-normalized.
	Tags []string
}

// Result is the outcome of one filter evaluation.
type Result struct {
	// Visible is indexed like the input items.
	Visible []bool
	Matched bool
}

// Count returns the number of visible items.
func (r Result) Count() int {
	n := 0
	for _, v := range r.Visible {
		if v {
			n++
		}
	}
	return n
}

// ParseTags splits a comma-separated tag attribute. An empty attribute yields
// an untagged item.
func ParseTags(raw string, caseSensitive bool) Item {
	if raw == "" {
		return Item{}
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, len(parts))
	for i, p := range parts {
		tags[i] = Normalize(strings.TrimSpace(p), caseSensitive)
	}
	return Item{Tagged: true, Tags: tags}
}

// Normalize applies the case rule shared by tokens and tags.
func Normalize(s string, caseSensitive bool) string {
	if caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// Apply evaluates token against every item.
func Apply(items []Item, token string, mode Mode) Result {
	res := Result{Visible: make([]bool, len(items))}

	if token == "" && mode.Origin == OriginButton {
		for i := range res.Visible {
			res.Visible[i] = true
		}
		res.Matched = true
		return res
	}

	token = Normalize(token, mode.CaseSensitive)

	for i, it := range items {
		ok := matches(it, token, mode)
		res.Visible[i] = ok
		res.Matched = res.Matched || ok
	}
	return res
}

func matches(it Item, token string, mode Mode) bool {
	if !it.Tagged {
		return false
	}
	if mode.Origin == OriginButton {
		return slices.Contains(it.Tags, token)
	}
	if token == "" {
		return true
	}
	if mode.SubString {
		return slices.ContainsFunc(it.Tags, func(tag string) bool {
			return strings.Contains(tag, token)
		})
	}
	return slices.Contains(it.Tags, token)
}

// Distinct returns every distinct tag in first-seen order. Hosts use it to
// build filter buttons when the document does not provide them.
func Distinct(items []Item) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		for _, tag := range it.Tags {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}
