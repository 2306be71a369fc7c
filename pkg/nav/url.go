// Package nav provides a URL-backed navigation store.
//
// [URL] mirrors the single read/write contract of a browser location: one
// query parameter is read at start, written on filter and removed on reset.
// Every write pushes the new URL onto a history, like history.pushState.
package nav

import (
	"net/url"
	"sync"

	"github.com/matzehuels/autofilter/pkg/errors"
)

// URL is a mutable page URL with a push-state history. It is safe for
// concurrent use.
type URL struct {
	mu      sync.RWMutex
	current *url.URL
	history []string
}

// Parse returns a store positioned at raw.
func Parse(raw string) (*URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse url %q", raw)
	}
	return &URL{current: u, history: []string{u.String()}}, nil
}

// FromURL copies u into a new store.
func FromURL(u *url.URL) *URL {
	cp := *u
	return &URL{current: &cp, history: []string{cp.String()}}
}

// Get returns the parameter value. A parameter with an empty value is
// reported as absent.
func (n *URL) Get(param string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v := n.current.Query().Get(param)
	return v, v != ""
}

// Set writes the parameter and pushes the new URL.
func (n *URL) Set(param, value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	q := n.current.Query()
	q.Set(param, value)
	n.pushLocked(q)
}

// Delete removes the parameter and pushes the new URL.
func (n *URL) Delete(param string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	q := n.current.Query()
	q.Del(param)
	n.pushLocked(q)
}

func (n *URL) pushLocked(q url.Values) {
	next := *n.current
	next.RawQuery = q.Encode()
	n.current = &next
	n.history = append(n.history, next.String())
}

// Has reports whether the parameter is present at all, even if empty.
func (n *URL) Has(param string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current.Query().Has(param)
}

// String returns the current URL.
func (n *URL) String() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current.String()
}

// Current returns a copy of the current URL.
func (n *URL) Current() *url.URL {
	n.mu.RLock()
	defer n.mu.RUnlock()
	cp := *n.current
	return &cp
}

// History returns every URL pushed so far, oldest first.
func (n *URL) History() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]string(nil), n.history...)
}

// Back pops the last pushed URL and reports whether there was one to pop.
func (n *URL) Back() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.history) < 2 {
		return false
	}
	n.history = n.history[:len(n.history)-1]
	u, err := url.Parse(n.history[len(n.history)-1])
	if err != nil {
		return false
	}
	n.current = u
	return true
}
