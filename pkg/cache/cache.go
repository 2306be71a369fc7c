// Package cache stores rendered wall artifacts.
//
// Rendering a wall is cheap, but the server renders the same manifest,
// width and filter over and over. A [Cache] keeps the bytes keyed by a
// [Keyer]-built key. Three backends exist:
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared storage for several server instances
//   - [NullCache]: caching disabled
//
// Keys hash their inputs, so entries never store filter state as such;
// a key only identifies one rendering request.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with expiry.
type Cache interface {
	// Get returns the entry and whether it was found and not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// RenderKey identifies one rendered artifact of a manifest.
	RenderKey(manifestHash string, opts RenderKeyOpts) string
}

// RenderKeyOpts are every input that changes a rendered artifact besides
// the manifest itself.
type RenderKeyOpts struct {
	Format     string  `json:"format"`
	Width      float64 `json:"width"`
	Filter     string  `json:"filter,omitempty"`
	Query      string  `json:"query,omitempty"`
	ConfigHash string  `json:"config,omitempty"`
	Legend     bool    `json:"legend,omitempty"`
	Hidden     bool    `json:"hidden,omitempty"`
}

// DefaultKeyer produces "render:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(manifestHash string, opts RenderKeyOpts) string {
	return hashKey("render", manifestHash, opts)
}

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache returns a disabled cache.
func NewNullCache() Cache { return NullCache{} }

// Get always misses.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards data.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete does nothing.
func (NullCache) Delete(context.Context, string) error { return nil }

// Close does nothing.
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
