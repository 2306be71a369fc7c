// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about filter evaluations, layout passes and render cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetWallHooks(&myWallHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Wall().OnFilter(ctx, "button", "design", 12, 40, true, elapsed)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Wall Hooks
// =============================================================================

// WallHooks receives events from wall controllers.
type WallHooks interface {
	// OnFilter records one filter evaluation.
	OnFilter(ctx context.Context, origin, token string, visible, total int, matched bool, duration time.Duration)

	// OnReset records a show-all.
	OnReset(ctx context.Context, total int)

	// OnLayout records one applied layout pass.
	OnLayout(ctx context.Context, columns, placed int, height float64, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopWallHooks is a no-op implementation of WallHooks.
type NoopWallHooks struct{}

func (NoopWallHooks) OnFilter(context.Context, string, string, int, int, bool, time.Duration) {}
func (NoopWallHooks) OnReset(context.Context, int)                                              {}
func (NoopWallHooks) OnLayout(context.Context, int, int, float64, time.Duration)                {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	wallHooks  WallHooks  = NoopWallHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetWallHooks registers custom wall hooks.
// This should be called once at application startup before any controller is built.
func SetWallHooks(h WallHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		wallHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Wall returns the registered wall hooks.
func Wall() WallHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return wallHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	wallHooks = NoopWallHooks{}
	cacheHooks = NoopCacheHooks{}
}
