// Package autofilter ties tag filtering and masonry layout together for one
// wall of items.
//
// A [Controller] holds the active filter and the visibility of every item.
// Events flow one way:
//
//	Click / Input / Reset -> filter.Apply -> Sink.SetHidden -> URL sync
//	                      -> frame request -> layout.Compute -> Sink.Place
//
// The host page is reached only through small interfaces: a [Measurer] for
// widths and heights, a [Sink] for visual state, a [NavigationStore] for the
// URL query parameter and a [ResizeSource] for width changes. The pkg/host,
// pkg/dom and pkg/server packages provide implementations.
//
// # Scheduling
//
// Text input and container resizes are debounced independently (the input
// window comes from [config.Options.DebounceDelay], resizes use
// [config.ResizeDebounce]). Relayout after a visibility change is deferred
// to a [FrameScheduler]; at most one frame is outstanding, so several
// filters in the same turn produce a single layout pass that sees the final
// visibility.
//
// All entry points are safe for concurrent use. Frame requests and
// user callbacks run after the controller's lock is released, so callbacks
// may call back into the controller.
package autofilter
