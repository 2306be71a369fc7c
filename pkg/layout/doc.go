// Package layout computes masonry positions for a wall of cards.
//
// # Overview
//
// Given a container width, a gutter and a breakpoint table, [Compute] places
// every visible item into the currently shortest column, walking the items
// in document order. The result is a [Result] containing one [Block] per
// visible item plus the final column heights.
//
// This is a greedy shortest-column heuristic, not an optimal packing: items
// are never reordered, so the output depends only on the input order and
// heights.
//
// # Column Count
//
// [Breakpoints] maps a minimum container width to a column count. The entry
// with the largest key strictly below the container width wins, so a width
// exactly equal to a key falls through to the next smaller tier:
//
//	bp := layout.Breakpoints{1200: 3, 768: 2, 0: 1}
//	bp.Columns(1200) // 2
//	bp.Columns(1201) // 3
//
// The entry keyed 0 is the fallback and must always be present; use
// [Config.Validate] at construction time. Without it, [Compute] degrades to
// an empty result rather than panicking.
//
// # Coordinates
//
// Blocks use screen coordinates: Top is the y offset from the container top
// and Bottom = Top + height. Column heights include the trailing gutter of
// their last item, and so does [Result.Height].
//
// Compute is pure. Applying the blocks to real elements is the caller's job,
// which lets hosts measure heights before any transform is applied.
package layout
