// Package render turns a laid-out wall into SVG or JSON.
//
// A [Wall] joins the state a host ended up with (block positions, hidden
// markers, container height) with the item details of a manifest (labels,
// colors). It is a plain value; rendering never touches a controller.
//
//	snap := h.Snapshot()
//	wall := render.NewWall(snap, c.Layout(), m)
//	svg := render.SVG(wall, render.WithLegend())
//	data, err := render.JSON(wall)
//
// SVG output places every visible card at its block. Hidden cards are
// omitted unless [WithHidden] is set, in which case they are drawn as
// faded outlines where they were last placed.
package render
