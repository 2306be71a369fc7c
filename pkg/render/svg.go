package render

import (
	"bytes"
	"fmt"
	"html"
)

const (
	legendHeight = 32.0
	cardRadius   = 6.0
	labelPadding = 10.0
	fontSize     = 13.0
)

const cardCSS = `
    .card { stroke: #ffffff; stroke-width: 1; }
    .card.ghost { fill-opacity: 0.15; stroke: #9e9e9e; stroke-dasharray: 4 3; }
    .card-label { font-family: system-ui, sans-serif; font-size: 13px; fill: #ffffff; }
    .card-tags { font-family: system-ui, sans-serif; font-size: 11px; fill: #ffffff; fill-opacity: 0.8; }
    .legend { font-family: system-ui, sans-serif; font-size: 14px; fill: #333333; }`

// SVGOption configures [SVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	hidden     bool
	legend     bool
	background string
}

// WithHidden draws hidden cards as outlines at their last position.
func WithHidden() SVGOption { return func(r *svgRenderer) { r.hidden = true } }

// WithLegend adds a header line with the active filter.
func WithLegend() SVGOption { return func(r *svgRenderer) { r.legend = true } }

// WithBackground fills the canvas.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{background: "#fafafa"}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// SVG renders the wall.
func SVG(w Wall, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var offset float64
	if r.legend {
		offset = legendHeight
	}
	total := w.Height + offset

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w.Width, total, w.Width, total)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", cardCSS)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", html.EscapeString(r.background))
	}
	if r.legend {
		renderLegend(&buf, w)
	}

	if r.hidden {
		for _, c := range w.Cards {
			if c.Hidden && c.Block.Width() > 0 {
				renderGhost(&buf, c, offset)
			}
		}
	}
	for _, c := range w.Visible() {
		renderCard(&buf, c, offset)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderLegend(buf *bytes.Buffer, w Wall) {
	label := "all items"
	if w.Active != "" {
		label = "filter: " + w.Active
	}
	if w.Title != "" {
		label = w.Title + " · " + label
	}
	fmt.Fprintf(buf, `  <text class="legend" x="%.1f" y="%.1f">%s (%d shown)</text>`+"\n",
		labelPadding, legendHeight*0.65, html.EscapeString(label), len(w.Visible()))
}

func renderCard(buf *bytes.Buffer, c Card, offset float64) {
	b := c.Block
	id := html.EscapeString(c.ID)
	fmt.Fprintf(buf, `  <g id="card-%s">`+"\n", id)
	fmt.Fprintf(buf, `    <rect class="card" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.0f" fill="%s"/>`+"\n",
		b.Left, b.Top+offset, b.Width(), b.Height(), cardRadius, html.EscapeString(c.Color))
	if b.Height() >= fontSize+labelPadding {
		fmt.Fprintf(buf, `    <text class="card-label" x="%.1f" y="%.1f">%s</text>`+"\n",
			b.Left+labelPadding, b.Top+offset+labelPadding+fontSize, html.EscapeString(c.Label))
	}
	if c.Tags != "" && b.Height() >= 2*(fontSize+labelPadding) {
		fmt.Fprintf(buf, `    <text class="card-tags" x="%.1f" y="%.1f">%s</text>`+"\n",
			b.Left+labelPadding, b.Top+offset+2*(labelPadding+fontSize), html.EscapeString(c.Tags))
	}
	buf.WriteString("  </g>\n")
}

func renderGhost(buf *bytes.Buffer, c Card, offset float64) {
	b := c.Block
	fmt.Fprintf(buf, `  <rect class="card ghost" id="ghost-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.0f" fill="%s"/>`+"\n",
		html.EscapeString(c.ID), b.Left, b.Top+offset, b.Width(), b.Height(), cardRadius, html.EscapeString(c.Color))
}
