package render

import (
	"hash/fnv"

	"github.com/matzehuels/autofilter/pkg/host"
	"github.com/matzehuels/autofilter/pkg/layout"
	"github.com/matzehuels/autofilter/pkg/manifest"
)

// Wall is a renderable snapshot.
type Wall struct {
	Title       string
	Width       float64
	Height      float64
	Columns     int
	ColumnWidth float64
	Active      string
	URL         string
	Cards       []Card
}

// Card is one item of a wall.
type Card struct {
	ID     string
	Label  string
	Tags   string
	Color  string
	Hidden bool
	Placed bool
	Block  layout.Block
}

// palette colors cards without an explicit color, keyed by their tags.
var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2",
	"#59a14f", "#edc948", "#b07aa1", "#ff9da7",
}

// NewWall combines a host snapshot with the last layout and, optionally, a
// manifest for labels and colors.
func NewWall(snap host.Snapshot, res layout.Result, m *manifest.Manifest) Wall {
	w := Wall{
		Width:       snap.Width,
		Height:      snap.Height,
		Columns:     res.Columns,
		ColumnWidth: res.ColumnWidth,
		Active:      snap.ActiveButton,
		URL:         snap.URL,
		Cards:       make([]Card, 0, len(snap.Items)),
	}
	if m != nil {
		w.Title = m.Title
	}

	for _, it := range snap.Items {
		c := Card{
			ID:     it.ID,
			Label:  it.ID,
			Hidden: it.Hidden,
			Placed: it.Placed,
			Block:  it.Block,
		}
		if m != nil {
			if mi, ok := m.Item(it.ID); ok {
				if mi.Label != "" {
					c.Label = mi.Label
				}
				c.Tags = mi.Tags
				c.Color = mi.Color
			}
		}
		if c.Color == "" {
			c.Color = colorFor(c.Tags)
		}
		w.Cards = append(w.Cards, c)
	}
	return w
}

// Visible returns the placed cards.
func (w Wall) Visible() []Card {
	var out []Card
	for _, c := range w.Cards {
		if c.Placed {
			out = append(out, c)
		}
	}
	return out
}

func colorFor(tags string) string {
	if tags == "" {
		return "#9e9e9e"
	}
	h := fnv.New32a()
	h.Write([]byte(tags))
	return palette[h.Sum32()%uint32(len(palette))]
}
