package render

import (
	"encoding/json"
	"strings"
)

type jsonOutput struct {
	Title       string     `json:"title,omitempty"`
	Width       float64    `json:"width"`
	Height      float64    `json:"height"`
	Columns     int        `json:"columns"`
	ColumnWidth float64    `json:"column_width"`
	Filter      string     `json:"filter"`
	URL         string     `json:"url,omitempty"`
	Visible     int        `json:"visible"`
	Total       int        `json:"total"`
	Cards       []jsonCard `json:"cards"`
}

type jsonCard struct {
	ID     string   `json:"id"`
	Label  string   `json:"label"`
	Tags   []string `json:"tags,omitempty"`
	Hidden bool     `json:"hidden,omitempty"`
	Column int      `json:"column"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
}

// JSON renders the wall as indented JSON. Hidden cards are listed with
// hidden=true and no geometry.
func JSON(w Wall) ([]byte, error) {
	out := jsonOutput{
		Title:       w.Title,
		Width:       w.Width,
		Height:      w.Height,
		Columns:     w.Columns,
		ColumnWidth: w.ColumnWidth,
		Filter:      w.Active,
		URL:         w.URL,
		Total:       len(w.Cards),
		Cards:       make([]jsonCard, 0, len(w.Cards)),
	}
	for _, c := range w.Cards {
		jc := jsonCard{ID: c.ID, Label: c.Label, Tags: splitTags(c.Tags), Hidden: !c.Placed}
		if c.Placed {
			out.Visible++
			jc.Column = c.Block.Column
			jc.X, jc.Y = c.Block.X(), c.Block.Y()
			jc.Width, jc.Height = c.Block.Width(), c.Block.Height()
		}
		out.Cards = append(out.Cards, jc)
	}
	return json.MarshalIndent(out, "", "  ")
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
