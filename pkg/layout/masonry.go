package layout

import (
	"github.com/matzehuels/autofilter/pkg/errors"
)

// Config holds the immutable layout settings.
type Config struct {
	Gutter      float64
	Breakpoints Breakpoints
}

// DefaultConfig returns a 20 unit gutter with [DefaultBreakpoints].
func DefaultConfig() Config {
	return Config{Gutter: 20, Breakpoints: DefaultBreakpoints()}
}

// Validate reports configuration defects that Compute would otherwise
// silently degrade on.
func (c Config) Validate() error {
	if c.Gutter < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "gutter must be >= 0, got %v", c.Gutter)
	}
	return c.Breakpoints.Validate()
}

// Item is one record of the layout input. Order is significant.
type Item struct {
	ID      string
	Height  float64
	Visible bool
}

// Result is the output of a single layout pass.
type Result struct {
	Columns       int
	ColumnWidth   float64
	Blocks        []Block
	ColumnHeights []float64
	Height        float64
}

// Block returns the block for an item id.
func (r Result) Block(id string) (Block, bool) {
	for _, b := range r.Blocks {
		if b.ItemID == id {
			return b, true
		}
	}
	return Block{}, false
}

// ColumnOf groups blocks by column, preserving top-to-bottom order.
func (r Result) ColumnOf(col int) []Block {
	var out []Block
	for _, b := range r.Blocks {
		if b.Column == col {
			out = append(out, b)
		}
	}
	return out
}

// Compute places the visible items into columns using the shortest-column
// rule. Ties go to the lowest column index. Hidden items get no block.
func Compute(containerWidth float64, items []Item, cfg Config) Result {
	cols := cfg.Breakpoints.Columns(containerWidth)
	if cols < 1 {
		return Result{}
	}

	gutter := cfg.Gutter
	width := containerWidth
	if cols > 1 {
		width = (containerWidth - gutter*float64(cols-1)) / float64(cols)
	}

	heights := make([]float64, cols)
	blocks := make([]Block, 0, len(items))

	for _, it := range items {
		if !it.Visible {
			continue
		}
		col := shortest(heights)
		left := float64(col) * (width + gutter)
		top := heights[col]
		blocks = append(blocks, Block{
			ItemID: it.ID,
			Column: col,
			Left:   left,
			Right:  left + width,
			Top:    top,
			Bottom: top + it.Height,
		})
		heights[col] += it.Height + gutter
	}

	var tallest float64
	if len(blocks) > 0 {
		for _, h := range heights {
			tallest = max(tallest, h)
		}
	}

	return Result{
		Columns:       cols,
		ColumnWidth:   width,
		Blocks:        blocks,
		ColumnHeights: heights,
		Height:        tallest,
	}
}

// shortest returns the index of the first minimum.
func shortest(heights []float64) int {
	best := 0
	for i := 1; i < len(heights); i++ {
		if heights[i] < heights[best] {
			best = i
		}
	}
	return best
}
