package layout

import (
	"slices"

	"github.com/matzehuels/autofilter/pkg/errors"
)

// Breakpoints maps a minimum container width to a column count.
type Breakpoints map[int]int

// DefaultBreakpoints returns the stock table: three columns above 1200,
// two above 768, one otherwise.
func DefaultBreakpoints() Breakpoints {
	return Breakpoints{1200: 3, 768: 2, 0: 1}
}

// Columns returns the column count for a container width. The largest key
// strictly less than width wins; otherwise the entry keyed 0 is used.
// It returns 0 if neither exists.
func (bp Breakpoints) Columns(width float64) int {
	for _, key := range bp.descending() {
		if width > float64(key) {
			return bp[key]
		}
	}
	return bp[0]
}

// Keys returns the breakpoint keys in ascending order.
func (bp Breakpoints) Keys() []int {
	keys := make([]int, 0, len(bp))
	for k := range bp {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (bp Breakpoints) descending() []int {
	keys := bp.Keys()
	slices.Reverse(keys)
	return keys
}

// Clone returns an independent copy.
func (bp Breakpoints) Clone() Breakpoints {
	out := make(Breakpoints, len(bp))
	for k, v := range bp {
		out[k] = v
	}
	return out
}

// Validate checks that the fallback entry exists and every count is usable.
func (bp Breakpoints) Validate() error {
	if len(bp) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "columns breakpoints cannot be empty")
	}
	if _, ok := bp[0]; !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "columns breakpoints must contain an entry for width 0")
	}
	for _, k := range bp.Keys() {
		if k < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "breakpoint width must be >= 0, got %d", k)
		}
		if bp[k] < 1 {
			return errors.New(errors.ErrCodeInvalidConfig, "breakpoint %d: column count must be >= 1, got %d", k, bp[k])
		}
	}
	return nil
}
