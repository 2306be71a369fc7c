package autofilter

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/autofilter/pkg/config"
	"github.com/matzehuels/autofilter/pkg/debounce"
	"github.com/matzehuels/autofilter/pkg/errors"
	"github.com/matzehuels/autofilter/pkg/filter"
	"github.com/matzehuels/autofilter/pkg/layout"
	"github.com/matzehuels/autofilter/pkg/observability"
)

// State is the controller's scheduling state.
type State int

const (
	// Idle means the last applied layout reflects the current visibility.
	Idle State = iota
	// FilterPending means visibility changed and the relayout frame has not
	// run yet.
	FilterPending
)

func (s State) String() string {
	if s == FilterPending {
		return "filter-pending"
	}
	return "idle"
}

// Controller owns the filter state of one wall.
type Controller struct {
	id        string
	cfg       config.Options
	layoutCfg layout.Config
	host      Host
	frames    FrameScheduler
	logger    *log.Logger
	ctx       context.Context

	elements []Element
	items    []filter.Item
	index    map[string]int

	input  *debounce.Debouncer[string]
	resize *debounce.Debouncer[struct{}]
	cancel func()

	mu           sync.Mutex
	active       string
	inputOrigin  bool
	matched      bool
	visible      []bool
	state        State
	framePending bool
	last         layout.Result
	passes       int
	destroyed    bool
}

// effects are produced under the lock and run after it is released.
type effects struct {
	frame   bool
	matched bool
	notify  []func()
}

// New validates cfg, subscribes to width changes, applies an initial layout
// and then the initial filter: the URL parameter when present, else a reset.
func New(cfg config.Options, h Host, elements []Element, opts ...Option) (*Controller, error) {
	if h == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "host is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(elements))
	items := make([]filter.Item, len(elements))
	for i, el := range elements {
		if err := errors.ValidateItemID(el.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "element %d", i)
		}
		if _, dup := index[el.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate element id %q", el.ID)
		}
		index[el.ID] = i
		items[i] = filter.ParseTags(el.Tags, cfg.CaseSensitive)
	}

	s := newSettings(h, opts)
	id := uuid.NewString()

	c := &Controller{
		id:        id,
		cfg:       cfg.Clone(),
		layoutCfg: cfg.LayoutConfig(),
		host:      h,
		frames:    s.frames,
		logger:    s.logger.With("wall", id[:8]),
		ctx:       s.ctx,
		elements:  append([]Element(nil), elements...),
		items:     items,
		index:     index,
		visible:   make([]bool, len(elements)),
	}
	for i := range c.visible {
		c.visible[i] = true
	}

	c.input = debounce.New(cfg.DebounceDelay(), c.onInput, debounce.WithClock(s.clock))
	c.resize = debounce.New(config.ResizeDebounce, func(struct{}) { c.Relayout() }, debounce.WithClock(s.clock))
	c.cancel = h.Subscribe(func() { c.resize.Trigger(struct{}{}) })

	c.logger.Debug("controller created", "items", len(elements), "url_param", cfg.URLSearchParam)

	c.mu.Lock()
	note := c.relayoutLocked()
	var initial string
	if c.cfg.URLSyncEnabled() {
		initial, _ = h.Get(c.cfg.URLSearchParam)
	}
	var fx effects
	if initial != "" {
		fx = c.filterLocked(initial, filter.OriginButton)
		h.SetActiveButton(initial)
	} else {
		fx = c.resetLocked()
	}
	c.mu.Unlock()

	note()
	c.finish(fx)
	return c, nil
}

// ID returns the controller instance id.
func (c *Controller) ID() string { return c.id }

// Options returns the configuration the controller was built with.
func (c *Controller) Options() config.Options { return c.cfg.Clone() }

// Click handles a filter button. The button becomes active and its value is
// applied as a button filter; an empty value resets the wall.
func (c *Controller) Click(value string) bool {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return false
	}
	c.host.SetActiveButton(value)
	fx := c.filterLocked(value, filter.OriginButton)
	c.mu.Unlock()

	c.finish(fx)
	return fx.matched
}

// Input handles a text input change. Calls are debounced; the trailing raw
// value is trimmed and evaluated when it is empty or at least min_chars
// runes long.
func (c *Controller) Input(raw string) {
	c.input.Trigger(raw)
}

func (c *Controller) onInput(raw string) {
	value := strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(value); n != 0 && n < c.cfg.MinChars {
		c.logger.Debug("input below min_chars", "value", value, "min_chars", c.cfg.MinChars)
		return
	}
	c.Filter(value, filter.OriginInput)
}

// Filter applies value immediately and reports whether any item matched.
// An empty button filter is a reset.
func (c *Controller) Filter(value string, origin filter.Origin) bool {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return false
	}
	fx := c.filterLocked(value, origin)
	c.mu.Unlock()

	c.finish(fx)
	return fx.matched
}

// Reset shows every item and clears the active filter.
func (c *Controller) Reset() {
	c.Filter("", filter.OriginButton)
}

// Relayout recomputes geometry for the current visibility immediately.
func (c *Controller) Relayout() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	note := c.relayoutLocked()
	c.mu.Unlock()
	note()
}

// Flush runs pending debounced input and resize work now.
func (c *Controller) Flush() {
	c.input.Flush()
	c.resize.Flush()
}

// Destroy releases the width subscription, drops pending work and clears
// all styling applied to items and the container. Further calls are no-ops.
func (c *Controller) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.destroyed = true

	if c.cancel != nil {
		c.cancel()
	}
	c.input.Cancel()
	c.resize.Cancel()

	for _, el := range c.elements {
		c.host.ClearItem(el.ID)
	}
	c.host.ClearContainer()
	c.logger.Debug("controller destroyed")
}

// ActiveFilter returns the current filter value and whether it came from a
// text input.
func (c *Controller) ActiveFilter() (value string, input bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, c.inputOrigin
}

// Visible reports whether the item with id is currently visible.
func (c *Controller) Visible(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	return ok && c.visible[i]
}

// VisibleCount returns the number of visible items.
func (c *Controller) VisibleCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.visible {
		if v {
			n++
		}
	}
	return n
}

// Matched reports the outcome passed to the last filter or reset
// notification.
func (c *Controller) Matched() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matched
}

// Layout returns the last applied layout.
func (c *Controller) Layout() layout.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Passes returns how many layout passes have been applied.
func (c *Controller) Passes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.passes
}

// State returns the scheduling state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Tags returns the distinct parsed tags in document order.
func (c *Controller) Tags() []string {
	return filter.Distinct(c.items)
}

func (c *Controller) filterLocked(value string, origin filter.Origin) effects {
	if value == "" && origin == filter.OriginButton {
		return c.resetLocked()
	}

	start := time.Now()
	res := filter.Apply(c.items, value, c.cfg.FilterMode(origin))
	c.applyVisibilityLocked(res.Visible)
	c.active = value
	c.inputOrigin = origin == filter.OriginInput
	c.matched = res.Matched
	c.syncURLLocked(value)

	elapsed := time.Since(start)
	visible, total, matched := res.Count(), len(c.items), res.Matched
	c.logger.Debug("filter applied", "origin", origin, "value", value, "visible", visible, "matched", matched)

	fx := effects{frame: c.requestFrameLocked(), matched: matched}
	fx.notify = append(fx.notify, func() {
		observability.Wall().OnFilter(c.ctx, origin.String(), value, visible, total, matched, elapsed)
	})
	if cb := c.cfg.OnFilter; cb != nil {
		fx.notify = append(fx.notify, func() { cb(value, matched) })
	}
	return fx
}

func (c *Controller) resetLocked() effects {
	for i, el := range c.elements {
		c.visible[i] = true
		c.host.SetHidden(el.ID, false)
	}
	c.active = ""
	c.inputOrigin = false
	c.matched = true
	c.syncURLLocked("")
	c.host.SetActiveButton("")

	total := len(c.items)
	c.logger.Debug("reset", "items", total)

	fx := effects{frame: c.requestFrameLocked(), matched: true}
	fx.notify = append(fx.notify, func() {
		observability.Wall().OnReset(c.ctx, total)
	})
	if cb := c.cfg.OnReset; cb != nil {
		fx.notify = append(fx.notify, cb)
	}
	return fx
}

func (c *Controller) applyVisibilityLocked(vis []bool) {
	for i, el := range c.elements {
		c.visible[i] = vis[i]
		c.host.SetHidden(el.ID, !vis[i])
	}
}

func (c *Controller) syncURLLocked(value string) {
	if !c.cfg.URLSyncEnabled() {
		return
	}
	if value != "" {
		c.host.Set(c.cfg.URLSearchParam, value)
	} else {
		c.host.Delete(c.cfg.URLSearchParam)
	}
}

// requestFrameLocked marks the wall pending and reports whether a new frame
// must be requested. At most one frame is outstanding.
func (c *Controller) requestFrameLocked() bool {
	c.state = FilterPending
	if c.framePending {
		return false
	}
	c.framePending = true
	return true
}

func (c *Controller) onFrame() {
	c.mu.Lock()
	c.framePending = false
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	note := c.relayoutLocked()
	c.state = Idle
	c.mu.Unlock()
	note()
}

// relayoutLocked measures visible items, computes the layout and applies it.
// Without a container or items it does nothing.
func (c *Controller) relayoutLocked() func() {
	width, ok := c.host.ContainerWidth()
	if !ok || len(c.elements) == 0 {
		return func() {}
	}

	start := time.Now()
	items := make([]layout.Item, len(c.elements))
	for i, el := range c.elements {
		it := layout.Item{ID: el.ID, Visible: c.visible[i]}
		if it.Visible {
			it.Height = c.host.ItemHeight(el.ID)
		}
		items[i] = it
	}

	res := layout.Compute(width, items, c.layoutCfg)
	for _, b := range res.Blocks {
		c.host.Place(b.ItemID, b)
	}
	c.host.SetContainerHeight(res.Height)
	c.last = res
	c.passes++

	elapsed := time.Since(start)
	c.logger.Debug("layout applied", "width", width, "columns", res.Columns, "placed", len(res.Blocks), "height", res.Height)

	return func() {
		observability.Wall().OnLayout(c.ctx, res.Columns, len(res.Blocks), res.Height, elapsed)
	}
}

func (c *Controller) finish(fx effects) {
	if fx.frame {
		c.frames.RequestFrame(c.onFrame)
	}
	for _, f := range fx.notify {
		f()
	}
}
