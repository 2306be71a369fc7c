// Package host provides an in-memory wall host.
//
// [Memory] implements every collaborator a controller needs: it measures
// from stored numbers, records applied visual state, keeps the URL in a
// [nav.URL], notifies subscribers on [Memory.SetWidth] and queues frames
// until [Memory.Flush]. The CLI and HTTP server render from its
// [Memory.Snapshot]; tests use it to observe what a controller did.
package host

import (
	"sort"
	"sync"

	"github.com/matzehuels/autofilter/pkg/layout"
	"github.com/matzehuels/autofilter/pkg/nav"
)

// Memory is a thread-safe in-memory host.
type Memory struct {
	*nav.URL

	mu            sync.Mutex
	width         float64
	noContainer   bool
	order         []string
	heights       map[string]float64
	hidden        map[string]bool
	blocks        map[string]layout.Block
	height        float64
	heightStyled  bool
	active        string
	activeSet     bool
	subs          map[int]func()
	nextSub       int
	frames        []func()
	placeCalls    int
	containerSets int
}

// NewMemory returns a host with the given container width at URL "/".
func NewMemory(width float64) *Memory {
	u, _ := nav.Parse("/")
	return NewMemoryAt(width, u)
}

// NewMemoryAt returns a host using u as its navigation store.
func NewMemoryAt(width float64, u *nav.URL) *Memory {
	return &Memory{
		URL:     u,
		width:   width,
		heights: make(map[string]float64),
		hidden:  make(map[string]bool),
		blocks:  make(map[string]layout.Block),
		subs:    make(map[int]func()),
	}
}

// Add registers an item and its height. Items keep the order they were
// added in.
func (m *Memory) Add(id string, height float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.heights[id]; !ok {
		m.order = append(m.order, id)
	}
	m.heights[id] = height
}

// SetHeight changes the measured height of an item.
func (m *Memory) SetHeight(id string, height float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.heights[id] = height
}

// RemoveContainer makes ContainerWidth report no container.
func (m *Memory) RemoveContainer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.noContainer = true
}

// SetWidth changes the container width and notifies subscribers when it
// differs from the previous width.
func (m *Memory) SetWidth(w float64) {
	m.mu.Lock()
	changed := w != m.width
	m.width = w
	subs := m.subscribersLocked()
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn()
	}
}

func (m *Memory) subscribersLocked() []func() {
	keys := make([]int, 0, len(m.subs))
	for k := range m.subs {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]func(), len(keys))
	for i, k := range keys {
		out[i] = m.subs[k]
	}
	return out
}

// ContainerWidth implements autofilter.Measurer.
func (m *Memory) ContainerWidth() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, !m.noContainer
}

// ItemHeight implements autofilter.Measurer.
func (m *Memory) ItemHeight(id string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.heights[id]
}

// SetHidden implements autofilter.Sink.
func (m *Memory) SetHidden(id string, hidden bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hidden[id] = hidden
}

// Place implements autofilter.Sink.
func (m *Memory) Place(id string, b layout.Block) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks[id] = b
	m.placeCalls++
}

// ClearItem implements autofilter.Sink.
func (m *Memory) ClearItem(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blocks, id)
	delete(m.hidden, id)
}

// SetContainerHeight implements autofilter.Sink.
func (m *Memory) SetContainerHeight(h float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.height = h
	m.heightStyled = true
	m.containerSets++
}

// ClearContainer implements autofilter.Sink.
func (m *Memory) ClearContainer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.height = 0
	m.heightStyled = false
}

// SetActiveButton implements autofilter.Sink.
func (m *Memory) SetActiveButton(value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = value
	m.activeSet = true
}

// Subscribe implements autofilter.ResizeSource.
func (m *Memory) Subscribe(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Subscribers returns the number of live width subscriptions.
func (m *Memory) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// RequestFrame implements autofilter.FrameScheduler. Frames are queued
// until Flush.
func (m *Memory) RequestFrame(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, fn)
}

// PendingFrames returns the number of queued frames.
func (m *Memory) PendingFrames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

// Flush runs queued frames, including frames requested while flushing, and
// returns how many ran.
func (m *Memory) Flush() int {
	n := 0
	for {
		m.mu.Lock()
		if len(m.frames) == 0 {
			m.mu.Unlock()
			return n
		}
		fn := m.frames[0]
		m.frames = m.frames[1:]
		m.mu.Unlock()

		fn()
		n++
	}
}

// Hidden reports whether the item carries the hidden marker.
func (m *Memory) Hidden(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hidden[id]
}

// Block returns the last placement of an item.
func (m *Memory) Block(id string) (layout.Block, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blocks[id]
	return b, ok
}

// ContainerHeight returns the applied container height and whether one is
// currently set.
func (m *Memory) ContainerHeight() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.height, m.heightStyled
}

// ActiveButton returns the active button value.
func (m *Memory) ActiveButton() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active, m.activeSet
}

// PlaceCalls returns how many Place calls were applied.
func (m *Memory) PlaceCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.placeCalls
}

// ContainerWrites returns how many times the container height was set.
// Each layout pass sets it exactly once.
func (m *Memory) ContainerWrites() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.containerSets
}

// ItemState is one item of a [Snapshot].
type ItemState struct {
	ID     string
	Height float64
	Hidden bool
	// Placed is false for hidden items and items never placed.
	Placed bool
	Block  layout.Block
}

// Snapshot is a copy of the visible state of a Memory host.
type Snapshot struct {
	Width        float64
	Height       float64
	ActiveButton string
	URL          string
	Items        []ItemState
}

// Visible returns the placed items in registration order.
func (s Snapshot) Visible() []ItemState {
	var out []ItemState
	for _, it := range s.Items {
		if it.Placed {
			out = append(out, it)
		}
	}
	return out
}

// Snapshot copies the current state.
func (m *Memory) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{
		Width:        m.width,
		Height:       m.height,
		ActiveButton: m.active,
		URL:          m.URL.String(),
		Items:        make([]ItemState, 0, len(m.order)),
	}
	for _, id := range m.order {
		b, placed := m.blocks[id]
		hidden := m.hidden[id]
		s.Items = append(s.Items, ItemState{
			ID:     id,
			Height: m.heights[id],
			Hidden: hidden,
			Placed: placed && !hidden,
			Block:  b,
		})
	}
	return s
}
