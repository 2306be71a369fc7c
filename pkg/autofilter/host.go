package autofilter

import "github.com/matzehuels/autofilter/pkg/layout"

// Measurer reads geometry from the host.
type Measurer interface {
	// ContainerWidth returns the container width. ok is false when the host
	// has no container, which turns every layout pass into a no-op.
	ContainerWidth() (width float64, ok bool)
	// ItemHeight returns the current rendered height of an item.
	ItemHeight(id string) float64
}

// Sink applies visual state to the host.
type Sink interface {
	SetHidden(id string, hidden bool)
	Place(id string, b layout.Block)
	// ClearItem removes width, transform and the hidden marker.
	ClearItem(id string)
	SetContainerHeight(h float64)
	// ClearContainer restores the unstyled container height.
	ClearContainer()
	// SetActiveButton marks the button whose filter value equals value and
	// unmarks every other button. Hosts without buttons ignore it.
	SetActiveButton(value string)
}

// NavigationStore reads and writes one query parameter of the page URL.
type NavigationStore interface {
	Get(param string) (string, bool)
	Set(param, value string)
	Delete(param string)
}

// ResizeSource notifies about container width changes.
type ResizeSource interface {
	Subscribe(fn func()) (cancel func())
}

// FrameScheduler runs fn on the next frame tick.
type FrameScheduler interface {
	RequestFrame(fn func())
}

// Host bundles the collaborators a Controller needs. Hosts that also
// implement [FrameScheduler] are used for frame scheduling unless
// [WithFrames] overrides it.
type Host interface {
	Measurer
	Sink
	NavigationStore
	ResizeSource
}

// SyncFrames runs frames immediately on the requesting goroutine.
type SyncFrames struct{}

// RequestFrame calls fn.
func (SyncFrames) RequestFrame(fn func()) { fn() }

// Element is an item handle as collected from the host, in document order.
type Element struct {
	ID string
	// Tags is the raw comma-separated tag attribute. Empty means untagged.
	Tags string
}
