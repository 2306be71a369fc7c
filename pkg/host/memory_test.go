package host

import (
	"testing"

	"github.com/matzehuels/autofilter/pkg/layout"
)

func TestMemorySubscribe(t *testing.T) {
	m := NewMemory(800)
	var calls int
	cancel := m.Subscribe(func() { calls++ })

	m.SetWidth(800)
	if calls != 0 {
		t.Error("unchanged width should not notify")
	}
	m.SetWidth(900)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	cancel()
	m.SetWidth(1000)
	if calls != 1 {
		t.Error("cancelled subscriber was notified")
	}
	if m.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, want 0", m.Subscribers())
	}
}

func TestMemoryFlushRunsNestedFrames(t *testing.T) {
	m := NewMemory(800)
	var order []int
	m.RequestFrame(func() {
		order = append(order, 1)
		m.RequestFrame(func() { order = append(order, 2) })
	})

	if n := m.Flush(); n != 2 {
		t.Errorf("Flush() = %d, want 2", n)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v", order)
	}
	if m.PendingFrames() != 0 {
		t.Error("queue should be empty")
	}
}

func TestMemorySnapshot(t *testing.T) {
	m := NewMemory(500)
	m.Add("a", 10)
	m.Add("b", 20)
	m.Add("c", 30)

	m.Place("a", layout.Block{ItemID: "a", Right: 500, Bottom: 10})
	m.Place("b", layout.Block{ItemID: "b", Top: 30, Right: 500, Bottom: 50})
	m.SetHidden("b", true)
	m.SetContainerHeight(60)
	m.SetActiveButton("x")
	m.Set("cat", "x")

	s := m.Snapshot()
	if s.Height != 60 || s.ActiveButton != "x" || s.URL != "/?cat=x" {
		t.Errorf("snapshot = %+v", s)
	}
	if len(s.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(s.Items))
	}
	vis := s.Visible()
	if len(vis) != 1 || vis[0].ID != "a" {
		t.Errorf("Visible() = %+v, want only a", vis)
	}

	m.ClearItem("a")
	m.ClearContainer()
	if _, ok := m.Block("a"); ok {
		t.Error("ClearItem kept the block")
	}
	if _, styled := m.ContainerHeight(); styled {
		t.Error("ClearContainer kept the height")
	}
}
