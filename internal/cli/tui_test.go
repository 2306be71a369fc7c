package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/autofilter/pkg/autofilter"
	"github.com/matzehuels/autofilter/pkg/debounce"
	"github.com/matzehuels/autofilter/pkg/layout"
	"github.com/matzehuels/autofilter/pkg/render"
)

func newTestWallModel(t *testing.T) *wallModel {
	t.Helper()
	m, err := newWallModel(newTestCLI(t), loadTestManifest(t), autofilter.WithClock(debounce.NewFakeClock()))
	if err != nil {
		t.Fatalf("newWallModel() error: %v", err)
	}
	t.Cleanup(m.ctrl.Destroy)
	pump(m)
	return m
}

// pump delivers queued frames the way the program loop would.
func pump(m *wallModel) {
	for {
		select {
		case fn := <-m.host.frames:
			m.Update(frameMsg(fn))
		default:
			return
		}
	}
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestWallModelInitial(t *testing.T) {
	m := newTestWallModel(t)

	want := []string{"", "design", "web", "print", "javascript"}
	if strings.Join(m.buttons, ",") != strings.Join(want, ",") {
		t.Errorf("buttons = %q, want %q", m.buttons, want)
	}
	if m.ctrl.VisibleCount() != 4 {
		t.Errorf("visible = %d, want 4", m.ctrl.VisibleCount())
	}
	if cols := m.ctrl.Layout().Columns; cols != 2 {
		t.Errorf("columns at 80 cells = %d, want 2", cols)
	}

	view := m.View()
	for _, s := range []string{"Work", "all", "Alpha", "4/4 visible"} {
		if !strings.Contains(view, s) {
			t.Errorf("view missing %q", s)
		}
	}
}

func TestWallModelButtons(t *testing.T) {
	m := newTestWallModel(t)

	m.Update(key(tea.KeyRight))
	m.Update(key(tea.KeyRight))
	m.Update(key(tea.KeyEnter))
	pump(m)

	if active, _ := m.ctrl.ActiveFilter(); active != "web" {
		t.Fatalf("active = %q, want web", active)
	}
	if m.ctrl.VisibleCount() != 2 {
		t.Errorf("visible = %d, want 2", m.ctrl.VisibleCount())
	}
	if got := len(m.ctrl.Layout().Blocks); got != 2 {
		t.Errorf("placed = %d, want 2", got)
	}
	if strings.Contains(m.View(), "Beta") {
		t.Error("hidden card rendered")
	}

	m.Update(runes("r"))
	pump(m)
	if m.ctrl.VisibleCount() != 4 || m.cursor != 0 {
		t.Errorf("after reset visible = %d cursor = %d", m.ctrl.VisibleCount(), m.cursor)
	}
}

func TestWallModelSearch(t *testing.T) {
	m := newTestWallModel(t)

	m.Update(key(tea.KeyTab))
	if !m.inputFocus {
		t.Fatal("tab should focus the input")
	}
	m.Update(runes("print"))
	m.ctrl.Flush()
	pump(m)

	if m.ctrl.VisibleCount() != 1 || !m.ctrl.Visible("b") {
		t.Errorf("search print: visible = %d", m.ctrl.VisibleCount())
	}

	// q types into the input instead of quitting.
	m.Update(runes("q"))
	if m.input.Value() != "printq" {
		t.Errorf("input = %q, want printq", m.input.Value())
	}

	m.Update(key(tea.KeyEsc))
	if m.inputFocus {
		t.Error("esc should leave the input")
	}
}

func TestWallModelResize(t *testing.T) {
	m := newTestWallModel(t)

	m.Update(tea.WindowSizeMsg{Width: 130, Height: 40})
	m.ctrl.Flush()
	pump(m)

	if cols := m.ctrl.Layout().Columns; cols != 3 {
		t.Errorf("columns at 130 cells = %d, want 3", cols)
	}
}

func TestWallModelQuit(t *testing.T) {
	m := newTestWallModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestTermHostRedrawCoalesces(t *testing.T) {
	h := newTermHost(800)
	h.SetContainerHeight(10)
	h.SetContainerHeight(20)

	if _, ok := h.wait().(redrawMsg); !ok {
		t.Fatal("expected a redraw")
	}
	select {
	case <-h.redraw:
		t.Error("redraws should coalesce")
	default:
	}
}

func TestRenderTermWallEmpty(t *testing.T) {
	out := renderTermWall(render.Wall{}, layout.Result{}, 20)
	if !strings.Contains(out, "nothing to show") {
		t.Errorf("empty wall = %q", out)
	}
}
