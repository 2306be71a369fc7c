package autofilter

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/autofilter/pkg/config"
	"github.com/matzehuels/autofilter/pkg/debounce"
	"github.com/matzehuels/autofilter/pkg/errors"
	"github.com/matzehuels/autofilter/pkg/filter"
	"github.com/matzehuels/autofilter/pkg/host"
	"github.com/matzehuels/autofilter/pkg/nav"
)

var testElements = []Element{
	{ID: "a", Tags: "design, web"},
	{ID: "b", Tags: "print"},
	{ID: "c", Tags: ""},
	{ID: "d", Tags: "Web,JavaScript"},
}

// recorder collects callback invocations.
type recorder struct {
	mu      sync.Mutex
	filters []filterCall
	resets  int
}

type filterCall struct {
	value   string
	matched bool
}

func (r *recorder) onFilter(value string, matched bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters = append(r.filters, filterCall{value, matched})
}

func (r *recorder) onReset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
}

func (r *recorder) calls() ([]filterCall, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]filterCall(nil), r.filters...), r.resets
}

type fixture struct {
	c     *Controller
	host  *host.Memory
	clock *debounce.FakeClock
	rec   *recorder
}

func newFixture(t *testing.T, mutate func(*config.Options), h *host.Memory) *fixture {
	t.Helper()
	if h == nil {
		h = host.NewMemory(1000)
	}
	for i, el := range testElements {
		h.Add(el.ID, float64(100*(i+1)))
	}

	rec := &recorder{}
	cfg := config.Default()
	cfg.OnFilter = rec.onFilter
	cfg.OnReset = rec.onReset
	if mutate != nil {
		mutate(&cfg)
	}

	clock := debounce.NewFakeClock()
	c, err := New(cfg, h, testElements, WithClock(clock))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(c.Destroy)
	return &fixture{c: c, host: h, clock: clock, rec: rec}
}

func visibleIDs(c *Controller) []string {
	var out []string
	for _, el := range testElements {
		if c.Visible(el.ID) {
			out = append(out, el.ID)
		}
	}
	return out
}

func TestNewAppliesInitialResetAndLayout(t *testing.T) {
	f := newFixture(t, nil, nil)

	if got := f.c.Passes(); got != 1 {
		t.Errorf("Passes() after New = %d, want 1 (initial layout)", got)
	}
	if f.c.State() != FilterPending {
		t.Errorf("State() = %v, want filter-pending before the first frame", f.c.State())
	}
	if _, resets := f.rec.calls(); resets != 1 {
		t.Errorf("OnReset calls = %d, want 1", resets)
	}
	if v, ok := f.host.ActiveButton(); !ok || v != "" {
		t.Errorf("ActiveButton = %q, %v; want the show-all button", v, ok)
	}

	if n := f.host.Flush(); n != 1 {
		t.Errorf("Flush() ran %d frames, want 1", n)
	}
	if f.c.State() != Idle {
		t.Errorf("State() = %v, want idle", f.c.State())
	}
	if got := f.c.VisibleCount(); got != len(testElements) {
		t.Errorf("VisibleCount() = %d, want all", got)
	}
	res := f.c.Layout()
	if res.Columns != 2 || len(res.Blocks) != 4 {
		t.Errorf("layout = %d columns, %d blocks; want 2, 4", res.Columns, len(res.Blocks))
	}
}

func TestClickFilters(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    []string
		matched bool
	}{
		{"exact tag", "web", []string{"a", "d"}, true},
		{"case folded", "PRINT", []string{"b"}, true},
		{"no substring for buttons", "scri", nil, false},
		{"no match", "audio", nil, false},
		{"empty resets", "", []string{"a", "b", "c", "d"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(o *config.Options) { o.SubString = true }, nil)
			f.host.Flush()

			matched := f.c.Click(tt.value)
			if matched != tt.matched {
				t.Errorf("Click(%q) = %v, want %v", tt.value, matched, tt.matched)
			}
			if got := visibleIDs(f.c); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("visible = %v, want %v", got, tt.want)
			}
			if v, _ := f.host.ActiveButton(); v != tt.value {
				t.Errorf("ActiveButton = %q, want %q", v, tt.value)
			}
			for _, el := range testElements {
				if f.host.Hidden(el.ID) == f.c.Visible(el.ID) {
					t.Errorf("hidden marker of %s out of sync", el.ID)
				}
			}
		})
	}
}

func TestCallbacks(t *testing.T) {
	f := newFixture(t, nil, nil)

	f.c.Click("print")
	f.c.Click("nothing")
	f.c.Reset()

	filters, resets := f.rec.calls()
	want := []filterCall{{"print", true}, {"nothing", false}}
	if !reflect.DeepEqual(filters, want) {
		t.Errorf("OnFilter calls = %v, want %v", filters, want)
	}
	// One reset from construction, one explicit.
	if resets != 2 {
		t.Errorf("OnReset calls = %d, want 2", resets)
	}
}

func TestMatchedFollowsCallbacks(t *testing.T) {
	f := newFixture(t, nil, nil)
	if !f.c.Matched() {
		t.Error("Matched() after initial reset = false")
	}

	f.c.Click("nothing")
	if f.c.Matched() {
		t.Error("Matched() after unmatched click = true")
	}

	// Input below min_chars is not evaluated and keeps the last outcome.
	f.c.Input("we")
	f.c.Flush()
	if f.c.Matched() {
		t.Error("Matched() changed by short input")
	}

	f.c.Input("print")
	f.c.Flush()
	filters, _ := f.rec.calls()
	last := filters[len(filters)-1]
	if last != (filterCall{"print", true}) || f.c.Matched() != last.matched {
		t.Errorf("last OnFilter = %v, Matched() = %v", last, f.c.Matched())
	}
}

func TestResetIsIdempotent(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.c.Click("print")
	f.host.Flush()

	f.c.Reset()
	f.host.Flush()
	first := f.host.Snapshot()
	firstLayout := f.c.Layout()

	f.c.Reset()
	f.host.Flush()
	second := f.host.Snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second reset changed state:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(firstLayout, f.c.Layout()) {
		t.Error("second reset changed the layout")
	}
	if v, input := f.c.ActiveFilter(); v != "" || input {
		t.Errorf("ActiveFilter() = %q, %v", v, input)
	}
}

func TestFramesCoalesce(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.host.Flush()
	before := f.c.Passes()

	f.c.Click("print")
	f.c.Click("web")
	f.c.Click("design")

	if n := f.host.PendingFrames(); n != 1 {
		t.Fatalf("PendingFrames() = %d, want 1", n)
	}
	f.host.Flush()

	if got := f.c.Passes() - before; got != 1 {
		t.Errorf("layout passes = %d, want 1", got)
	}
	res := f.c.Layout()
	if len(res.Blocks) != 1 || res.Blocks[0].ItemID != "a" {
		t.Errorf("layout should reflect the final filter, got %+v", res.Blocks)
	}
	if h, _ := f.host.ContainerHeight(); h != res.Height {
		t.Errorf("container height = %v, want %v", h, res.Height)
	}
}

func TestInputDebounce(t *testing.T) {
	f := newFixture(t, func(o *config.Options) { o.SubString = true }, nil)
	f.host.Flush()

	f.c.Input("j")
	f.clock.Advance(100 * time.Millisecond)
	f.c.Input("jav")
	f.clock.Advance(100 * time.Millisecond)
	f.c.Input("java ")

	f.clock.Advance(249 * time.Millisecond)
	if filters, _ := f.rec.calls(); len(filters) != 0 {
		t.Fatalf("filter ran before the window elapsed: %v", filters)
	}

	f.clock.Advance(time.Millisecond)
	filters, _ := f.rec.calls()
	if want := []filterCall{{"java", true}}; !reflect.DeepEqual(filters, want) {
		t.Errorf("OnFilter calls = %v, want %v", filters, want)
	}
	if got := visibleIDs(f.c); !reflect.DeepEqual(got, []string{"d"}) {
		t.Errorf("visible = %v, want [d]", got)
	}
	if v, input := f.c.ActiveFilter(); v != "java" || !input {
		t.Errorf("ActiveFilter() = %q, %v; want java, true", v, input)
	}
}

func TestInputMinChars(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		ran     bool
		visible []string
	}{
		{"below min", "we", false, []string{"a", "b", "c", "d"}},
		{"trimmed below min", "  we  ", false, []string{"a", "b", "c", "d"}},
		{"at min", "web", true, []string{"a", "d"}},
		{"multibyte counts runes", "wéb", true, nil},
		{"empty shows tagged", "   ", true, []string{"a", "b", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)
			f.c.Input(tt.raw)
			f.c.Flush()

			filters, _ := f.rec.calls()
			if ran := len(filters) == 1; ran != tt.ran {
				t.Errorf("filter ran = %v, want %v", ran, tt.ran)
			}
			if got := visibleIDs(f.c); !reflect.DeepEqual(got, tt.visible) {
				t.Errorf("visible = %v, want %v", got, tt.visible)
			}
		})
	}
}

func TestURLRoundTrip(t *testing.T) {
	u, _ := nav.Parse("/gallery")
	f := newFixture(t, func(o *config.Options) { o.URLSearchParam = "cat" }, host.NewMemoryAt(1000, u))

	f.c.Click("x")
	if v, ok := u.Get("cat"); !ok || v != "x" {
		t.Errorf("cat = %q, %v; want x", v, ok)
	}

	f.c.Reset()
	if u.Has("cat") {
		t.Errorf("reset should remove the parameter, url = %s", u.String())
	}
}

func TestInitialFilterFromURL(t *testing.T) {
	u, _ := nav.Parse("/gallery?cat=print")
	f := newFixture(t, func(o *config.Options) { o.URLSearchParam = "cat" }, host.NewMemoryAt(1000, u))

	if got := visibleIDs(f.c); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("visible = %v, want [b]", got)
	}
	if v, _ := f.host.ActiveButton(); v != "print" {
		t.Errorf("ActiveButton = %q, want print", v)
	}
	filters, resets := f.rec.calls()
	if len(filters) != 1 || resets != 0 {
		t.Errorf("initial load: %d filters, %d resets; want 1, 0", len(filters), resets)
	}
}

func TestURLIgnoredWhenDisabled(t *testing.T) {
	u, _ := nav.Parse("/gallery?cat=print")
	f := newFixture(t, nil, host.NewMemoryAt(1000, u))

	if got := f.c.VisibleCount(); got != 4 {
		t.Errorf("VisibleCount() = %d, want 4", got)
	}
	f.c.Click("web")
	if v, _ := u.Get("cat"); v != "print" {
		t.Errorf("URL should be untouched, cat = %q", v)
	}
}

func TestResizeDebounce(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.host.Flush()
	before := f.c.Passes()

	f.host.SetWidth(1100)
	f.clock.Advance(50 * time.Millisecond)
	f.host.SetWidth(1300)
	f.clock.Advance(99 * time.Millisecond)
	if f.c.Passes() != before {
		t.Fatal("relayout ran before the resize window elapsed")
	}

	f.clock.Advance(time.Millisecond)
	if got := f.c.Passes() - before; got != 1 {
		t.Errorf("resize passes = %d, want 1", got)
	}
	if cols := f.c.Layout().Columns; cols != 3 {
		t.Errorf("Columns = %d, want 3", cols)
	}
	if f.c.VisibleCount() != 4 {
		t.Error("resize must not change visibility")
	}
}

func TestInputAndResizeDebouncersAreIndependent(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.host.Flush()
	before := f.c.Passes()

	f.c.Input("print")
	f.host.SetWidth(1300)
	f.clock.Advance(100 * time.Millisecond)

	if f.c.Passes()-before != 1 {
		t.Error("resize should have fired at 100ms")
	}
	if filters, _ := f.rec.calls(); len(filters) != 0 {
		t.Error("input should still be pending at 100ms")
	}
	f.clock.Advance(150 * time.Millisecond)
	if filters, _ := f.rec.calls(); len(filters) != 1 {
		t.Error("input should fire at 250ms")
	}
}

func TestDestroy(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.host.Flush()
	f.c.Click("print")
	f.c.Input("design")

	f.c.Destroy()

	if n := f.host.Subscribers(); n != 0 {
		t.Errorf("Subscribers() = %d, want 0", n)
	}
	for _, el := range testElements {
		if _, ok := f.host.Block(el.ID); ok {
			t.Errorf("%s still placed", el.ID)
		}
		if f.host.Hidden(el.ID) {
			t.Errorf("%s still hidden", el.ID)
		}
	}
	if _, styled := f.host.ContainerHeight(); styled {
		t.Error("container height should be cleared")
	}

	passes := f.c.Passes()
	f.host.Flush()
	f.clock.Advance(time.Second)
	if f.c.Passes() != passes {
		t.Error("pending frame ran after Destroy")
	}
	if filters, _ := f.rec.calls(); len(filters) != 1 {
		t.Errorf("pending input ran after Destroy: %v", filters)
	}
	if f.c.Click("web") {
		t.Error("Click after Destroy should report no match")
	}
	f.c.Destroy()
}

func TestNoContainerIsNoop(t *testing.T) {
	h := host.NewMemory(1000)
	h.RemoveContainer()
	f := newFixture(t, nil, h)
	f.host.Flush()

	if got := f.c.Passes(); got != 0 {
		t.Errorf("Passes() = %d, want 0", got)
	}
	if f.host.PlaceCalls() != 0 {
		t.Error("nothing should be placed without a container")
	}
	if !f.c.Click("web") {
		t.Error("filtering still works without a container")
	}
}

func TestSyncFramesAndReentrantCallback(t *testing.T) {
	h := host.NewMemory(1000)
	for _, el := range testElements {
		h.Add(el.ID, 50)
	}

	var c *Controller
	var seen int
	cfg := config.Default()
	cfg.OnFilter = func(string, bool) { seen = c.VisibleCount() }

	c, err := New(cfg, h, testElements, WithFrames(SyncFrames{}))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Destroy()

	c.Click("web")
	if seen != 2 {
		t.Errorf("callback saw %d visible, want 2", seen)
	}
	if h.PendingFrames() != 0 {
		t.Error("SyncFrames should bypass the host queue")
	}
	if len(c.Layout().Blocks) != 2 {
		t.Errorf("layout blocks = %d, want 2", len(c.Layout().Blocks))
	}
}

func TestNewErrors(t *testing.T) {
	bad := config.Default()
	bad.Layout.ColumnsBreakpoints = map[int]int{768: 2}

	tests := []struct {
		name     string
		cfg      config.Options
		elements []Element
		code     errors.Code
	}{
		{"invalid config", bad, testElements, errors.ErrCodeInvalidConfig},
		{"empty id", config.Default(), []Element{{ID: ""}}, errors.ErrCodeInvalidInput},
		{"duplicate id", config.Default(), []Element{{ID: "a"}, {ID: "a"}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, host.NewMemory(500), tt.elements)
			if !errors.Is(err, tt.code) {
				t.Errorf("New() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestFilterOrigins(t *testing.T) {
	f := newFixture(t, func(o *config.Options) { o.SubString = true }, nil)

	if !f.c.Filter("script", filter.OriginInput) {
		t.Error("input origin should substring-match")
	}
	if f.c.Filter("script", filter.OriginButton) {
		t.Error("button origin must not substring-match")
	}
}

func TestTags(t *testing.T) {
	f := newFixture(t, nil, nil)
	want := []string{"design", "web", "print", "javascript"}
	if got := f.c.Tags(); !reflect.DeepEqual(got, want) {
		t.Errorf("Tags() = %v, want %v", got, want)
	}
}
