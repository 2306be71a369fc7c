// Package dom hosts a wall inside a static HTML document.
//
// A [Document] parses a page with golang.org/x/net/html, finds the
// container, items, filter buttons and text inputs with the configured
// selectors (compiled to XPath and queried with htmlquery), and applies
// controller output as classes and inline styles. Geometry that a browser
// would measure comes from attributes instead:
//
//	<div class="af-container" data-width="1000">
//	  <div class="af-item" id="p1" data-tags="web, design" data-height="240">…</div>
//	</div>
//
// [Document.Render] writes the mutated page back.
package dom

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/matzehuels/autofilter/pkg/autofilter"
	"github.com/matzehuels/autofilter/pkg/config"
	"github.com/matzehuels/autofilter/pkg/errors"
	"github.com/matzehuels/autofilter/pkg/layout"
	"github.com/matzehuels/autofilter/pkg/nav"
)

const (
	attrTags   = "data-tags"
	attrHeight = "data-height"
	attrWidth  = "data-width"
	attrFilter = "data-filter"
)

// Document is an HTML page acting as a wall host. It implements every
// collaborator of autofilter.Host; navigation is delegated to the
// embedded [nav.URL].
type Document struct {
	*nav.URL

	mu        sync.Mutex
	root      *html.Node
	cfg       config.Options
	container *html.Node
	items     []*html.Node
	byID      map[string]*html.Node
	elements  []autofilter.Element
	buttons   []*html.Node
	inputs    []*html.Node
	width     float64
	widthSet  bool
	subs      map[int]func()
	nextSub   int
}

// Parse reads an HTML page and resolves the configured selectors. The
// container selector may match nothing; layout is then a no-op.
func Parse(r io.Reader, cfg config.Options, u *nav.URL) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parse html")
	}
	if u == nil {
		u, _ = nav.Parse("/")
	}

	d := &Document{
		URL:  u,
		root: root,
		cfg:  cfg,
		byID: make(map[string]*html.Node),
		subs: make(map[int]func()),
	}

	if d.container, err = queryOne(root, cfg.ContainerSelector); err != nil {
		return nil, err
	}
	if d.items, err = queryAll(root, cfg.TargetSelector); err != nil {
		return nil, err
	}
	if d.buttons, err = queryAll(root, cfg.FilterSelector+":not(input)"); err != nil {
		return nil, err
	}
	if d.inputs, err = queryAll(root, cfg.FilterSelector+`[type="text"]`); err != nil {
		return nil, err
	}

	for i, n := range d.items {
		id := htmlquery.SelectAttr(n, "id")
		if id == "" {
			id = fmt.Sprintf("af-item-%d", i+1)
		}
		if _, dup := d.byID[id]; dup {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "duplicate item id %q", id)
		}
		d.byID[id] = n
		d.elements = append(d.elements, autofilter.Element{ID: id, Tags: htmlquery.SelectAttr(n, attrTags)})
	}
	return d, nil
}

func queryAll(root *html.Node, selector string) ([]*html.Node, error) {
	x, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	nodes, err := htmlquery.QueryAll(root, x)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSelector, err, "query %q", selector)
	}
	return nodes, nil
}

func queryOne(root *html.Node, selector string) (*html.Node, error) {
	x, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	n, err := htmlquery.Query(root, x)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSelector, err, "query %q", selector)
	}
	return n, nil
}

// Elements returns the items in document order.
func (d *Document) Elements() []autofilter.Element {
	return append([]autofilter.Element(nil), d.elements...)
}

// Buttons returns the filter values of every filter button in document
// order.
func (d *Document) Buttons() []string {
	out := make([]string, len(d.buttons))
	for i, b := range d.buttons {
		out[i] = htmlquery.SelectAttr(b, attrFilter)
	}
	return out
}

// Inputs returns the number of text filter inputs.
func (d *Document) Inputs() int { return len(d.inputs) }

// HasContainer reports whether the container selector matched.
func (d *Document) HasContainer() bool { return d.container != nil }

// SetWidth overrides the container width and notifies subscribers.
func (d *Document) SetWidth(w float64) {
	d.mu.Lock()
	d.width, d.widthSet = w, true
	keys := make([]int, 0, len(d.subs))
	for k := range d.subs {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	subs := make([]func(), len(keys))
	for i, k := range keys {
		subs[i] = d.subs[k]
	}
	d.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Subscribe implements autofilter.ResizeSource.
func (d *Document) Subscribe(fn func()) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subs, id)
	}
}

// ContainerWidth implements autofilter.Measurer. The width comes from
// SetWidth, else from the container's data-width attribute.
func (d *Document) ContainerWidth() (float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.container == nil {
		return 0, false
	}
	if d.widthSet {
		return d.width, true
	}
	return number(htmlquery.SelectAttr(d.container, attrWidth)), true
}

// ItemHeight implements autofilter.Measurer.
func (d *Document) ItemHeight(id string) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.byID[id]
	if !ok {
		return 0
	}
	return number(htmlquery.SelectAttr(n, attrHeight))
}

// SetHidden implements autofilter.Sink. Hidden items shrink in place.
func (d *Document) SetHidden(id string, hidden bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.byID[id]
	if !ok {
		return
	}
	st := parseStyle(attr(n, "style"))
	st.set("transition-delay", "0ms")
	if hidden {
		addClass(n, d.cfg.HiddenClass)
		st.set("transform", "scale(0.8)")
	} else {
		removeClass(n, d.cfg.HiddenClass)
	}
	setAttr(n, "style", st.String())
}

// Place implements autofilter.Sink.
func (d *Document) Place(id string, b layout.Block) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.byID[id]
	if !ok {
		return
	}
	st := parseStyle(attr(n, "style"))
	st.set("width", px(b.Width()))
	st.set("transform", fmt.Sprintf("translate3d(%s, %s, 0)", px(b.X()), px(b.Y())))
	st.set("transition", d.transition())
	setAttr(n, "style", st.String())
}

func (d *Document) transition() string {
	dur := strconv.Itoa(d.cfg.Animation.DurationMs) + "ms"
	return fmt.Sprintf("transform %s %s, opacity %s %s", dur, d.cfg.Animation.Easing, dur, d.cfg.Animation.Easing)
}

// ClearItem implements autofilter.Sink.
func (d *Document) ClearItem(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.byID[id]
	if !ok {
		return
	}
	st := parseStyle(attr(n, "style"))
	st.del("width")
	st.del("transform")
	removeClass(n, d.cfg.HiddenClass)
	setAttr(n, "style", st.String())
}

// SetContainerHeight implements autofilter.Sink.
func (d *Document) SetContainerHeight(h float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.container == nil {
		return
	}
	st := parseStyle(attr(d.container, "style"))
	st.set("height", px(h))
	setAttr(d.container, "style", st.String())
}

// ClearContainer implements autofilter.Sink.
func (d *Document) ClearContainer() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.container == nil {
		return
	}
	st := parseStyle(attr(d.container, "style"))
	st.del("height")
	setAttr(d.container, "style", st.String())
}

// SetActiveButton implements autofilter.Sink.
func (d *Document) SetActiveButton(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range d.buttons {
		if htmlquery.SelectAttr(b, attrFilter) == value {
			addClass(b, d.cfg.ActiveButtonClass)
		} else {
			removeClass(b, d.cfg.ActiveButtonClass)
		}
	}
}

// Render writes the document.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// Node returns the element of an item, for inspection.
func (d *Document) Node(id string) (*html.Node, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.byID[id]
	return n, ok
}

func number(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
