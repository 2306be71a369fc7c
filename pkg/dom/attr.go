package dom

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// setAttr sets key, removing the attribute when val is empty.
func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key != key {
			continue
		}
		if val == "" {
			n.Attr = slices.Delete(n.Attr, i, i+1)
		} else {
			n.Attr[i].Val = val
		}
		return
	}
	if val != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	}
}

// HasClass reports whether n carries class.
func HasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}

func addClass(n *html.Node, class string) {
	classes := strings.Fields(attr(n, "class"))
	if slices.Contains(classes, class) {
		return
	}
	setAttr(n, "class", strings.Join(append(classes, class), " "))
}

func removeClass(n *html.Node, class string) {
	classes := strings.Fields(attr(n, "class"))
	classes = slices.DeleteFunc(classes, func(c string) bool { return c == class })
	setAttr(n, "class", strings.Join(classes, " "))
}

// style is an ordered inline style declaration list.
type style struct {
	props  []string
	values map[string]string
}

func parseStyle(s string) *style {
	st := &style{values: make(map[string]string)}
	for _, decl := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		st.set(strings.ToLower(strings.TrimSpace(prop)), strings.TrimSpace(val))
	}
	return st
}

func (s *style) set(prop, val string) {
	if _, ok := s.values[prop]; !ok {
		s.props = append(s.props, prop)
	}
	s.values[prop] = val
}

func (s *style) del(prop string) {
	if _, ok := s.values[prop]; !ok {
		return
	}
	delete(s.values, prop)
	s.props = slices.DeleteFunc(s.props, func(p string) bool { return p == prop })
}

func (s *style) get(prop string) string { return s.values[prop] }

func (s *style) String() string {
	parts := make([]string, 0, len(s.props))
	for _, p := range s.props {
		parts = append(parts, p+": "+s.values[p])
	}
	return strings.Join(parts, "; ")
}

// Style returns the value of one inline style property of n.
func Style(n *html.Node, prop string) string {
	return parseStyle(attr(n, "style")).get(prop)
}
