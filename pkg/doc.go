// Package pkg provides the libraries behind autofilter: a masonry layout
// with tag filtering for walls of cards.
//
// # Overview
//
// A wall is a container of items, each tagged with a comma-separated list.
// Filter controls (buttons and a text input) hide items whose tags do not
// match; the visible items are packed into the shortest column of a grid
// whose column count follows width breakpoints. The pkg directory is
// organized into four areas:
//
//  1. Domain: [layout], [filter], [debounce] and the [autofilter] controller
//  2. Hosts: [host] (in memory), [dom] (HTML documents), [nav] (URL state)
//  3. Outputs: [manifest] input, [render] SVG/JSON, [pipeline] orchestration
//  4. Infrastructure: [config], [errors], [cache], [observability],
//     [server], [httputil], [buildinfo]
//
// # Architecture
//
// The controller never touches a page directly. It talks to a Host that
// measures, paints and stores the URL:
//
//	filter event (button, input, URL, resize)
//	         ↓
//	[filter] decides visibility
//	         ↓
//	host.SetHidden, one frame later
//	         ↓
//	[layout] computes blocks → host.Place, host.SetContainerHeight
//
// The same controller drives an HTML document ([dom]), an in-memory wall
// rendered to SVG ([pipeline], [server]) and the terminal browser in the
// CLI.
//
// # Quick Start
//
//	cfg := config.Default()
//	cfg.URLSearchParam = "tag"
//
//	h := host.NewMemory(1000)
//	m.Populate(h)
//	c, err := autofilter.New(cfg, h, m.Elements())
//	if err != nil {
//	    return err
//	}
//	defer c.Destroy()
//
//	c.Click("web")
//	h.Flush()
//	fmt.Println(c.VisibleCount(), c.Layout().Columns)
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/layout
// [filter]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/filter
// [debounce]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/debounce
// [autofilter]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/autofilter
// [host]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/host
// [dom]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/dom
// [nav]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/nav
// [manifest]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/manifest
// [render]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/errors
// [cache]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/observability
// [server]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/server
// [httputil]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/httputil
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/autofilter/pkg/buildinfo
package pkg
