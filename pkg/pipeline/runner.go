package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/autofilter/pkg/autofilter"
	"github.com/matzehuels/autofilter/pkg/cache"
	"github.com/matzehuels/autofilter/pkg/host"
	"github.com/matzehuels/autofilter/pkg/nav"
	"github.com/matzehuels/autofilter/pkg/observability"
	"github.com/matzehuels/autofilter/pkg/render"
)

const summaryFormat = "summary"

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner serves concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching; a nil keyer
// means cache.DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs load, filter and render, serving from the cache when every
// requested artifact is present.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	keys := r.keys(opts)
	if !opts.Refresh {
		if res, ok := r.fromCache(ctx, opts, keys); ok {
			r.Logger.Debug("served from cache", "formats", opts.Formats)
			return res, nil
		}
	}

	res, err := r.run(ctx, opts)
	if err != nil {
		return nil, err
	}
	r.store(ctx, opts, keys, res)
	return res, nil
}

// keys returns the cache key for every format plus the summary.
func (r *Runner) keys(opts Options) map[string]string {
	manifestHash := cache.Hash(opts.Manifest.Digest())
	cfgData, _ := json.Marshal(opts.Config)
	base := cache.RenderKeyOpts{
		Width:      opts.Width,
		Filter:     opts.Filter,
		Query:      opts.Query,
		ConfigHash: cache.Hash(append(cfgData, opts.URL...)),
		Legend:     opts.Legend,
		Hidden:     opts.ShowHidden,
	}
	out := make(map[string]string, len(opts.Formats)+1)
	for _, f := range append([]string{summaryFormat}, opts.Formats...) {
		k := base
		k.Format = f
		out[f] = r.Keyer.RenderKey(manifestHash, k)
	}
	return out
}

func (r *Runner) fromCache(ctx context.Context, opts Options, keys map[string]string) (*Result, bool) {
	hooks := observability.Cache()
	res := &Result{Artifacts: make(map[string][]byte), CacheHit: true}

	for f, key := range keys {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
			return nil, false
		}
		if !hit {
			hooks.OnCacheMiss(ctx, "render")
			return nil, false
		}
		hooks.OnCacheHit(ctx, "render")
		if f == summaryFormat {
			if err := json.Unmarshal(data, &res.Summary); err != nil {
				return nil, false
			}
			continue
		}
		res.Artifacts[f] = data
	}
	return res, true
}

func (r *Runner) store(ctx context.Context, opts Options, keys map[string]string, res *Result) {
	hooks := observability.Cache()
	put := func(key string, data []byte) {
		if err := r.Cache.Set(ctx, key, data, opts.TTL); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
			return
		}
		hooks.OnCacheSet(ctx, "render", len(data))
	}

	summary, err := json.Marshal(res.Summary)
	if err != nil {
		return
	}
	put(keys[summaryFormat], summary)
	for f, data := range res.Artifacts {
		put(keys[f], data)
	}
}

func (r *Runner) run(ctx context.Context, opts Options) (*Result, error) {
	m := opts.Manifest
	u, err := nav.Parse(opts.URL)
	if err != nil {
		return nil, err
	}

	layoutStart := time.Now()
	h := host.NewMemoryAt(opts.Width, u)
	m.Populate(h)

	c, err := autofilter.New(opts.Config, h, m.Elements(),
		autofilter.WithLogger(opts.Logger),
		autofilter.WithContext(ctx),
		autofilter.WithFrames(autofilter.SyncFrames{}),
	)
	if err != nil {
		return nil, fmt.Errorf("build wall: %w", err)
	}
	defer c.Destroy()

	if opts.Filter != "" {
		c.Click(opts.Filter)
	}
	if opts.Query != "" {
		c.Input(opts.Query)
		c.Flush()
	}

	active, _ := c.ActiveFilter()
	snap := h.Snapshot()
	wall := render.NewWall(snap, c.Layout(), m)
	visible := c.VisibleCount()

	res := &Result{
		Wall:      wall,
		Artifacts: make(map[string][]byte, len(opts.Formats)),
		Summary: Summary{
			Matched: c.Matched(),
			Filter:  active,
			URL:     snap.URL,
			Visible: visible,
			Total:   len(m.Items),
			Columns: wall.Columns,
		},
	}
	res.Stats.LayoutTime = time.Since(layoutStart)

	r.Logger.Info("computed layout",
		"items", len(m.Items),
		"visible", visible,
		"columns", wall.Columns,
		"duration", res.Stats.LayoutTime)

	renderStart := time.Now()
	for _, f := range opts.Formats {
		switch f {
		case FormatSVG:
			res.Artifacts[f] = render.SVG(wall, opts.svgOptions()...)
		case FormatJSON:
			data, err := render.JSON(wall)
			if err != nil {
				return nil, fmt.Errorf("render json: %w", err)
			}
			res.Artifacts[f] = data
		}
	}
	res.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", res.Stats.RenderTime)

	return res, nil
}
