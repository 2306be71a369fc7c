// Package server serves rendered walls over HTTP.
//
// Every request runs the wall pipeline against the current manifest: the
// request URL is the navigation store, so a configured url_search_param in
// the query string becomes the initial filter, exactly as on a page load.
//
//	GET /wall.svg?tag=web&width=1280
//	GET /wall.json?q=java
//	GET /tags
//	GET /healthz
//
// Query parameters:
//
//   - filter: button filter token, applied after the initial load
//   - q: text input token (min_chars and sub_string apply)
//   - width: container width; defaults to the manifest width
//   - legend, hidden: SVG render flags
//
// The URL after filtering is returned in Content-Location. Identical
// concurrent requests share one render.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/autofilter/pkg/buildinfo"
	"github.com/matzehuels/autofilter/pkg/config"
	"github.com/matzehuels/autofilter/pkg/errors"
	"github.com/matzehuels/autofilter/pkg/filter"
	"github.com/matzehuels/autofilter/pkg/httputil"
	"github.com/matzehuels/autofilter/pkg/manifest"
	"github.com/matzehuels/autofilter/pkg/pipeline"
)

const shutdownTimeout = 5 * time.Second

// Response headers describing the filter outcome.
const (
	HeaderMatched = "X-Autofilter-Matched"
	HeaderVisible = "X-Autofilter-Visible"
	HeaderCache   = "X-Autofilter-Cache"
)

// Server renders walls for HTTP clients. It is safe for concurrent use.
type Server struct {
	runner *pipeline.Runner
	cfg    config.Options
	logger *log.Logger

	manifest atomic.Pointer[manifest.Manifest]
	group    singleflight.Group
}

// New creates a server. m may be nil until [Server.SetManifest] is called;
// wall requests fail with 404 meanwhile.
func New(runner *pipeline.Runner, cfg config.Options, m *manifest.Manifest, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{runner: runner, cfg: cfg, logger: logger}
	if m != nil {
		s.manifest.Store(m)
	}
	return s
}

// SetManifest swaps the manifest served by later requests.
func (s *Server) SetManifest(m *manifest.Manifest) {
	s.manifest.Store(m)
	s.logger.Info("manifest loaded", "items", len(m.Items), "title", m.Title)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.SetHeader("Server", buildinfo.UserAgent()))
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/tags", s.handleTags)
	r.Get("/wall.svg", s.handleWall(pipeline.FormatSVG, "image/svg+xml"))
	r.Get("/wall.json", s.handleWall(pipeline.FormatJSON, "application/json; charset=utf-8"))
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	items := 0
	if m := s.manifest.Load(); m != nil {
		items = len(m.Items)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": buildinfo.Version,
		"items":   items,
	})
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	m := s.manifest.Load()
	if m == nil {
		httputil.WriteError(w, s.logger, errNoManifest)
		return
	}
	items := make([]filter.Item, len(m.Items))
	for i, it := range m.Items {
		items[i] = filter.ParseTags(it.Tags, s.cfg.CaseSensitive)
	}
	tags := filter.Distinct(items)
	if tags == nil {
		tags = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

var errNoManifest = errors.New(errors.ErrCodeNotFound, "no manifest loaded")

func (s *Server) handleWall(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := s.manifest.Load()
		if m == nil {
			httputil.WriteError(w, s.logger, errNoManifest)
			return
		}
		opts, err := s.requestOptions(r, m, format)
		if err != nil {
			httputil.WriteError(w, s.logger, err)
			return
		}

		key := fmt.Sprintf("%s|%p|%s", format, m, r.URL.RequestURI())
		v, err, shared := s.group.Do(key, func() (any, error) {
			return s.runner.Execute(context.WithoutCancel(r.Context()), opts)
		})
		if err != nil {
			httputil.WriteError(w, s.logger, err)
			return
		}
		res := v.(*pipeline.Result)
		if shared {
			s.logger.Debug("shared render", "key", key)
		}

		h := w.Header()
		h.Set("Content-Location", res.Summary.URL)
		h.Set(HeaderMatched, strconv.FormatBool(res.Summary.Matched))
		h.Set(HeaderVisible, strconv.Itoa(res.Summary.Visible))
		if res.CacheHit {
			h.Set(HeaderCache, "hit")
		} else {
			h.Set(HeaderCache, "miss")
		}
		httputil.Serve(w, r, contentType, res.Artifacts[format])
	}
}

func (s *Server) requestOptions(r *http.Request, m *manifest.Manifest, format string) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Manifest: m,
		Config:   s.cfg,
		URL:      r.URL.RequestURI(),
		Filter:   q.Get("filter"),
		Query:    q.Get("q"),
		Formats:  []string{format},
		Logger:   s.logger,
	}

	if raw := q.Get("width"); raw != "" {
		w, err := strconv.ParseFloat(raw, 64)
		if err != nil || w <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "width must be a positive number, got %q", raw)
		}
		opts.Width = w
	}

	var err error
	if opts.Legend, err = boolParam(q.Get("legend")); err != nil {
		return opts, err
	}
	if opts.ShowHidden, err = boolParam(q.Get("hidden")); err != nil {
		return opts, err
	}
	return opts, nil
}

func boolParam(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "invalid boolean %q", raw)
	}
	return b, nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
