package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/autofilter/pkg/cache"
	"github.com/matzehuels/autofilter/pkg/config"
	"github.com/matzehuels/autofilter/pkg/errors"
	"github.com/matzehuels/autofilter/pkg/manifest"
)

const wallJSON = `{
  "title": "Work",
  "width": 1000,
  "items": [
    {"id": "a", "label": "Alpha", "tags": "design, web", "height": 100},
    {"id": "b", "label": "Beta", "tags": "print", "height": 200},
    {"id": "c", "label": "Gamma", "height": 300},
    {"id": "d", "label": "Delta", "tags": "web, javascript", "height": 150}
  ]
}`

func testManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Decode(strings.NewReader(wallJSON), manifest.FormatJSON)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	return m
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "pdf"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Invalid format error = %v, want INVALID_FORMAT", err)
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Manifest: testManifest(t), Config: config.Default()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Width != 1000 {
		t.Errorf("Width = %v, want manifest width 1000", opts.Width)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.TTL != DefaultTTL || opts.URL != "/" || opts.Logger == nil {
		t.Errorf("defaults not applied: %+v", opts)
	}

	bare := Options{Manifest: &manifest.Manifest{}, Config: config.Default()}
	if err := bare.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if bare.Width != DefaultWidth {
		t.Errorf("Width = %v, want %v", bare.Width, DefaultWidth)
	}
}

func TestOptionsInvalid(t *testing.T) {
	badCfg := config.Default()
	badCfg.Layout.Gutter = -1

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no manifest", Options{Config: config.Default()}, errors.ErrCodeInvalidInput},
		{"negative width", Options{Manifest: testManifest(t), Config: config.Default(), Width: -1}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Manifest: testManifest(t), Config: config.Default(), Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad config", Options{Manifest: testManifest(t), Config: badCfg}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil, nil, nil).Execute(context.Background(), tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecuteFilters(t *testing.T) {
	tests := []struct {
		name        string
		filter      string
		query       string
		url         string
		param       string
		wantVisible int
		wantMatched bool
		wantFilter  string
	}{
		{"no filter", "", "", "", "", 4, true, ""},
		{"button", "web", "", "", "", 2, true, "web"},
		{"button no match", "video", "", "", "", 0, false, "video"},
		{"query", "", "javascript", "", "", 1, true, "javascript"},
		{"short query ignored", "", "we", "", "", 4, true, ""},
		{"query no match", "", "audio", "", "", 0, false, "audio"},
		{"short query keeps button outcome", "video", "we", "", "", 0, false, "video"},
		{"url param", "", "", "/work?tag=print", "tag", 1, true, "print"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.URLSearchParam = tt.param

			res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
				Manifest: testManifest(t),
				Config:   cfg,
				Filter:   tt.filter,
				Query:    tt.query,
				URL:      tt.url,
				Formats:  []string{FormatJSON},
			})
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			s := res.Summary
			if s.Visible != tt.wantVisible || s.Matched != tt.wantMatched || s.Filter != tt.wantFilter {
				t.Errorf("Summary = %+v, want visible=%d matched=%v filter=%q",
					s, tt.wantVisible, tt.wantMatched, tt.wantFilter)
			}
			if s.Total != 4 {
				t.Errorf("Total = %d, want 4", s.Total)
			}
			if len(res.Wall.Visible()) != tt.wantVisible {
				t.Errorf("wall visible = %d, want %d", len(res.Wall.Visible()), tt.wantVisible)
			}
		})
	}
}

func TestExecuteURLSync(t *testing.T) {
	cfg := config.Default()
	cfg.URLSearchParam = "tag"

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Manifest: testManifest(t),
		Config:   cfg,
		URL:      "/work",
		Filter:   "design",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.URL != "/work?tag=design" {
		t.Errorf("URL = %q, want /work?tag=design", res.Summary.URL)
	}
}

func TestExecuteArtifacts(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Manifest: testManifest(t),
		Config:   config.Default(),
		Filter:   "web",
		Formats:  []string{FormatSVG, FormatJSON},
		Legend:   true,
	})
	if err != nil {
		t.Fatal(err)
	}

	svg := res.Artifacts[FormatSVG]
	if !bytes.HasPrefix(svg, []byte("<svg")) {
		t.Errorf("svg artifact does not start with <svg: %.40q", svg)
	}
	if !bytes.Contains(svg, []byte("filter: web")) {
		t.Error("legend missing from svg")
	}
	if bytes.Contains(svg, []byte(`id="card-b"`)) {
		t.Error("hidden card b rendered")
	}

	var out struct {
		Columns int    `json:"columns"`
		Filter  string `json:"filter"`
		Visible int    `json:"visible"`
	}
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &out); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if out.Columns != 2 || out.Filter != "web" || out.Visible != 2 {
		t.Errorf("json = %+v, want 2 columns, filter web, 2 visible", out)
	}
}

func TestExecuteCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	opts := Options{
		Manifest: testManifest(t),
		Config:   config.Default(),
		Filter:   "web",
		Formats:  []string{FormatSVG, FormatJSON},
	}
	ctx := context.Background()

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Error("first run should miss")
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Fatal("second run should hit")
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}
	if second.Summary != first.Summary {
		t.Errorf("cached summary = %+v, want %+v", second.Summary, first.Summary)
	}

	other := opts
	other.Filter = "print"
	third, err := r.Execute(ctx, other)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("different filter should miss")
	}

	refresh := opts
	refresh.Refresh = true
	fourth, err := r.Execute(ctx, refresh)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheHit {
		t.Error("refresh should bypass the cache")
	}
}
