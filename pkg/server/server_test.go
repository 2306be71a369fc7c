package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/autofilter/pkg/config"
	"github.com/matzehuels/autofilter/pkg/manifest"
	"github.com/matzehuels/autofilter/pkg/pipeline"
)

const wallJSON = `{
  "title": "Work",
  "width": 1000,
  "items": [
    {"id": "a", "label": "Alpha", "tags": "design, web", "height": 100},
    {"id": "b", "label": "Beta", "tags": "print", "height": 200},
    {"id": "c", "label": "Gamma", "height": 300},
    {"id": "d", "label": "Delta", "tags": "Web, JavaScript", "height": 150}
  ]
}`

func newTestServer(t *testing.T, withManifest bool) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.URLSearchParam = "tag"

	var m *manifest.Manifest
	if withManifest {
		var err error
		m, err = manifest.Decode(strings.NewReader(wallJSON), manifest.FormatJSON)
		if err != nil {
			t.Fatal(err)
		}
	}
	s := New(pipeline.NewRunner(nil, nil, nil), cfg, m, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, true)
	resp := get(t, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Status string `json:"status"`
		Items  int    `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Items != 4 {
		t.Errorf("body = %+v", body)
	}
}

func TestTags(t *testing.T) {
	ts := newTestServer(t, true)
	resp := get(t, ts.URL+"/tags", nil)
	var body struct {
		Tags []string `json:"tags"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	want := []string{"design", "web", "print", "javascript"}
	if strings.Join(body.Tags, ",") != strings.Join(want, ",") {
		t.Errorf("tags = %v, want %v", body.Tags, want)
	}
}

func TestWallJSON(t *testing.T) {
	ts := newTestServer(t, true)

	tests := []struct {
		name         string
		query        string
		wantVisible  string
		wantMatched  string
		wantLocation string
	}{
		{"all", "", "4", "true", "/wall.json"},
		{"url param", "?tag=print", "1", "true", "/wall.json?tag=print"},
		{"button", "?filter=web", "2", "true", "/wall.json?filter=web&tag=web"},
		{"input", "?q=javascript", "1", "true", "/wall.json?q=javascript&tag=javascript"},
		{"no match", "?tag=video", "0", "false", "/wall.json?tag=video"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, ts.URL+"/wall.json"+tt.query, nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if got := resp.Header.Get(HeaderVisible); got != tt.wantVisible {
				t.Errorf("visible = %s, want %s", got, tt.wantVisible)
			}
			if got := resp.Header.Get(HeaderMatched); got != tt.wantMatched {
				t.Errorf("matched = %s, want %s", got, tt.wantMatched)
			}
			if got := resp.Header.Get("Content-Location"); got != tt.wantLocation {
				t.Errorf("Content-Location = %q, want %q", got, tt.wantLocation)
			}
			if !strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
				t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
			}
		})
	}
}

func TestWallSVGWidth(t *testing.T) {
	ts := newTestServer(t, true)
	resp := get(t, ts.URL+"/wall.svg?width=1300&legend=true", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Content-Type") != "image/svg+xml" {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `width="1300"`) {
		t.Errorf("svg not rendered at requested width:\n%.200s", body)
	}
}

func TestWallNotModified(t *testing.T) {
	ts := newTestServer(t, true)
	first := get(t, ts.URL+"/wall.svg?tag=web", nil)
	etag := first.Header.Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}
	second := get(t, ts.URL+"/wall.svg?tag=web", http.Header{"If-None-Match": {etag}})
	if second.StatusCode != http.StatusNotModified {
		t.Errorf("status = %d, want 304", second.StatusCode)
	}
}

func TestWallErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest bool
		path     string
		status   int
	}{
		{"no manifest", false, "/wall.svg", http.StatusNotFound},
		{"bad width", true, "/wall.svg?width=wide", http.StatusBadRequest},
		{"zero width", true, "/wall.svg?width=0", http.StatusBadRequest},
		{"bad flag", true, "/wall.svg?legend=maybe", http.StatusBadRequest},
		{"unknown route", true, "/wall.png", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.manifest)
			resp := get(t, ts.URL+tt.path, nil)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestSetManifest(t *testing.T) {
	s := New(nil, config.Default(), nil, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	if resp := get(t, ts.URL+"/wall.json", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status before load = %d", resp.StatusCode)
	}
	m, err := manifest.Decode(strings.NewReader(wallJSON), manifest.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	s.SetManifest(m)
	if resp := get(t, ts.URL+"/wall.json", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("status after load = %d", resp.StatusCode)
	}
}
