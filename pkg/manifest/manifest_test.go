package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/autofilter/pkg/errors"
	"github.com/matzehuels/autofilter/pkg/host"
)

const sampleTOML = `
title = "Portfolio"
width = 1000

[[items]]
id = "p1"
label = "Brand refresh"
tags = "design, print"
height = 240

[[items]]
label = "Untitled"
height = 120

[[items]]
id = "p3"
tags = "web"
height = 80
`

func TestDecodeTOML(t *testing.T) {
	m, err := Decode(strings.NewReader(sampleTOML), FormatTOML)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if m.Title != "Portfolio" || m.Width != 1000 {
		t.Errorf("header = %q, %v", m.Title, m.Width)
	}
	if len(m.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(m.Items))
	}
	if m.Items[1].ID != "item-2" {
		t.Errorf("generated id = %q, want item-2", m.Items[1].ID)
	}

	els := m.Elements()
	if els[0].ID != "p1" || els[0].Tags != "design, print" {
		t.Errorf("Elements()[0] = %+v", els[0])
	}
	if els[1].Tags != "" {
		t.Errorf("untagged item got tags %q", els[1].Tags)
	}
}

func TestDecodeJSON(t *testing.T) {
	in := `{"items": [{"id": "a", "tags": "x", "height": 10}, {"height": 20}]}`
	m, err := Decode(strings.NewReader(in), FormatJSON)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if it, ok := m.Item("item-2"); !ok || it.Height != 20 {
		t.Errorf("Item(item-2) = %+v, %v", it, ok)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		format Format
		code   errors.Code
	}{
		{"duplicate id", `{"items": [{"id": "a"}, {"id": "a"}]}`, FormatJSON, errors.ErrCodeInvalidManifest},
		{"negative height", `{"items": [{"id": "a", "height": -1}]}`, FormatJSON, errors.ErrCodeInvalidManifest},
		{"negative width", `{"width": -5, "items": []}`, FormatJSON, errors.ErrCodeInvalidManifest},
		{"malformed toml", "[[items]\nid=", FormatTOML, errors.ErrCodeInvalidManifest},
		{"malformed json", "{", FormatJSON, errors.ErrCodeInvalidManifest},
		{"unknown format", "", Format("yaml"), errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("Decode() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wall.toml")
	if err := os.WriteFile(path, []byte(sampleTOML), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(m.Items) != 3 {
		t.Errorf("items = %d", len(m.Items))
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Load(filepath.Join(dir, "wall.yaml")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("extension error = %v, want INVALID_FORMAT", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	m, err := Decode(strings.NewReader(sampleTOML), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}

	for _, format := range []Format{FormatTOML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := m.Encode(&buf, format); err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			back, err := Decode(&buf, format)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if !bytes.Equal(m.Digest(), back.Digest()) {
				t.Errorf("round trip changed manifest:\n%s\n%s", m.Digest(), back.Digest())
			}
		})
	}
}

func TestPopulate(t *testing.T) {
	m, _ := Decode(strings.NewReader(sampleTOML), FormatTOML)
	h := host.NewMemory(m.Width)
	m.Populate(h)

	if got := h.ItemHeight("p1"); got != 240 {
		t.Errorf("ItemHeight(p1) = %v, want 240", got)
	}
	if len(h.Snapshot().Items) != 3 {
		t.Error("Populate should register every item")
	}
}
