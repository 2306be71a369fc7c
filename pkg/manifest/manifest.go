// Package manifest reads and writes item lists for walls that do not come
// from an HTML page.
//
// A manifest is TOML or JSON:
//
//	title = "Portfolio"
//	width = 1000
//
//	[[items]]
//	id = "p1"
//	label = "Brand refresh"
//	tags = "design, print"
//	height = 240
//
// Items keep file order, which is the layout order. Items without an id get
// "item-<n>" (1-based). Tags are the raw comma-separated attribute; parsing
// happens in the controller.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/autofilter/pkg/autofilter"
	"github.com/matzehuels/autofilter/pkg/errors"
	"github.com/matzehuels/autofilter/pkg/host"
)

// Format is a manifest encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Manifest is a wall description.
type Manifest struct {
	Title string  `toml:"title,omitempty" json:"title,omitempty"`
	Width float64 `toml:"width,omitempty" json:"width,omitempty"`
	Items []Item  `toml:"items" json:"items"`
}

// Item is one wall entry.
type Item struct {
	ID     string  `toml:"id" json:"id"`
	Label  string  `toml:"label,omitempty" json:"label,omitempty"`
	Tags   string  `toml:"tags,omitempty" json:"tags,omitempty"`
	Height float64 `toml:"height" json:"height"`
	Color  string  `toml:"color,omitempty" json:"color,omitempty"`
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest extension %q (want .toml or .json)", filepath.Ext(path))
	}
}

// Decode reads a manifest from r and normalizes it.
func Decode(r io.Reader, format Format) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode toml")
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode json")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest format %q", format)
	}
	if err := m.normalize(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads the manifest at path. The format follows the extension.
func Load(path string) (*Manifest, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Encode writes m in the given format.
func (m *Manifest) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(m)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest format %q", format)
	}
}

// Digest returns the canonical JSON encoding, used as a cache key input.
func (m *Manifest) Digest() []byte {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(m)
	return buf.Bytes()
}

func (m *Manifest) normalize() error {
	seen := make(map[string]bool, len(m.Items))
	for i := range m.Items {
		it := &m.Items[i]
		if it.ID == "" {
			it.ID = fmt.Sprintf("item-%d", i+1)
		}
		if err := errors.ValidateItemID(it.ID); err != nil {
			return err
		}
		if seen[it.ID] {
			return errors.New(errors.ErrCodeInvalidManifest, "duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
		if it.Height < 0 {
			return errors.New(errors.ErrCodeInvalidManifest, "item %q: height must be >= 0, got %v", it.ID, it.Height)
		}
	}
	if m.Width < 0 {
		return errors.New(errors.ErrCodeInvalidManifest, "width must be >= 0, got %v", m.Width)
	}
	return nil
}

// Elements returns the controller view of the items.
func (m *Manifest) Elements() []autofilter.Element {
	out := make([]autofilter.Element, len(m.Items))
	for i, it := range m.Items {
		out[i] = autofilter.Element{ID: it.ID, Tags: it.Tags}
	}
	return out
}

// Item returns the item with id.
func (m *Manifest) Item(id string) (Item, bool) {
	for _, it := range m.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Populate registers every item and its height with a memory host.
func (m *Manifest) Populate(h *host.Memory) {
	for _, it := range m.Items {
		h.Add(it.ID, it.Height)
	}
}
