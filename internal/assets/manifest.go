// Package assets loads the YAML asset manifest that lists a game's
// textures, fonts, tilesets and sounds.
package assets

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/phanxgames/tessera"
	"gopkg.in/yaml.v3"
)

// TextureEntry is one texture to load.
type TextureEntry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// FontEntry binds a glyph file to an already-listed texture.
type FontEntry struct {
	Name    string `yaml:"name"`
	Texture string `yaml:"texture"`
	Path    string `yaml:"path"`
}

// TilesetEntry describes the grid of one tileset texture. Order matters:
// entries are matched to a map's tilesets by position.
type TilesetEntry struct {
	Texture string `yaml:"texture"`
	Columns int    `yaml:"columns"`
	Rows    int    `yaml:"rows"`
}

// SoundEntry is one WAV sample.
type SoundEntry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Manifest is the parsed asset list. Relative paths are resolved against
// the manifest's directory.
type Manifest struct {
	Textures []TextureEntry `yaml:"textures"`
	Fonts    []FontEntry    `yaml:"fonts"`
	Tilesets []TilesetEntry `yaml:"tilesets"`
	Sounds   []SoundEntry   `yaml:"sounds"`

	dir string
}

// Load reads the manifest at path.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read asset manifest: %w", err)
	}
	m, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// Parse decodes manifest YAML. Paths stay relative to the working
// directory.
func Parse(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse asset manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	textures := make(map[string]bool, len(m.Textures))
	for i, t := range m.Textures {
		if t.Name == "" || t.Path == "" {
			return fmt.Errorf("texture %d: name and path are required", i)
		}
		if textures[t.Name] {
			return fmt.Errorf("texture %q listed twice", t.Name)
		}
		textures[t.Name] = true
	}
	for _, f := range m.Fonts {
		if !textures[f.Texture] {
			return fmt.Errorf("font %q: unknown texture %q", f.Name, f.Texture)
		}
	}
	for i, ts := range m.Tilesets {
		if !textures[ts.Texture] {
			return fmt.Errorf("tileset %d: unknown texture %q", i, ts.Texture)
		}
		if ts.Columns <= 0 || ts.Rows <= 0 {
			return fmt.Errorf("tileset %d (%s): grid must be positive, got %dx%d", i, ts.Texture, ts.Columns, ts.Rows)
		}
	}
	return nil
}

// Resolve returns p relative to the manifest's directory.
func (m *Manifest) Resolve(p string) string {
	if filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	return filepath.Join(m.dir, p)
}

// Apply loads every texture and font into res and returns the tileset
// inputs in manifest order, ready for a TileMapDecoder.
func (m *Manifest) Apply(res *tessera.ResourceManager) ([]tessera.TilesetInput, error) {
	for _, t := range m.Textures {
		if _, err := res.LoadTexture(m.Resolve(t.Path), t.Name); err != nil {
			return nil, err
		}
	}
	for _, f := range m.Fonts {
		if _, err := res.LoadFont(m.Resolve(f.Path), f.Texture, f.Name); err != nil {
			return nil, err
		}
	}
	inputs := make([]tessera.TilesetInput, 0, len(m.Tilesets))
	for _, ts := range m.Tilesets {
		h, _ := res.Texture(ts.Texture)
		inputs = append(inputs, tessera.TilesetInput{Texture: h, Columns: ts.Columns, Rows: ts.Rows})
	}
	return inputs, nil
}
