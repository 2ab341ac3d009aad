package tessera

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"
)

// handle is the shared representation of resource handles: slot index plus
// the generation the slot had when the handle was issued. Generation 0 is
// never issued, so the zero handle is "none".
type handle struct {
	index      uint32
	generation uint32
}

// TextureHandle is a weak reference to a texture owned by a ResourceManager.
type TextureHandle handle

// FontHandle is a weak reference to a font owned by a ResourceManager.
type FontHandle handle

// IsZero reports whether h is the "no texture" handle.
func (h TextureHandle) IsZero() bool { return h.generation == 0 }

// IsZero reports whether h is the "no font" handle.
func (h FontHandle) IsZero() bool { return h.generation == 0 }

type slot[T any] struct {
	value      *T
	name       string
	generation uint32
}

// handleTable stores resources by slot and recycles freed slots. Releasing
// a slot bumps its generation so outstanding handles stop resolving.
type handleTable[T any] struct {
	slots  []slot[T]
	free   []uint32
	byName map[string]handle
}

func (t *handleTable[T]) insert(name string, v *T) handle {
	if t.byName == nil {
		t.byName = make(map[string]handle)
	}
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot[T]{generation: 1})
	}
	t.slots[idx].value = v
	t.slots[idx].name = name
	h := handle{index: idx, generation: t.slots[idx].generation}
	t.byName[name] = h
	return h
}

func (t *handleTable[T]) resolve(h handle) (*T, bool) {
	if h.generation == 0 || int(h.index) >= len(t.slots) {
		return nil, false
	}
	s := &t.slots[h.index]
	if s.generation != h.generation || s.value == nil {
		return nil, false
	}
	return s.value, true
}

func (t *handleTable[T]) lookup(name string) (handle, bool) {
	h, ok := t.byName[name]
	return h, ok
}

func (t *handleTable[T]) release(h handle) (*T, bool) {
	v, ok := t.resolve(h)
	if !ok {
		return nil, false
	}
	s := &t.slots[h.index]
	delete(t.byName, s.name)
	s.value = nil
	s.name = ""
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	t.free = append(t.free, h.index)
	return v, true
}

func (t *handleTable[T]) live() []handle {
	out := make([]handle, 0, len(t.byName))
	for i := range t.slots {
		if t.slots[i].value != nil {
			out = append(out, handle{index: uint32(i), generation: t.slots[i].generation})
		}
	}
	return out
}

// Texture is a loaded image. Image may be nil for headless managers, in
// which case Width and Height still describe the source dimensions if known.
type Texture struct {
	Name   string
	Path   string
	Image  *ebiten.Image
	Width  int
	Height int
}

// ImageLoader decodes an image file.
type ImageLoader func(path string) (*ebiten.Image, error)

// ResourceOption configures a ResourceManager.
type ResourceOption func(*ResourceManager)

// WithImageLoader replaces the default ebitenutil file loader.
func WithImageLoader(load ImageLoader) ResourceOption {
	return func(m *ResourceManager) { m.loadImage = load }
}

// WithResourceLogger sets the logger for load and release messages.
func WithResourceLogger(log *zap.Logger) ResourceOption {
	return func(m *ResourceManager) {
		if log != nil {
			m.log = log
		}
	}
}

// ResourceManager owns textures and fonts and hands out weak handles to
// them. Create one per game and pass it to the renderer and map decoder.
type ResourceManager struct {
	textures  handleTable[Texture]
	fonts     handleTable[Font]
	loadImage ImageLoader
	log       *zap.Logger
}

// NewResourceManager creates an empty manager.
func NewResourceManager(opts ...ResourceOption) *ResourceManager {
	m := &ResourceManager{
		loadImage: loadImageFile,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func loadImageFile(path string) (*ebiten.Image, error) {
	img, _, err := ebitenutil.NewImageFromFile(path)
	return img, err
}

// LoadTexture loads the image at path under name. Loading a name that is
// already present returns the existing handle without touching the disk.
func (m *ResourceManager) LoadTexture(path, name string) (TextureHandle, error) {
	if h, ok := m.textures.lookup(name); ok {
		return TextureHandle(h), nil
	}
	img, err := m.loadImage(path)
	if err != nil {
		return TextureHandle{}, fmt.Errorf("tessera: load texture %q from %s: %w", name, path, err)
	}
	tex := &Texture{Name: name, Path: path, Image: img}
	if img != nil {
		b := img.Bounds()
		tex.Width, tex.Height = b.Dx(), b.Dy()
	}
	h := TextureHandle(m.textures.insert(name, tex))
	m.log.Debug("texture loaded",
		zap.String("name", name), zap.String("path", path),
		zap.Int("width", tex.Width), zap.Int("height", tex.Height))
	return h, nil
}

// AddTexture registers an already-decoded image under name, replacing any
// texture of the same name. img may be nil.
func (m *ResourceManager) AddTexture(name string, img *ebiten.Image) TextureHandle {
	if h, ok := m.textures.lookup(name); ok {
		m.textures.release(h)
	}
	tex := &Texture{Name: name, Image: img}
	if img != nil {
		b := img.Bounds()
		tex.Width, tex.Height = b.Dx(), b.Dy()
	}
	return TextureHandle(m.textures.insert(name, tex))
}

// Texture returns the handle registered under name.
func (m *ResourceManager) Texture(name string) (TextureHandle, bool) {
	h, ok := m.textures.lookup(name)
	return TextureHandle(h), ok
}

// HasTexture reports whether a texture is registered under name.
func (m *ResourceManager) HasTexture(name string) bool {
	_, ok := m.textures.lookup(name)
	return ok
}

// ResolveTexture returns the texture h refers to, or false if it has been
// released.
func (m *ResourceManager) ResolveTexture(h TextureHandle) (*Texture, bool) {
	return m.textures.resolve(handle(h))
}

// ReleaseTexture frees the texture. Outstanding handles stop resolving.
func (m *ResourceManager) ReleaseTexture(h TextureHandle) {
	tex, ok := m.textures.release(handle(h))
	if !ok {
		return
	}
	if tex.Image != nil {
		tex.Image.Deallocate()
	}
	m.log.Debug("texture released", zap.String("name", tex.Name))
}

// LoadFont loads glyph metrics from path and binds them to the texture
// named texture. Files ending in .fnt are parsed as BMFont text; anything
// else as the JSON character map.
func (m *ResourceManager) LoadFont(path, texture, name string) (FontHandle, error) {
	if h, ok := m.fonts.lookup(name); ok {
		return FontHandle(h), nil
	}
	tex, ok := m.Texture(texture)
	if !ok {
		return FontHandle{}, fmt.Errorf("tessera: load font %q: texture %q not loaded", name, texture)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return FontHandle{}, fmt.Errorf("tessera: load font %q: %w", name, err)
	}
	var font *Font
	if strings.EqualFold(filepath.Ext(path), ".fnt") {
		font, err = ParseFontFNT(data)
	} else {
		font, err = ParseFontJSON(data)
	}
	if err != nil {
		return FontHandle{}, fmt.Errorf("tessera: load font %q from %s: %w", name, path, err)
	}
	font.Name = name
	font.Texture = tex
	h := FontHandle(m.fonts.insert(name, font))
	m.log.Debug("font loaded", zap.String("name", name), zap.Int("glyphs", len(font.glyphs)))
	return h, nil
}

// AddFont registers a parsed font under name, replacing any font of the
// same name.
func (m *ResourceManager) AddFont(name string, font *Font) FontHandle {
	if h, ok := m.fonts.lookup(name); ok {
		m.fonts.release(h)
	}
	font.Name = name
	return FontHandle(m.fonts.insert(name, font))
}

// Font returns the handle registered under name.
func (m *ResourceManager) Font(name string) (FontHandle, bool) {
	h, ok := m.fonts.lookup(name)
	return FontHandle(h), ok
}

// HasFont reports whether a font is registered under name.
func (m *ResourceManager) HasFont(name string) bool {
	_, ok := m.fonts.lookup(name)
	return ok
}

// ResolveFont returns the font h refers to, or false if it has been released.
func (m *ResourceManager) ResolveFont(h FontHandle) (*Font, bool) {
	return m.fonts.resolve(handle(h))
}

// ReleaseFont frees the font. Its texture is left alone.
func (m *ResourceManager) ReleaseFont(h FontHandle) {
	m.fonts.release(handle(h))
}

// ReleaseAll frees every font and texture.
func (m *ResourceManager) ReleaseAll() {
	for _, h := range m.fonts.live() {
		m.ReleaseFont(FontHandle(h))
	}
	for _, h := range m.textures.live() {
		m.ReleaseTexture(TextureHandle(h))
	}
}
