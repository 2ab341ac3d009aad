package tessera

import (
	"image"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// CommandType identifies the kind of a DrawCommand.
type CommandType uint8

const (
	CommandQuad  CommandType = iota // textured (or untextured) sprite quad
	CommandLines                    // debug line strip
	CommandGlyph                    // one character of text
)

// DrawCommand is one backend-neutral draw produced by Render. Quads and
// glyphs map the unit square through Projection * Model; lines are world
// points mapped through Projection.
type DrawCommand struct {
	Type       CommandType
	Entity     Entity
	Model      mgl64.Mat4
	Projection mgl64.Mat4
	Color      Color

	// Texture is nil when the sprite has no texture or its handle expired.
	Texture *Texture
	Frame   AtlasFrame
	// Source is the texel rectangle sampled for quads and glyphs.
	Source image.Rectangle

	// Points is a line strip in world space (CommandLines).
	Points []mgl64.Vec2
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithDebug enables per-frame stats logging.
func WithDebug(enabled bool) RendererOption {
	return func(r *Renderer) { r.debug = enabled }
}

// WithRendererLogger sets the renderer logger. Defaults to the scene's.
func WithRendererLogger(log *zap.Logger) RendererOption {
	return func(r *Renderer) {
		if log != nil {
			r.log = log
		}
	}
}

// Renderer turns the scene into draw commands each frame. Rendering only
// reads the store; it never mutates components.
type Renderer struct {
	scene     *Scene
	resources *ResourceManager
	log       *zap.Logger

	// ShowColliders draws every BoxCollider, not just those with DrawDebug.
	ShowColliders bool
	// CullEnabled skips quads whose bounds miss the camera's visible area.
	CullEnabled bool

	debug    bool
	commands []DrawCommand
	glyphs   []GlyphQuad
	warned   map[Entity]struct{}
	stats    debugStats

	batchVerts []ebiten.Vertex
	batchInds  []uint32
	batchImage *ebiten.Image
}

// NewRenderer creates a renderer for scene drawing textures and fonts from
// resources.
func NewRenderer(scene *Scene, resources *ResourceManager, opts ...RendererOption) *Renderer {
	r := &Renderer{
		scene:     scene,
		resources: resources,
		log:       scene.Logger(),
		warned:    make(map[Entity]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetDebug toggles per-frame stats logging.
func (r *Renderer) SetDebug(enabled bool) { r.debug = enabled }

// Commands returns the commands built by the last Render call.
func (r *Renderer) Commands() []DrawCommand { return r.commands }

// Render builds the draw commands for the current scene state as seen by
// cam. The returned slice is reused by the next call.
func (r *Renderer) Render(cam *Camera) []DrawCommand {
	start := time.Now()
	r.commands = r.commands[:0]
	r.stats = debugStats{}

	proj := cam.Projection()
	visible := cam.VisibleBounds()
	colliders := lookupPool[BoxCollider](r.scene)
	r.pruneWarned()

	for e, ref := range View2[Transform, SpriteRenderer](r.scene) {
		t, sr := ref.First, ref.Second
		model := SpriteTransform(*t, *sr)
		if r.CullEnabled && !worldAABB(model).Intersects(visible) {
			r.stats.culled++
			continue
		}
		cmd := DrawCommand{
			Type:       CommandQuad,
			Entity:     e,
			Model:      model,
			Projection: proj,
			Color:      sr.Tint,
			Frame:      r.frameFor(e),
		}
		if tex, ok := r.resources.ResolveTexture(sr.Texture); ok && tex.Image != nil {
			cmd.Texture = tex
			x0, y0, x1, y1 := cmd.Frame.Region(tex.Width, tex.Height)
			cmd.Source = image.Rect(x0, y0, x1, y1)
		} else if !sr.Texture.IsZero() {
			r.stats.untextured++
		}
		r.commands = append(r.commands, cmd)
		r.stats.quads++

		if colliders == nil {
			continue
		}
		if bc := colliders.get(e); bc != nil && (bc.DrawDebug || r.ShowColliders) {
			r.commands = append(r.commands, DrawCommand{
				Type:       CommandLines,
				Entity:     e,
				Model:      mgl64.Ident4(),
				Projection: proj,
				Color:      ColorGreen,
				Points:     colliderLoop(*t, *bc),
			})
			r.stats.lines++
		}
	}

	for e, ref := range View2[Transform, FontRenderer](r.scene) {
		r.emitText(e, ref.First, ref.Second, proj)
	}

	r.stats.buildTime = time.Since(start)
	r.stats.commands = len(r.commands)
	return r.commands
}

// colliderLoop returns the closed outline of a collider in world space:
// five points, the last repeating the first.
func colliderLoop(t Transform, bc BoxCollider) []mgl64.Vec2 {
	origin := mgl64.Vec2{
		t.Position.X() + t.Size.X()*t.Pivot.X() + bc.Position.X(),
		t.Position.Y() + t.Size.Y()*t.Pivot.Y() + bc.Position.Y(),
	}
	hw := t.Size.X() * bc.Size.X() / 2
	hh := t.Size.Y() * bc.Size.Y() / 2
	return []mgl64.Vec2{
		{origin.X() - hw, origin.Y() - hh},
		{origin.X() + hw, origin.Y() - hh},
		{origin.X() + hw, origin.Y() + hh},
		{origin.X() - hw, origin.Y() + hh},
		{origin.X() - hw, origin.Y() - hh},
	}
}

// pruneWarned forgets destroyed entities so a recycled slot warns afresh.
func (r *Renderer) pruneWarned() {
	for e := range r.warned {
		if !r.scene.Alive(e) {
			delete(r.warned, e)
		}
	}
}

// frameFor selects e's atlas frame at the scene's current time. A clamped
// tile index is warned about once per entity.
func (r *Renderer) frameFor(e Entity) AtlasFrame {
	p := lookupPool[FrameSource](r.scene)
	if p == nil {
		return WholeTexture
	}
	src := p.get(e)
	if src == nil || *src == nil {
		return WholeTexture
	}
	var elapsed time.Duration
	if fb, ok := (*src).(Flipbook); ok {
		elapsed = fb.Elapsed(r.scene.Now())
	}
	frame, clamped := SelectFrame(*src, elapsed)
	if clamped {
		if _, seen := r.warned[e]; !seen {
			r.warned[e] = struct{}{}
			r.log.Warn("tile index out of range; clamped",
				zap.Stringer("entity", e),
				zap.Int("index", (*src).(TileFrame).Index),
				zap.Int("clampedTo", frame.Index))
		}
	}
	return frame
}

// emitText lays out a FontRenderer and appends one glyph command per
// drawable character.
func (r *Renderer) emitText(e Entity, t *Transform, fr *FontRenderer, proj mgl64.Mat4) {
	font, ok := r.resources.ResolveFont(fr.Font)
	if !ok {
		r.stats.untextured++
		return
	}
	tex, ok := r.resources.ResolveTexture(font.Texture)
	if !ok || tex.Image == nil {
		r.stats.untextured++
		return
	}
	var missing int
	r.glyphs, missing = font.Layout(fr.Text, fr.Size, t.Position, r.glyphs[:0])
	if missing > 0 {
		r.log.Debug("text has characters without glyphs",
			zap.Stringer("entity", e), zap.String("font", font.Name), zap.Int("missing", missing))
	}
	for _, g := range r.glyphs {
		r.commands = append(r.commands, DrawCommand{
			Type:       CommandGlyph,
			Entity:     e,
			Model:      mgl64.Translate3D(g.Position.X(), g.Position.Y(), 0).Mul4(mgl64.Scale3D(g.Size.X(), g.Size.Y(), 1)),
			Projection: proj,
			Color:      fr.Color,
			Texture:    tex,
			Frame:      WholeTexture,
			Source:     g.Source,
		})
		r.stats.glyphs++
	}
}
