package tessera

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Name is the display name every entity is created with.
type Name struct {
	Value string
}

// Tag classifies an entity for game logic.
type Tag uint8

const (
	TagDefault Tag = iota
	TagPlayer
	TagEnemy
)

func (t Tag) String() string {
	switch t {
	case TagPlayer:
		return "Player"
	case TagEnemy:
		return "Enemy"
	default:
		return "Default"
	}
}

// Transform places an entity in world space. Position is the top-left corner
// of the unrotated quad; Pivot is the rotation/flip origin as a fraction of
// Size.
type Transform struct {
	Position mgl64.Vec2
	Rotation float64 // radians
	Size     mgl64.Vec2
	Pivot    mgl64.Vec2
}

// DefaultTransform is the Transform every entity is created with:
// origin position, no rotation, 100x100, centered pivot.
func DefaultTransform() Transform {
	return Transform{
		Size:  mgl64.Vec2{100, 100},
		Pivot: mgl64.Vec2{0.5, 0.5},
	}
}

// SpriteRenderer draws a textured, tinted quad at the entity's Transform.
// The texture is held weakly; a released texture draws untextured.
type SpriteRenderer struct {
	Texture        TextureHandle
	Tint           Color
	FlipHorizontal bool
	FlipVertical   bool
	FlipDiagonal   bool
}

// NewSpriteRenderer returns a white-tinted renderer for tex.
func NewSpriteRenderer(tex TextureHandle) SpriteRenderer {
	return SpriteRenderer{Texture: tex, Tint: ColorWhite}
}

// FrameSource selects which atlas cell a sprite shows. It is a closed set:
// Flipbook or TileFrame. An entity without a FrameSource shows its whole
// texture.
type FrameSource interface {
	frameSource()
}

// Flipbook cycles through Divisions horizontal cells, one every
// FrameDuration, counted from Start on the scene clock. Attach it with
// AttachFrameSource or SetComponent[FrameSource]; storing it as its own kind
// fails with ErrBareFrameSource.
type Flipbook struct {
	Divisions     int
	FrameDuration time.Duration
	Start         time.Duration
}

// TileFrame shows cell Index of an XDivisions by YDivisions atlas grid,
// counted row-major from the top-left. Like Flipbook it is attached only as a
// FrameSource.
type TileFrame struct {
	XDivisions int
	YDivisions int
	Index      int
}

func (Flipbook) frameSource()  {}
func (TileFrame) frameSource() {}

// Elapsed returns the time since the flipbook started, never negative.
func (f Flipbook) Elapsed(now time.Duration) time.Duration {
	return max(now-f.Start, 0)
}

// BoxCollider is an axis-aligned box expressed relative to the Transform:
// Position offsets from the pivot point and Size scales the Transform size.
type BoxCollider struct {
	Position  mgl64.Vec2
	Size      mgl64.Vec2
	DrawDebug bool
}

// FontRenderer draws a line of text with a bitmap font. Position comes from
// the entity's Transform; Size scales glyph pixels to world units.
type FontRenderer struct {
	Text  string
	Font  FontHandle
	Color Color
	Size  float64
}

// PlayerControlled marks an entity as driven by player input.
type PlayerControlled struct {
	Speed     float64
	Direction mgl64.Vec2
}
