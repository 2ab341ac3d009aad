package tessera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera is an orthographic view of the world. Position is the world point
// shown at the top-left of the frustum; Width and Height are the frustum
// size in world units at zoom 1.
type Camera struct {
	Position mgl64.Vec2
	Width    float64
	Height   float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64

	followTarget Entity
	followOffset mgl64.Vec2
	followLerp   float64

	// BoundsEnabled clamps the camera so the visible area stays within Bounds.
	BoundsEnabled bool
	Bounds        Rect

	scrollTween *scrollAnim
}

// NewCamera creates a camera at position whose frustum is width x height.
func NewCamera(position mgl64.Vec2, width, height float64) *Camera {
	return &Camera{Position: position, Width: width, Height: height, Zoom: 1}
}

// SetFrustumSize resizes the frustum, typically to the new window size.
func (c *Camera) SetFrustumSize(width, height float64) {
	c.Width = width
	c.Height = height
	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

func (c *Camera) zoom() float64 {
	if c.Zoom <= 0 {
		return 1
	}
	return c.Zoom
}

// Projection returns the orthographic projection for the current frustum:
// left = x, right = x + w, bottom = y + h, top = y, near -1, far 1.
// Y grows downward on screen.
func (c *Camera) Projection() mgl64.Mat4 {
	z := c.zoom()
	x, y := c.Position.X(), c.Position.Y()
	return mgl64.Ortho(x, x+c.Width/z, y+c.Height/z, y, -1, 1)
}

// VisibleBounds returns the world rectangle the camera shows.
func (c *Camera) VisibleBounds() Rect {
	z := c.zoom()
	return Rect{X: c.Position.X(), Y: c.Position.Y(), Width: c.Width / z, Height: c.Height / z}
}

// WorldToScreen converts a world point to pixel coordinates of a target
// of the given size.
func (c *Camera) WorldToScreen(world mgl64.Vec2, screenW, screenH int) mgl64.Vec2 {
	return TransformPoint(viewportMatrix(screenW, screenH).Mul4(c.Projection()), world.X(), world.Y())
}

// ScreenToWorld converts pixel coordinates of a target of the given size
// to a world point.
func (c *Camera) ScreenToWorld(screen mgl64.Vec2, screenW, screenH int) mgl64.Vec2 {
	inv := viewportMatrix(screenW, screenH).Mul4(c.Projection()).Inv()
	return TransformPoint(inv, screen.X(), screen.Y())
}

// Follow makes the camera track an entity so that the entity's pivot point
// plus offset sits at the center of the view. A lerp of 1.0 snaps
// immediately; lower values give smoother following.
func (c *Camera) Follow(target Entity, offset mgl64.Vec2, lerp float64) {
	c.followTarget = target
	c.followOffset = offset
	c.followLerp = lerp
}

// Unfollow stops tracking the current target.
func (c *Camera) Unfollow() {
	c.followTarget = NullEntity
}

// ScrollTo animates the camera's top-left to the given world position over
// duration seconds.
func (c *Camera) ScrollTo(to mgl64.Vec2, duration float32, easeFn ease.TweenFunc) {
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.Position.X()), float32(to.X()), duration, easeFn),
		tweenY: gween.New(float32(c.Position.Y()), float32(to.Y()), duration, easeFn),
	}
}

// CenterOn moves the camera so that world point p is in the middle of the view.
func (c *Camera) CenterOn(p mgl64.Vec2) {
	b := c.VisibleBounds()
	c.Position = mgl64.Vec2{p.X() - b.Width/2, p.Y() - b.Height/2}
	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// SetBounds enables camera bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables camera bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// Update advances follow, scroll and bounds clamping by dt seconds.
func (c *Camera) Update(s *Scene, dt float32) {
	if !c.followTarget.IsNull() {
		if t, err := GetComponent[Transform](s, c.followTarget); err == nil {
			b := c.VisibleBounds()
			target := t.Position.Add(mgl64.Vec2{t.Pivot.X() * t.Size.X(), t.Pivot.Y() * t.Size.Y()}).
				Add(c.followOffset).
				Sub(mgl64.Vec2{b.Width / 2, b.Height / 2})
			c.Position = c.Position.Add(target.Sub(c.Position).Mul(c.followLerp))
		} else {
			c.followTarget = NullEntity
		}
	}

	if c.scrollTween != nil {
		x, y := c.Position.X(), c.Position.Y()
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			x = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			y = float64(val)
			c.scrollTween.doneY = done
		}
		c.Position = mgl64.Vec2{x, y}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// clampToBounds restricts the position so the visible area stays within
// Bounds. Bounds smaller than the view center the camera on them.
func (c *Camera) clampToBounds() {
	v := c.VisibleBounds()
	minX, maxX := c.Bounds.X, c.Bounds.X+c.Bounds.Width-v.Width
	minY, maxY := c.Bounds.Y, c.Bounds.Y+c.Bounds.Height-v.Height

	x, y := c.Position.X(), c.Position.Y()
	if minX > maxX {
		x = c.Bounds.X + (c.Bounds.Width-v.Width)/2
	} else {
		x = math.Max(minX, math.Min(x, maxX))
	}
	if minY > maxY {
		y = c.Bounds.Y + (c.Bounds.Height-v.Height)/2
	} else {
		y = math.Max(minY, math.Min(y, maxY))
	}
	c.Position = mgl64.Vec2{x, y}
}
