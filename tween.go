package tessera

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields of one entity's component
// simultaneously. Create one via the convenience constructors
// (TweenPosition, TweenSize, TweenRotation, TweenTint) and call Update(dt)
// each frame. Values are written back through the store every update, so
// the group survives pool reallocation. If the entity is destroyed or loses
// the component, the group stops immediately.
//
// There is no global animation manager; users call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	scene  *Scene
	target Entity
	apply  func(vals *[4]float64) error
	Done   bool
}

// Update advances all tweens by dt seconds and writes the values to the
// target component.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if !g.scene.Alive(g.target) {
		g.Done = true
		return
	}

	var vals [4]float64
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		vals[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	if err := g.apply(&vals); err != nil {
		g.Done = true
		return
	}
	g.Done = allDone
}

func newTweenGroup(s *Scene, e Entity, from, to []float64, duration float32, fn ease.TweenFunc, apply func(*[4]float64) error) *TweenGroup {
	g := &TweenGroup{count: len(from), scene: s, target: e, apply: apply}
	for i := range from {
		g.tweens[i] = gween.New(float32(from[i]), float32(to[i]), duration, fn)
	}
	return g
}

// TweenPosition animates the entity's Transform.Position to to.
func TweenPosition(s *Scene, e Entity, to mgl64.Vec2, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	t, err := GetComponent[Transform](s, e)
	if err != nil {
		return nil, err
	}
	from := t.Position
	return newTweenGroup(s, e, from[:], to[:], duration, fn, func(v *[4]float64) error {
		t, err := GetComponent[Transform](s, e)
		if err != nil {
			return err
		}
		t.Position = mgl64.Vec2{v[0], v[1]}
		return nil
	}), nil
}

// TweenSize animates the entity's Transform.Size to to.
func TweenSize(s *Scene, e Entity, to mgl64.Vec2, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	t, err := GetComponent[Transform](s, e)
	if err != nil {
		return nil, err
	}
	from := t.Size
	return newTweenGroup(s, e, from[:], to[:], duration, fn, func(v *[4]float64) error {
		t, err := GetComponent[Transform](s, e)
		if err != nil {
			return err
		}
		t.Size = mgl64.Vec2{v[0], v[1]}
		return nil
	}), nil
}

// TweenRotation animates the entity's Transform.Rotation to to radians.
func TweenRotation(s *Scene, e Entity, to float64, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	t, err := GetComponent[Transform](s, e)
	if err != nil {
		return nil, err
	}
	return newTweenGroup(s, e, []float64{t.Rotation}, []float64{to}, duration, fn, func(v *[4]float64) error {
		t, err := GetComponent[Transform](s, e)
		if err != nil {
			return err
		}
		t.Rotation = v[0]
		return nil
	}), nil
}

// TweenTint animates the entity's SpriteRenderer.Tint to to.
func TweenTint(s *Scene, e Entity, to Color, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	sr, err := GetComponent[SpriteRenderer](s, e)
	if err != nil {
		return nil, err
	}
	from := []float64{sr.Tint.R, sr.Tint.G, sr.Tint.B, sr.Tint.A}
	return newTweenGroup(s, e, from, []float64{to.R, to.G, to.B, to.A}, duration, fn, func(v *[4]float64) error {
		sr, err := GetComponent[SpriteRenderer](s, e)
		if err != nil {
			return err
		}
		sr.Tint = Color{v[0], v[1], v[2], v[3]}
		return nil
	}), nil
}
