package tessera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestCameraDefaults(t *testing.T) {
	cam := NewCamera(mgl64.Vec2{10, 20}, 800, 600)
	if cam.Zoom != 1.0 {
		t.Errorf("Zoom = %f, want 1.0", cam.Zoom)
	}
	if cam.BoundsEnabled {
		t.Error("BoundsEnabled = true, want false")
	}
	b := cam.VisibleBounds()
	if b != (Rect{X: 10, Y: 20, Width: 800, Height: 600}) {
		t.Errorf("VisibleBounds = %+v", b)
	}
}

func TestCameraProjectionCorners(t *testing.T) {
	cam := NewCamera(mgl64.Vec2{100, 50}, 800, 600)
	p := cam.Projection()
	// top-left of the frustum is NDC (-1, 1); y grows downward in world space
	assertPoint(t, "top-left", TransformPoint(p, 100, 50), mgl64.Vec2{-1, 1})
	assertPoint(t, "bottom-right", TransformPoint(p, 900, 650), mgl64.Vec2{1, -1})
	assertPoint(t, "center", TransformPoint(p, 500, 350), mgl64.Vec2{0, 0})
}

func TestCameraWorldToScreen(t *testing.T) {
	cam := NewCamera(mgl64.Vec2{100, 50}, 800, 600)
	assertPoint(t, "origin", cam.WorldToScreen(mgl64.Vec2{100, 50}, 800, 600), mgl64.Vec2{0, 0})
	assertPoint(t, "corner", cam.WorldToScreen(mgl64.Vec2{900, 650}, 800, 600), mgl64.Vec2{800, 600})
	// a larger target stretches the frustum
	assertPoint(t, "stretched", cam.WorldToScreen(mgl64.Vec2{500, 350}, 1600, 1200), mgl64.Vec2{800, 600})
}

func TestCameraZoom(t *testing.T) {
	cam := NewCamera(mgl64.Vec2{}, 800, 600)
	cam.Zoom = 2.0

	s1 := cam.WorldToScreen(mgl64.Vec2{1, 0}, 800, 600)
	s0 := cam.WorldToScreen(mgl64.Vec2{0, 0}, 800, 600)
	if !approxEqual(s1.X()-s0.X(), 2.0, 1e-9) {
		t.Errorf("screen distance = %f, want 2.0", s1.X()-s0.X())
	}
	b := cam.VisibleBounds()
	if b.Width != 400 || b.Height != 300 {
		t.Errorf("VisibleBounds = %vx%v, want 400x300", b.Width, b.Height)
	}

	cam.Zoom = 0
	if cam.VisibleBounds().Width != 800 {
		t.Error("non-positive zoom should act as 1")
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := NewCamera(mgl64.Vec2{37, -12}, 640, 480)
	cam.Zoom = 1.5
	for _, p := range []mgl64.Vec2{{0, 0}, {123.5, 456.25}, {-50, 999}} {
		screen := cam.WorldToScreen(p, 1280, 960)
		back := cam.ScreenToWorld(screen, 1280, 960)
		if !approxEqual(back.X(), p.X(), 1e-6) || !approxEqual(back.Y(), p.Y(), 1e-6) {
			t.Errorf("roundtrip %v -> %v -> %v", p, screen, back)
		}
	}
}

func TestCameraSetFrustumSize(t *testing.T) {
	cam := NewCamera(mgl64.Vec2{}, 800, 600)
	cam.SetFrustumSize(1024, 768)
	if cam.Width != 1024 || cam.Height != 768 {
		t.Errorf("frustum = %vx%v, want 1024x768", cam.Width, cam.Height)
	}
}

func TestCameraCenterOn(t *testing.T) {
	cam := NewCamera(mgl64.Vec2{}, 800, 600)
	cam.CenterOn(mgl64.Vec2{1000, 1000})
	assertPoint(t, "Position", cam.Position, mgl64.Vec2{600, 700})
}

// --- Follow ---

func followFixture() (*Scene, Entity) {
	s := NewScene()
	e := s.CreateEntity("pacman")
	tr, _ := GetComponent[Transform](s, e)
	tr.Position = mgl64.Vec2{500, 500}
	return s, e // default size 100, centered pivot: center (550, 550)
}

func TestCameraFollow(t *testing.T) {
	s, e := followFixture()
	cam := NewCamera(mgl64.Vec2{}, 800, 600)
	cam.Follow(e, mgl64.Vec2{}, 1.0)
	cam.Update(s, 0)
	assertPoint(t, "Position", cam.Position, mgl64.Vec2{150, 250})
}

func TestCameraFollowLerp(t *testing.T) {
	s, e := followFixture()
	cam := NewCamera(mgl64.Vec2{}, 800, 600)
	cam.Follow(e, mgl64.Vec2{}, 0.5)
	cam.Update(s, 0)
	assertPoint(t, "Position", cam.Position, mgl64.Vec2{75, 125})
}

func TestCameraFollowWithOffset(t *testing.T) {
	s, e := followFixture()
	cam := NewCamera(mgl64.Vec2{}, 800, 600)
	cam.Follow(e, mgl64.Vec2{10, -20}, 1.0)
	cam.Update(s, 0)
	assertPoint(t, "Position", cam.Position, mgl64.Vec2{160, 230})
}

func TestCameraUnfollow(t *testing.T) {
	s, e := followFixture()
	cam := NewCamera(mgl64.Vec2{}, 800, 600)
	cam.Follow(e, mgl64.Vec2{}, 1.0)
	cam.Unfollow()
	cam.Update(s, 0)
	assertPoint(t, "Position", cam.Position, mgl64.Vec2{})
}

func TestCameraFollowDestroyedTarget(t *testing.T) {
	s, e := followFixture()
	cam := NewCamera(mgl64.Vec2{}, 800, 600)
	cam.Follow(e, mgl64.Vec2{}, 1.0)
	s.DestroyEntity(e)
	cam.Update(s, 0)
	if !cam.followTarget.IsNull() {
		t.Error("destroyed target should be dropped")
	}
	assertPoint(t, "Position", cam.Position, mgl64.Vec2{})
}

// --- Scrolling ---

func TestCameraScrollTo(t *testing.T) {
	s := NewScene()
	cam := NewCamera(mgl64.Vec2{}, 800, 600)
	cam.ScrollTo(mgl64.Vec2{100, 200}, 1.0, ease.Linear)

	cam.Update(s, 0.5)
	if !approxEqual(cam.Position.X(), 50, 1.0) || !approxEqual(cam.Position.Y(), 100, 1.0) {
		t.Errorf("scroll halfway: cam = %v, want ~(50,100)", cam.Position)
	}

	cam.Update(s, 0.5)
	if !approxEqual(cam.Position.X(), 100, 1.0) || !approxEqual(cam.Position.Y(), 200, 1.0) {
		t.Errorf("scroll end: cam = %v, want ~(100,200)", cam.Position)
	}
	if cam.scrollTween != nil {
		t.Error("scrollTween not nil after completion")
	}
}

// --- Bounds ---

func TestCameraBounds(t *testing.T) {
	s := NewScene()
	cam := NewCamera(mgl64.Vec2{}, 100, 100)
	cam.SetBounds(Rect{X: 0, Y: 0, Width: 1000, Height: 1000})

	cam.Position = mgl64.Vec2{-50, -50}
	cam.Update(s, 0)
	assertPoint(t, "clamp min", cam.Position, mgl64.Vec2{0, 0})

	cam.Position = mgl64.Vec2{999, 999}
	cam.Update(s, 0)
	assertPoint(t, "clamp max", cam.Position, mgl64.Vec2{900, 900})
}

func TestCameraClearBounds(t *testing.T) {
	s := NewScene()
	cam := NewCamera(mgl64.Vec2{}, 100, 100)
	cam.SetBounds(Rect{X: 0, Y: 0, Width: 1000, Height: 1000})
	cam.ClearBounds()

	cam.Position = mgl64.Vec2{-999, -999}
	cam.Update(s, 0)
	assertPoint(t, "Position", cam.Position, mgl64.Vec2{-999, -999})
}

func TestCameraBoundsSmallWorld(t *testing.T) {
	s := NewScene()
	cam := NewCamera(mgl64.Vec2{}, 800, 600)
	cam.SetBounds(Rect{X: 0, Y: 0, Width: 100, Height: 100})
	cam.Update(s, 0)
	// a world smaller than the view is centered
	assertPoint(t, "Position", cam.Position, mgl64.Vec2{-350, -250})
}

// --- Culling helpers ---

func TestWorldAABBRotated(t *testing.T) {
	tr := Transform{Size: mgl64.Vec2{100, 100}, Pivot: mgl64.Vec2{0.5, 0.5}, Rotation: math.Pi / 4}
	r := worldAABB(ComposeTransform(tr, false, false, false))
	half := 50 * math.Sqrt2
	if !approxEqual(r.X, 50-half, 1e-9) || !approxEqual(r.Width, 2*half, 1e-9) {
		t.Errorf("AABB = %+v, want width %f", r, 2*half)
	}
}

func BenchmarkWorldAABB(b *testing.B) {
	m := ComposeTransform(Transform{Position: mgl64.Vec2{10, 10}, Size: mgl64.Vec2{32, 32}, Rotation: 0.3}, false, false, false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = worldAABB(m)
	}
}
