package tessera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertPoint(t *testing.T, name string, got, want mgl64.Vec2) {
	t.Helper()
	if math.Abs(got.X()-want.X()) > epsilon || math.Abs(got.Y()-want.Y()) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

func testTransform(pos, size mgl64.Vec2, rot float64) Transform {
	return Transform{Position: pos, Size: size, Rotation: rot, Pivot: mgl64.Vec2{0.5, 0.5}}
}

// --- ComposeTransform ---

func TestComposeIdentityPlacement(t *testing.T) {
	tr := testTransform(mgl64.Vec2{10, 20}, mgl64.Vec2{30, 40}, 0)
	m := ComposeTransform(tr, false, false, false)
	assertMatrix(t, "affine", affineFromMat4(m), [6]float64{30, 0, 0, 40, 10, 20})
	assertPoint(t, "origin", TransformPoint(m, 0, 0), mgl64.Vec2{10, 20})
	assertPoint(t, "far corner", TransformPoint(m, 1, 1), mgl64.Vec2{40, 60})
}

func TestComposeRotatesAroundPivot(t *testing.T) {
	tr := testTransform(mgl64.Vec2{0, 0}, mgl64.Vec2{10, 10}, math.Pi/2)
	m := ComposeTransform(tr, false, false, false)
	// the pivot stays put
	assertPoint(t, "center", TransformPoint(m, 0.5, 0.5), mgl64.Vec2{5, 5})
	// quarter turn: (0,0) -> (10,0)
	assertPoint(t, "corner", TransformPoint(m, 0, 0), mgl64.Vec2{10, 0})
}

func TestComposeFlips(t *testing.T) {
	tr := testTransform(mgl64.Vec2{0, 0}, mgl64.Vec2{10, 20}, 0)
	tests := []struct {
		name         string
		h, v, d      bool
		origin, xEnd mgl64.Vec2 // images of (0,0) and (1,0)
	}{
		{"none", false, false, false, mgl64.Vec2{0, 0}, mgl64.Vec2{10, 0}},
		{"horizontal", true, false, false, mgl64.Vec2{10, 0}, mgl64.Vec2{0, 0}},
		{"vertical", false, true, false, mgl64.Vec2{0, 20}, mgl64.Vec2{10, 20}},
		{"both", true, true, false, mgl64.Vec2{10, 20}, mgl64.Vec2{0, 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComposeTransform(tr, tt.h, tt.v, tt.d)
			assertPoint(t, "(0,0)", TransformPoint(m, 0, 0), tt.origin)
			assertPoint(t, "(1,0)", TransformPoint(m, 1, 0), tt.xEnd)
		})
	}
}

func TestComposeDiagonalFlipSwapsAxes(t *testing.T) {
	tr := testTransform(mgl64.Vec2{0, 0}, mgl64.Vec2{10, 10}, 0)
	m := ComposeTransform(tr, false, false, true)
	// rotation by pi about (1,1,0) maps local x onto y around the pivot
	assertPoint(t, "center", TransformPoint(m, 0.5, 0.5), mgl64.Vec2{5, 5})
	assertPoint(t, "(1,0)", TransformPoint(m, 1, 0), mgl64.Vec2{0, 10})
	assertPoint(t, "(0,1)", TransformPoint(m, 0, 1), mgl64.Vec2{10, 0})
}

func TestComposeFlipOrderAfterRotation(t *testing.T) {
	// flips apply in the rotated frame: rotate then flip H equals
	// flipping the already rotated quad about its own vertical axis
	tr := testTransform(mgl64.Vec2{0, 0}, mgl64.Vec2{10, 10}, math.Pi/2)
	m := ComposeTransform(tr, true, false, false)
	assertPoint(t, "(0,0)", TransformPoint(m, 0, 0), mgl64.Vec2{10, 10})
}

func TestComposeOffCenterPivots(t *testing.T) {
	tests := []struct {
		name         string
		pos, size    mgl64.Vec2
		pivot        mgl64.Vec2
		rot          float64
		flipH        bool
		fixed        mgl64.Vec2 // world image of the pivot
		origin, xEnd mgl64.Vec2 // images of (0,0) and (1,0)
	}{
		{"top-left flipH", mgl64.Vec2{0, 0}, mgl64.Vec2{10, 10}, mgl64.Vec2{0, 0}, 0, true,
			mgl64.Vec2{0, 0}, mgl64.Vec2{0, 0}, mgl64.Vec2{-10, 0}},
		{"top-left quarter turn flipH", mgl64.Vec2{0, 0}, mgl64.Vec2{10, 10}, mgl64.Vec2{0, 0}, math.Pi / 2, true,
			mgl64.Vec2{0, 0}, mgl64.Vec2{0, 0}, mgl64.Vec2{0, -10}},
		{"right-middle flipH", mgl64.Vec2{5, 5}, mgl64.Vec2{10, 20}, mgl64.Vec2{1, 0.5}, 0, true,
			mgl64.Vec2{15, 15}, mgl64.Vec2{25, 5}, mgl64.Vec2{15, 5}},
		{"right-middle quarter turn flipH", mgl64.Vec2{5, 5}, mgl64.Vec2{10, 20}, mgl64.Vec2{1, 0.5}, math.Pi / 2, true,
			mgl64.Vec2{15, 15}, mgl64.Vec2{25, 25}, mgl64.Vec2{25, 15}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Transform{Position: tt.pos, Size: tt.size, Rotation: tt.rot, Pivot: tt.pivot}
			m := ComposeTransform(tr, tt.flipH, false, false)
			assertPoint(t, "pivot", TransformPoint(m, tt.pivot.X(), tt.pivot.Y()), tt.fixed)
			assertPoint(t, "(0,0)", TransformPoint(m, 0, 0), tt.origin)
			assertPoint(t, "(1,0)", TransformPoint(m, 1, 0), tt.xEnd)
		})
	}
}

func TestSpriteTransformUsesFlags(t *testing.T) {
	tr := testTransform(mgl64.Vec2{5, 5}, mgl64.Vec2{10, 10}, 0)
	sr := SpriteRenderer{FlipHorizontal: true}
	got := affineFromMat4(SpriteTransform(tr, sr))
	want := affineFromMat4(ComposeTransform(tr, true, false, false))
	assertMatrix(t, "affine", got, want)
}

// --- helpers ---

func TestViewportMatrix(t *testing.T) {
	vp := viewportMatrix(800, 600)
	assertPoint(t, "ndc(-1,1)", TransformPoint(vp, -1, 1), mgl64.Vec2{0, 0})
	assertPoint(t, "ndc(1,-1)", TransformPoint(vp, 1, -1), mgl64.Vec2{800, 600})
	assertPoint(t, "ndc(0,0)", TransformPoint(vp, 0, 0), mgl64.Vec2{400, 300})
}

func TestWorldAABB(t *testing.T) {
	tr := testTransform(mgl64.Vec2{0, 0}, mgl64.Vec2{10, 10}, math.Pi/4)
	r := worldAABB(ComposeTransform(tr, false, false, false))
	half := 5 * math.Sqrt2
	assertNear(t, "X", r.X, 5-half)
	assertNear(t, "Y", r.Y, 5-half)
	assertNear(t, "Width", r.Width, 2*half)
	assertNear(t, "Height", r.Height, 2*half)
}
