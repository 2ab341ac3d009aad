package tessera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// diagonalAxis is the rotation axis for diagonal flips: the unit vector
// along (1, 1, 0).
var diagonalAxis = mgl64.Vec3{1, 1, 0}.Normalize()

// ComposeTransform builds the model matrix that maps the unit quad
// [0,1]x[0,1] onto the entity's placement in world space. The composition,
// outermost first:
//
//	translate(position)
//	translate(pivot*size)
//	rotateZ(rotation)
//	rotateY(pi)           if flipH
//	rotateX(pi)           if flipV
//	rotate(pi, (1,1,0))   if flipD
//	translate(-pivot*size)
//	scale(size)
//
// Flips and rotation therefore pivot around pivot*size while position
// stays the top-left corner of the unrotated quad.
func ComposeTransform(t Transform, flipH, flipV, flipD bool) mgl64.Mat4 {
	offX := t.Pivot.X() * t.Size.X()
	offY := t.Pivot.Y() * t.Size.Y()

	m := mgl64.Translate3D(t.Position.X(), t.Position.Y(), 0)
	m = m.Mul4(mgl64.Translate3D(offX, offY, 0))
	m = m.Mul4(mgl64.HomogRotate3DZ(t.Rotation))
	if flipH {
		m = m.Mul4(mgl64.HomogRotate3DY(math.Pi))
	}
	if flipV {
		m = m.Mul4(mgl64.HomogRotate3DX(math.Pi))
	}
	if flipD {
		m = m.Mul4(mgl64.HomogRotate3D(math.Pi, diagonalAxis))
	}
	m = m.Mul4(mgl64.Translate3D(-offX, -offY, 0))
	return m.Mul4(mgl64.Scale3D(t.Size.X(), t.Size.Y(), 1))
}

// SpriteTransform composes t with the flips of sr.
func SpriteTransform(t Transform, sr SpriteRenderer) mgl64.Mat4 {
	return ComposeTransform(t, sr.FlipHorizontal, sr.FlipVertical, sr.FlipDiagonal)
}

// TransformPoint applies m to the point (x, y, 0).
func TransformPoint(m mgl64.Mat4, x, y float64) mgl64.Vec2 {
	v := m.Mul4x1(mgl64.Vec4{x, y, 0, 1})
	return mgl64.Vec2{v.X(), v.Y()}
}

// viewportMatrix maps normalized device coordinates to pixels of a w x h
// target with Y down.
func viewportMatrix(w, h int) mgl64.Mat4 {
	hw, hh := float64(w)/2, float64(h)/2
	return mgl64.Translate3D(hw, hh, 0).Mul4(mgl64.Scale3D(hw, -hh, 1))
}

// affineFromMat4 extracts the 2D affine part of m in the
// [a, b, c, d, tx, ty] layout, where
// x' = a*x + c*y + tx and y' = b*x + d*y + ty.
func affineFromMat4(m mgl64.Mat4) [6]float64 {
	return [6]float64{m.At(0, 0), m.At(1, 0), m.At(0, 1), m.At(1, 1), m.At(0, 3), m.At(1, 3)}
}

// worldAABB is the axis-aligned bounds of the unit quad under m.
func worldAABB(m mgl64.Mat4) Rect {
	p := [4]mgl64.Vec2{
		TransformPoint(m, 0, 0),
		TransformPoint(m, 1, 0),
		TransformPoint(m, 0, 1),
		TransformPoint(m, 1, 1),
	}
	minX, minY := p[0].X(), p[0].Y()
	maxX, maxY := minX, minY
	for _, q := range p[1:] {
		minX, maxX = math.Min(minX, q.X()), math.Max(maxX, q.X())
		minY, maxY = math.Min(minY, q.Y()), math.Max(maxY, q.Y())
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
