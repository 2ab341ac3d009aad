package tessera

import (
	"image"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

func assertVertexNear(t *testing.T, label string, got, want float32) {
	t.Helper()
	if diff := got - want; diff > 0.001 || diff < -0.001 {
		t.Errorf("%s = %f, want %f", label, got, want)
	}
}

func TestAppendQuadTextured(t *testing.T) {
	r := NewRenderer(NewScene(), NewResourceManager())
	cmd := &DrawCommand{
		Type:   CommandQuad,
		Color:  ColorWhite,
		Source: image.Rect(10, 20, 42, 36),
	}
	m := mgl64.Translate3D(5, 7, 0).Mul4(mgl64.Scale3D(32, 16, 1))
	r.appendQuad(m, cmd, false)

	if len(r.batchVerts) != 4 {
		t.Fatalf("verts = %d, want 4", len(r.batchVerts))
	}
	if len(r.batchInds) != 6 {
		t.Fatalf("inds = %d, want 6", len(r.batchInds))
	}

	want := []struct{ dx, dy, sx, sy float32 }{
		{5, 7, 10, 20},   // TL
		{37, 7, 42, 20},  // TR
		{5, 23, 10, 36},  // BL
		{37, 23, 42, 36}, // BR
	}
	for i, w := range want {
		v := r.batchVerts[i]
		assertVertexNear(t, "DstX", v.DstX, w.dx)
		assertVertexNear(t, "DstY", v.DstY, w.dy)
		assertVertexNear(t, "SrcX", v.SrcX, w.sx)
		assertVertexNear(t, "SrcY", v.SrcY, w.sy)
	}

	wantInds := []uint32{0, 1, 2, 1, 3, 2}
	for i, w := range wantInds {
		if r.batchInds[i] != w {
			t.Errorf("ind[%d] = %d, want %d", i, r.batchInds[i], w)
		}
	}
}

func TestAppendQuadUntexturedSamplesWhitePixel(t *testing.T) {
	r := NewRenderer(NewScene(), NewResourceManager())
	cmd := &DrawCommand{Type: CommandQuad, Color: ColorWhite, Source: image.Rect(10, 20, 42, 36)}
	r.appendQuad(mgl64.Ident4(), cmd, true)

	// source coordinates span the 1x1 white pixel regardless of Source
	assertVertexNear(t, "BR.SrcX", r.batchVerts[3].SrcX, 1)
	assertVertexNear(t, "BR.SrcY", r.batchVerts[3].SrcY, 1)
	assertVertexNear(t, "TL.SrcX", r.batchVerts[0].SrcX, 0)
}

func TestAppendQuadRotated(t *testing.T) {
	r := NewRenderer(NewScene(), NewResourceManager())
	cmd := &DrawCommand{Type: CommandQuad, Color: ColorWhite}
	tr := Transform{Size: mgl64.Vec2{10, 10}, Rotation: math.Pi / 2}
	r.appendQuad(ComposeTransform(tr, false, false, false), cmd, true)

	// pivot at the origin: TR (10,0) rotates to (0,10)
	assertVertexNear(t, "TR.DstX", r.batchVerts[1].DstX, 0)
	assertVertexNear(t, "TR.DstY", r.batchVerts[1].DstY, 10)
}

func TestAppendQuadPremultipliedColor(t *testing.T) {
	r := NewRenderer(NewScene(), NewResourceManager())
	cmd := &DrawCommand{Type: CommandQuad, Color: Color{R: 1, G: 0.5, B: 0, A: 0.5}}
	r.appendQuad(mgl64.Ident4(), cmd, true)

	v := r.batchVerts[0]
	assertVertexNear(t, "ColorR", v.ColorR, 0.5)
	assertVertexNear(t, "ColorG", v.ColorG, 0.25)
	assertVertexNear(t, "ColorB", v.ColorB, 0)
	assertVertexNear(t, "ColorA", v.ColorA, 0.5)
}

func TestAppendQuadIndicesOffset(t *testing.T) {
	r := NewRenderer(NewScene(), NewResourceManager())
	cmd := &DrawCommand{Type: CommandQuad, Color: ColorWhite}
	r.appendQuad(mgl64.Ident4(), cmd, true)
	r.appendQuad(mgl64.Ident4(), cmd, true)
	if r.batchInds[6] != 4 || r.batchInds[11] != 6 {
		t.Errorf("second quad indices = %v, want based at 4", r.batchInds[6:])
	}
}

// --- Run counting ---

func TestCountBatchesSameTexture(t *testing.T) {
	tex := &Texture{Name: "a"}
	cmds := []DrawCommand{
		{Type: CommandQuad, Texture: tex},
		{Type: CommandQuad, Texture: tex},
		{Type: CommandGlyph, Texture: tex},
	}
	if got := countBatches(cmds); got != 1 {
		t.Errorf("batches = %d, want 1", got)
	}
}

func TestCountBatchesTextureChange(t *testing.T) {
	a, b := &Texture{Name: "a"}, &Texture{Name: "b"}
	cmds := []DrawCommand{
		{Type: CommandQuad, Texture: a},
		{Type: CommandQuad, Texture: b},
		{Type: CommandQuad, Texture: a},
	}
	if got := countBatches(cmds); got != 3 {
		t.Errorf("batches = %d, want 3", got)
	}
}

func TestCountBatchesLinesBreakRuns(t *testing.T) {
	tex := &Texture{Name: "a"}
	cmds := []DrawCommand{
		{Type: CommandQuad, Texture: tex},
		{Type: CommandLines},
		{Type: CommandLines},
		{Type: CommandQuad, Texture: tex},
	}
	if got := countBatches(cmds); got != 4 {
		t.Errorf("batches = %d, want 4", got)
	}
}

func TestCountBatchesEmpty(t *testing.T) {
	if got := countBatches(nil); got != 0 {
		t.Errorf("batches = %d, want 0", got)
	}
}

// --- Submission ---

func TestSubmitCoalescesSameImage(t *testing.T) {
	s, res, cam := newRenderFixture()
	tex := res.AddTexture("ghost", ebiten.NewImage(16, 16))
	for i := 0; i < 5; i++ {
		spawnSprite(s, "ghost", mgl64.Vec2{float64(i) * 60, 0}, tex)
	}
	r := NewRenderer(s, res)
	r.Render(cam)
	r.Submit(ebiten.NewImage(800, 600))

	if got := r.Stats().Batches; got != 1 {
		t.Errorf("Batches = %d, want 1", got)
	}
	if len(r.batchVerts) != 0 || len(r.batchInds) != 0 {
		t.Error("batch buffers should be empty after Submit")
	}
}

func TestSubmitLinesFlushBatch(t *testing.T) {
	s, res, cam := newRenderFixture()
	spawnSprite(s, "a", mgl64.Vec2{}, TextureHandle{})
	b := spawnSprite(s, "b", mgl64.Vec2{100, 0}, TextureHandle{})
	AddComponent(s, b, BoxCollider{Size: mgl64.Vec2{1, 1}, DrawDebug: true})

	r := NewRenderer(s, res)
	r.Render(cam)
	r.Submit(ebiten.NewImage(800, 600))

	// one quad batch for both untextured sprites, one line strip
	if got := r.Stats().Batches; got != 2 {
		t.Errorf("Batches = %d, want 2", got)
	}
}

func TestSubmitEmptyIsNoop(t *testing.T) {
	s, res, cam := newRenderFixture()
	r := NewRenderer(s, res)
	r.Render(cam)
	r.Submit(ebiten.NewImage(10, 10))
	if r.Stats().Batches != 0 {
		t.Errorf("Batches = %d, want 0", r.Stats().Batches)
	}
}
