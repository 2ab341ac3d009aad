package tessera

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// maxBatchQuads keeps a single DrawTriangles32 call to a sane vertex count.
const maxBatchQuads = 16383

// unitQuad is the local quad in TL, TR, BL, BR order.
var unitQuad = [4][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

// Submit draws the commands from the last Render call onto target.
// Consecutive quads and glyphs that sample the same image are coalesced
// into one DrawTriangles32 call; untextured quads sample WhitePixel.
func (r *Renderer) Submit(target *ebiten.Image) {
	if len(r.commands) == 0 {
		return
	}
	b := target.Bounds()
	viewport := viewportMatrix(b.Dx(), b.Dy())

	for i := range r.commands {
		cmd := &r.commands[i]
		switch cmd.Type {
		case CommandQuad, CommandGlyph:
			img := WhitePixel
			if cmd.Texture != nil && cmd.Texture.Image != nil {
				img = cmd.Texture.Image
			}
			if img != r.batchImage || len(r.batchVerts) >= maxBatchQuads*4 {
				r.flushBatch(target)
				r.batchImage = img
			}
			r.appendQuad(viewport.Mul4(cmd.Projection).Mul4(cmd.Model), cmd, img == WhitePixel)
		case CommandLines:
			r.flushBatch(target)
			r.strokeLines(target, viewport.Mul4(cmd.Projection), cmd)
		}
	}
	r.flushBatch(target)

	if r.debug {
		r.debugLog(r.stats)
	}
}

// appendQuad appends 4 vertices and 6 indices for the unit quad under m.
func (r *Renderer) appendQuad(m mgl64.Mat4, cmd *DrawCommand, untextured bool) {
	a := affineFromMat4(m)

	var sx, sy [4]float32
	if untextured {
		sx = [4]float32{0, 1, 0, 1}
		sy = [4]float32{0, 0, 1, 1}
	} else {
		x0, y0 := float32(cmd.Source.Min.X), float32(cmd.Source.Min.Y)
		x1, y1 := float32(cmd.Source.Max.X), float32(cmd.Source.Max.Y)
		sx = [4]float32{x0, x1, x0, x1}
		sy = [4]float32{y0, y0, y1, y1}
	}

	cr, cg, cb, ca := cmd.Color.premultiplied()
	base := uint32(len(r.batchVerts))
	for i, p := range unitQuad {
		r.batchVerts = append(r.batchVerts, ebiten.Vertex{
			DstX:   float32(a[0]*p[0] + a[2]*p[1] + a[4]),
			DstY:   float32(a[1]*p[0] + a[3]*p[1] + a[5]),
			SrcX:   sx[i],
			SrcY:   sy[i],
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
	}
	// Two triangles: TL-TR-BL, TR-BR-BL
	r.batchInds = append(r.batchInds,
		base+0, base+1, base+2,
		base+1, base+3, base+2,
	)
}

// flushBatch submits accumulated vertices as a single DrawTriangles32 call.
func (r *Renderer) flushBatch(target *ebiten.Image) {
	if len(r.batchVerts) == 0 || r.batchImage == nil {
		r.batchVerts = r.batchVerts[:0]
		r.batchInds = r.batchInds[:0]
		return
	}
	var op ebiten.DrawTrianglesOptions
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	target.DrawTriangles32(r.batchVerts, r.batchInds, r.batchImage, &op)
	r.stats.batches++

	r.batchVerts = r.batchVerts[:0]
	r.batchInds = r.batchInds[:0]
}

// strokeLines draws a command's line strip in screen space.
func (r *Renderer) strokeLines(target *ebiten.Image, m mgl64.Mat4, cmd *DrawCommand) {
	if len(cmd.Points) < 2 {
		return
	}
	clr := cmd.Color.toRGBA()
	prev := TransformPoint(m, cmd.Points[0].X(), cmd.Points[0].Y())
	for _, p := range cmd.Points[1:] {
		cur := TransformPoint(m, p.X(), p.Y())
		vector.StrokeLine(target,
			float32(prev.X()), float32(prev.Y()), float32(cur.X()), float32(cur.Y()),
			1, clr, false)
		prev = cur
	}
	r.stats.batches++
}
