package tessera

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// AtlasFrame names one cell of a texture divided into an XDivisions by
// YDivisions grid. Index counts row-major from the top-left cell.
type AtlasFrame struct {
	XDivisions int
	YDivisions int
	Index      int
}

// WholeTexture is the frame of a sprite without a FrameSource.
var WholeTexture = AtlasFrame{XDivisions: 1, YDivisions: 1, Index: 0}

// Cells returns the number of cells in the grid.
func (f AtlasFrame) Cells() int { return f.XDivisions * f.YDivisions }

// Region returns the pixel rectangle of the frame's cell in a texture of
// the given size. The last column and row absorb any remainder pixels.
func (f AtlasFrame) Region(width, height int) (x0, y0, x1, y1 int) {
	xd, yd := max(f.XDivisions, 1), max(f.YDivisions, 1)
	col, row := f.Index%xd, f.Index/xd
	cw, ch := width/xd, height/yd
	x0, y0 = col*cw, row*ch
	x1, y1 = x0+cw, y0+ch
	if col == xd-1 {
		x1 = width
	}
	if row == yd-1 {
		y1 = height
	}
	return x0, y0, x1, y1
}

// SelectFrame picks the atlas cell a sprite shows.
//
//   - nil: the whole texture.
//   - Flipbook: a horizontal strip of Divisions cells, advancing one cell per
//     FrameDuration of elapsed time and wrapping.
//   - TileFrame: the stored grid and index. An index past the last cell is
//     clamped to the last cell and clamped is true.
//
// Zero or negative divisions count as one, a non-positive frame duration
// holds the first frame, and negative elapsed time counts as zero.
func SelectFrame(src FrameSource, elapsed time.Duration) (frame AtlasFrame, clamped bool) {
	switch s := src.(type) {
	case Flipbook:
		div := max(s.Divisions, 1)
		idx := 0
		if s.FrameDuration > 0 && elapsed > 0 {
			idx = int((elapsed / s.FrameDuration) % time.Duration(div))
		}
		return AtlasFrame{XDivisions: div, YDivisions: 1, Index: idx}, false
	case TileFrame:
		f := AtlasFrame{XDivisions: max(s.XDivisions, 1), YDivisions: max(s.YDivisions, 1), Index: s.Index}
		if last := f.Cells() - 1; f.Index > last {
			f.Index = last
			clamped = true
		} else if f.Index < 0 {
			f.Index = 0
			clamped = true
		}
		return f, clamped
	default:
		return WholeTexture, false
	}
}

// AttachFrameSource gives e its animation state. An entity carries at most
// one FrameSource: attaching a second one fails with
// ErrAmbiguousAnimationSource (which also matches ErrDuplicateComponent),
// logs a warning and leaves the first one in effect. Use SetComponent to
// replace a FrameSource deliberately.
func AttachFrameSource(s *Scene, e Entity, src FrameSource) error {
	if src == nil {
		return fmt.Errorf("attach frame source to %v: nil source", e)
	}
	_, err := AddComponent[FrameSource](s, e, src)
	if err == nil || !errors.Is(err, ErrDuplicateComponent) {
		return err
	}
	existing, _ := GetComponent[FrameSource](s, e)
	s.log.Warn("entity already has an animation source; keeping the first",
		zap.Stringer("entity", e),
		zap.String("kept", fmt.Sprintf("%T", *existing)),
		zap.String("rejected", fmt.Sprintf("%T", src)))
	return fmt.Errorf("%w: %w", ErrAmbiguousAnimationSource, err)
}

// NewFlipbook returns a Flipbook that starts at the scene's current time.
func NewFlipbook(s *Scene, divisions int, frameDuration time.Duration) Flipbook {
	return Flipbook{Divisions: divisions, FrameDuration: frameDuration, Start: s.Now()}
}
