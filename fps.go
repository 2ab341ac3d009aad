package tessera

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsOverlay shows the current FPS and TPS in the top-left corner,
// refreshed about twice a second.
type fpsOverlay struct {
	img        *ebiten.Image
	sinceDraw  time.Duration
	needsPaint bool
}

func newFPSOverlay() *fpsOverlay {
	// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
	return &fpsOverlay{img: ebiten.NewImage(100, 32), needsPaint: true}
}

func (o *fpsOverlay) update(dt time.Duration) {
	o.sinceDraw += dt
	if o.sinceDraw >= 500*time.Millisecond {
		o.sinceDraw = 0
		o.needsPaint = true
	}
}

func (o *fpsOverlay) draw(screen *ebiten.Image) {
	if o.needsPaint {
		o.needsPaint = false
		o.img.Clear()
		// Semi-transparent background for readability
		o.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(o.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	screen.DrawImage(o.img, nil)
}
