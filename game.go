package tessera

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig holds optional configuration for Run.
type RunConfig struct {
	Title      string
	Width      int
	Height     int
	Resizable  bool
	ShowFPS    bool
	ClearColor Color
}

// Game drives a scene through ebiten. Each tick polls input, runs the
// update function, advances the scene clock and camera; each frame renders
// the scene and submits it to the screen.
type Game struct {
	Scene    *Scene
	Renderer *Renderer
	Camera   *Camera
	Input    *InputDispatcher

	ClearColor    Color
	ShowFPS       bool
	ScreenshotDir string

	updateFunc      func(dt time.Duration) error
	testRunner      *TestRunner
	screenshotQueue []string
	screenshotSeq   int
	fps             *fpsOverlay
}

// NewGame wires a scene, renderer and camera into a Game. The camera's
// frustum follows the window size.
func NewGame(scene *Scene, renderer *Renderer, camera *Camera) *Game {
	g := &Game{
		Scene:         scene,
		Renderer:      renderer,
		Camera:        camera,
		Input:         NewInputDispatcher(scene),
		ScreenshotDir: "screenshots",
		fps:           newFPSOverlay(),
	}
	g.Input.OnResize(func(w, h int) {
		camera.SetFrustumSize(float64(w), float64(h))
	})
	return g
}

// SetUpdateFunc sets the per-tick game logic callback, called after input
// has been dispatched and before the scene clock advances.
func (g *Game) SetUpdateFunc(fn func(dt time.Duration) error) {
	g.updateFunc = fn
}

// SetTestRunner attaches a TestRunner. Its step runs before input polling
// each tick.
func (g *Game) SetTestRunner(runner *TestRunner) {
	g.testRunner = runner
}

// tickDuration is the fixed update step.
func tickDuration() time.Duration {
	tps := ebiten.TPS()
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	return time.Second / time.Duration(tps)
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	dt := tickDuration()
	if g.testRunner != nil {
		g.testRunner.step(g.Input, g.Screenshot)
	}
	g.Input.Poll()
	if g.updateFunc != nil {
		if err := g.updateFunc(dt); err != nil {
			return err
		}
	}
	g.Scene.Update(dt)
	g.Camera.Update(g.Scene, float32(dt.Seconds()))
	if g.ShowFPS {
		g.fps.update(dt)
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.ClearColor.toRGBA())
	g.Renderer.Render(g.Camera)
	g.Renderer.Submit(screen)
	if g.ShowFPS {
		g.fps.draw(screen)
	}
	g.flushScreenshots(screen)
}

// Layout implements ebiten.Game. The logical size tracks the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.Input.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Run opens a window and runs g until the window closes or the update
// function returns an error.
func Run(g *Game, cfg RunConfig) error {
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		ebiten.SetWindowSize(cfg.Width, cfg.Height)
		g.Camera.SetFrustumSize(float64(cfg.Width), float64(cfg.Height))
	}
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	g.ShowFPS = g.ShowFPS || cfg.ShowFPS
	if cfg.ClearColor != (Color{}) {
		g.ClearColor = cfg.ClearColor
	}
	return ebiten.RunGame(g)
}
