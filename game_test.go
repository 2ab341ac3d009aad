package tessera

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

func newTestGame() *Game {
	s := NewScene()
	return NewGame(s, NewRenderer(s, NewResourceManager()), NewCamera(mgl64.Vec2{}, 800, 600))
}

func TestGameLayoutResizesCamera(t *testing.T) {
	g := newTestGame()
	w, h := g.Layout(1024, 768)
	if w != 1024 || h != 768 {
		t.Errorf("Layout = %dx%d", w, h)
	}
	if g.Camera.Width != 1024 || g.Camera.Height != 768 {
		t.Errorf("camera frustum = %vx%v, want 1024x768", g.Camera.Width, g.Camera.Height)
	}
}

func TestGameUpdateAdvancesClock(t *testing.T) {
	g := newTestGame()
	var got time.Duration
	g.SetUpdateFunc(func(dt time.Duration) error {
		got = dt
		return nil
	})
	g.Input.InjectKeyPress(ebiten.KeyA) // keeps Poll off the real keyboard
	if err := g.Update(); err != nil {
		t.Fatal(err)
	}
	if got != tickDuration() || g.Scene.Now() != tickDuration() {
		t.Errorf("dt = %v, clock = %v, want %v", got, g.Scene.Now(), tickDuration())
	}
}

func TestGameUpdateFuncRunsAfterInput(t *testing.T) {
	g := newTestGame()
	var order []string
	g.Input.OnKeyPressed(func(KeyContext) { order = append(order, "input") })
	g.SetUpdateFunc(func(time.Duration) error {
		order = append(order, "update")
		return nil
	})
	g.Input.InjectKeyPress(ebiten.KeyA)
	g.Update()
	if len(order) != 2 || order[0] != "input" || order[1] != "update" {
		t.Errorf("order = %v", order)
	}
}

func TestGameUpdateFuncErrorStops(t *testing.T) {
	g := newTestGame()
	g.SetUpdateFunc(func(time.Duration) error { return ebiten.Termination })
	g.Input.InjectKeyPress(ebiten.KeyA)
	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Errorf("err = %v, want ebiten.Termination", err)
	}
	if g.Scene.Now() != 0 {
		t.Error("scene clock advanced after update error")
	}
}

func TestGameTestRunnerInjects(t *testing.T) {
	g := newTestGame()
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "tap", "key": "Space"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	g.SetTestRunner(runner)
	var pressed []ebiten.Key
	g.Input.OnKeyPressed(func(ctx KeyContext) { pressed = append(pressed, ctx.Key) })

	g.Update() // runner queues press+release, Poll consumes the press
	if len(pressed) != 1 || pressed[0] != ebiten.KeySpace {
		t.Errorf("pressed = %v, want [Space]", pressed)
	}
}
