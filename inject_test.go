package tessera

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestInjectKeyTap(t *testing.T) {
	d := NewInputDispatcher(nil)
	h := &recordingHandler{}
	d.AddHandler(h)

	d.InjectKeyTap(ebiten.KeyArrowUp)
	if d.Pending() != 2 {
		t.Fatalf("Pending = %d, want 2", d.Pending())
	}

	if !d.processInjectedInput() {
		t.Fatal("expected an event to be consumed")
	}
	if len(h.pressed) != 1 || !h.pressed[0].Injected || h.pressed[0].Key != ebiten.KeyArrowUp {
		t.Errorf("pressed = %+v", h.pressed)
	}
	if len(h.released) != 0 {
		t.Error("release should wait for the next tick")
	}

	d.processInjectedInput()
	if len(h.released) != 1 {
		t.Errorf("released = %d, want 1", len(h.released))
	}
	if d.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", d.Pending())
	}
}

func TestInjectKeyHold(t *testing.T) {
	d := NewInputDispatcher(nil)
	h := &recordingHandler{}
	d.AddHandler(h)

	d.InjectKeyHold(ebiten.KeyD, 5)
	if d.Pending() != 5 {
		t.Fatalf("Pending = %d, want 5", d.Pending())
	}
	for i := 0; i < 4; i++ {
		d.processInjectedInput()
	}
	if len(h.pressed) != 1 || len(h.released) != 0 {
		t.Errorf("after 4 ticks: pressed %d released %d", len(h.pressed), len(h.released))
	}
	d.processInjectedInput()
	if len(h.released) != 1 {
		t.Errorf("released = %d, want 1", len(h.released))
	}
}

func TestInjectKeyHold_MinFrames(t *testing.T) {
	d := NewInputDispatcher(nil)
	d.InjectKeyHold(ebiten.KeyD, 0)
	if d.Pending() != 2 {
		t.Errorf("Pending = %d, want 2", d.Pending())
	}
}

func TestInjectQueueOrder(t *testing.T) {
	d := NewInputDispatcher(nil)
	var keys []ebiten.Key
	d.OnKeyPressed(func(ctx KeyContext) { keys = append(keys, ctx.Key) })

	d.InjectKeyPress(ebiten.KeyA)
	d.InjectKeyPress(ebiten.KeyB)
	d.InjectKeyPress(ebiten.KeyC)
	for d.Pending() > 0 {
		d.processInjectedInput()
	}

	want := []ebiten.Key{ebiten.KeyA, ebiten.KeyB, ebiten.KeyC}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %v, want %v", i, keys[i], want[i])
		}
	}
}

func TestProcessInjectedInput_EmptyQueue(t *testing.T) {
	d := NewInputDispatcher(nil)
	if d.processInjectedInput() {
		t.Error("empty queue should not consume")
	}
}
