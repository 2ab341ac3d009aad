package tessera

import "github.com/hajimehoshi/ebiten/v2"

// syntheticKeyEvent represents a single injected key transition.
type syntheticKeyEvent struct {
	key     ebiten.Key
	pressed bool
}

// InjectKeyPress queues a key press. The event is consumed on the next
// Poll, one event per tick.
func (d *InputDispatcher) InjectKeyPress(key ebiten.Key) {
	d.injectQueue = append(d.injectQueue, syntheticKeyEvent{key: key, pressed: true})
}

// InjectKeyRelease queues a key release.
func (d *InputDispatcher) InjectKeyRelease(key ebiten.Key) {
	d.injectQueue = append(d.injectQueue, syntheticKeyEvent{key: key, pressed: false})
}

// InjectKeyTap queues a press followed by a release. Consumes two ticks.
func (d *InputDispatcher) InjectKeyTap(key ebiten.Key) {
	d.InjectKeyPress(key)
	d.InjectKeyRelease(key)
}

// InjectKeyHold queues a press, frames-2 idle ticks, then a release.
// Minimum frames is 2.
func (d *InputDispatcher) InjectKeyHold(key ebiten.Key, frames int) {
	d.InjectKeyPress(key)
	for i := 0; i < frames-2; i++ {
		d.injectQueue = append(d.injectQueue, syntheticKeyEvent{key: -1})
	}
	d.InjectKeyRelease(key)
}

// Pending returns the number of queued synthetic events.
func (d *InputDispatcher) Pending() int { return len(d.injectQueue) }

// processInjectedInput pops one event from the inject queue and dispatches
// it. Returns true if an event was consumed (real keyboard input should be
// skipped).
func (d *InputDispatcher) processInjectedInput() bool {
	if len(d.injectQueue) == 0 {
		return false
	}
	evt := d.injectQueue[0]
	copy(d.injectQueue, d.injectQueue[1:])
	d.injectQueue = d.injectQueue[:len(d.injectQueue)-1]

	if evt.key < 0 {
		return true
	}
	d.dispatchKey(KeyContext{Key: evt.key, Injected: true}, evt.pressed)
	return true
}
