package tessera

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// KeyContext describes one key transition.
type KeyContext struct {
	Key       ebiten.Key
	Modifiers KeyModifiers
	Injected  bool // produced by InjectKey* rather than the keyboard
}

// InputHandler receives discrete input and window events.
type InputHandler interface {
	OnKeyPressed(ctx KeyContext)
	OnKeyReleased(ctx KeyContext)
	OnResize(width, height int)
}

// InputFuncs adapts plain functions to InputHandler. Nil fields are skipped.
type InputFuncs struct {
	KeyPressed  func(KeyContext)
	KeyReleased func(KeyContext)
	Resize      func(width, height int)
}

func (f InputFuncs) OnKeyPressed(ctx KeyContext) {
	if f.KeyPressed != nil {
		f.KeyPressed(ctx)
	}
}

func (f InputFuncs) OnKeyReleased(ctx KeyContext) {
	if f.KeyReleased != nil {
		f.KeyReleased(ctx)
	}
}

func (f InputFuncs) OnResize(width, height int) {
	if f.Resize != nil {
		f.Resize(width, height)
	}
}

type registeredHandler struct {
	id uint32
	h  InputHandler
}

// CallbackHandle allows removing a registered input handler.
type CallbackHandle struct {
	id uint32
	d  *InputDispatcher
}

// Remove unregisters the handler so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.d == nil {
		return
	}
	hs := h.d.handlers
	for i := range hs {
		if hs[i].id == h.id {
			h.d.handlers = append(hs[:i], hs[i+1:]...)
			return
		}
	}
}

// InputDispatcher polls the keyboard once per tick and forwards key
// transitions and window resizes to registered handlers in registration
// order.
type InputDispatcher struct {
	scene       *Scene
	handlers    []registeredHandler
	nextID      uint32
	injectQueue []syntheticKeyEvent
	keys        []ebiten.Key
	width       int
	height      int
}

// NewInputDispatcher creates a dispatcher that also publishes key and
// resize events to scene's event sink. scene may be nil.
func NewInputDispatcher(scene *Scene) *InputDispatcher {
	return &InputDispatcher{scene: scene}
}

// AddHandler registers h for all input events.
func (d *InputDispatcher) AddHandler(h InputHandler) CallbackHandle {
	d.nextID++
	d.handlers = append(d.handlers, registeredHandler{id: d.nextID, h: h})
	return CallbackHandle{id: d.nextID, d: d}
}

// OnKeyPressed registers fn for key presses.
func (d *InputDispatcher) OnKeyPressed(fn func(KeyContext)) CallbackHandle {
	return d.AddHandler(InputFuncs{KeyPressed: fn})
}

// OnKeyReleased registers fn for key releases.
func (d *InputDispatcher) OnKeyReleased(fn func(KeyContext)) CallbackHandle {
	return d.AddHandler(InputFuncs{KeyReleased: fn})
}

// OnResize registers fn for window size changes.
func (d *InputDispatcher) OnResize(fn func(width, height int)) CallbackHandle {
	return d.AddHandler(InputFuncs{Resize: fn})
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// Poll dispatches this tick's key transitions. A queued synthetic event,
// if any, replaces real keyboard input for the tick.
func (d *InputDispatcher) Poll() {
	if d.processInjectedInput() {
		return
	}
	mods := readModifiers()
	d.keys = inpututil.AppendJustPressedKeys(d.keys[:0])
	for _, k := range d.keys {
		d.dispatchKey(KeyContext{Key: k, Modifiers: mods}, true)
	}
	d.keys = inpututil.AppendJustReleasedKeys(d.keys[:0])
	for _, k := range d.keys {
		d.dispatchKey(KeyContext{Key: k, Modifiers: mods}, false)
	}
}

func (d *InputDispatcher) dispatchKey(ctx KeyContext, pressed bool) {
	typ := EventKeyReleased
	if pressed {
		typ = EventKeyPressed
	}
	if d.scene != nil {
		d.scene.emit(Event{Type: typ, Key: ctx.Key})
	}
	for _, rh := range d.handlers {
		if pressed {
			rh.h.OnKeyPressed(ctx)
		} else {
			rh.h.OnKeyReleased(ctx)
		}
	}
}

// Resize records the layout size and notifies handlers when it changed.
func (d *InputDispatcher) Resize(width, height int) {
	if width == d.width && height == d.height {
		return
	}
	d.width, d.height = width, height
	if d.scene != nil {
		d.scene.emit(Event{Type: EventResized, Width: width, Height: height})
	}
	for _, rh := range d.handlers {
		rh.h.OnResize(width, height)
	}
}

// Size returns the last layout size passed to Resize.
func (d *InputDispatcher) Size() (width, height int) { return d.width, d.height }
