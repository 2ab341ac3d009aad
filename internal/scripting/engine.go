// Package scripting runs Lua game logic against a tessera scene.
//
// Scripts see a global table named tessera:
//
//	tessera.find(name)             entity or nil
//	tessera.players()              array of PlayerControlled entities
//	tessera.position(e)            x, y
//	tessera.set_position(e, x, y)
//	tessera.move(e, dx, dy)
//	tessera.set_rotation(e, radians)
//	tessera.set_direction(e, dx, dy)
//	tessera.control(e)             dx, dy, speed of a PlayerControlled entity
//	tessera.now()                  scene clock in seconds
//	tessera.log(msg)
//
// and may define on_update(dt), on_key_pressed(key), on_key_released(key)
// and on_resize(w, h). Key names are ebiten key names such as "ArrowLeft".
package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/phanxgames/tessera"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

const entityTypeName = "tessera.entity"

// Engine wraps a single gopher-lua VM bound to one scene.
// Single-goroutine access only (game loop).
type Engine struct {
	vm    *lua.LState
	scene *tessera.Scene
	log   *zap.Logger
}

// NewEngine creates a Lua engine for scene and loads every .lua file in
// scriptsDir in name order. A missing directory loads nothing.
func NewEngine(scene *tessera.Scene, scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{vm: lua.NewState(), scene: scene, log: log}
	e.register()

	if scriptsDir != "" {
		if err := e.loadDir(scriptsDir); err != nil {
			e.vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source in the engine.
func (e *Engine) LoadString(src string) error {
	return e.vm.DoString(src)
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

func (e *Engine) register() {
	mt := e.vm.NewTypeMetatable(entityTypeName)
	e.vm.SetField(mt, "__tostring", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(checkEntity(L, 1).String()))
		return 1
	}))
	e.vm.SetField(mt, "__eq", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(checkEntity(L, 1) == checkEntity(L, 2)))
		return 1
	}))

	api := e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"find":          e.luaFind,
		"players":       e.luaPlayers,
		"position":      e.luaPosition,
		"set_position":  e.luaSetPosition,
		"move":          e.luaMove,
		"set_rotation":  e.luaSetRotation,
		"set_direction": e.luaSetDirection,
		"control":       e.luaControl,
		"now":           e.luaNow,
		"log":           e.luaLog,
	})
	e.vm.SetGlobal("tessera", api)
}

func (e *Engine) pushEntity(L *lua.LState, ent tessera.Entity) {
	ud := L.NewUserData()
	ud.Value = ent
	L.SetMetatable(ud, L.GetTypeMetatable(entityTypeName))
	L.Push(ud)
}

// checkEntity reads the entity argument at n, raising a Lua error if it is
// not one.
func checkEntity(L *lua.LState, n int) tessera.Entity {
	ud := L.CheckUserData(n)
	ent, ok := ud.Value.(tessera.Entity)
	if !ok {
		L.ArgError(n, "entity expected")
	}
	return ent
}

func (e *Engine) transform(L *lua.LState, n int) *tessera.Transform {
	t, err := tessera.GetComponent[tessera.Transform](e.scene, checkEntity(L, n))
	if err != nil {
		L.RaiseError("%v", err)
	}
	return t
}

func (e *Engine) luaFind(L *lua.LState) int {
	ent, ok := e.scene.FindByName(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	e.pushEntity(L, ent)
	return 1
}

func (e *Engine) luaPlayers(L *lua.LState) int {
	out := L.NewTable()
	i := 1
	for ent := range tessera.View[tessera.PlayerControlled](e.scene) {
		e.pushEntity(L, ent)
		out.RawSetInt(i, L.Get(-1))
		L.Pop(1)
		i++
	}
	L.Push(out)
	return 1
}

func (e *Engine) luaPosition(L *lua.LState) int {
	t := e.transform(L, 1)
	L.Push(lua.LNumber(t.Position.X()))
	L.Push(lua.LNumber(t.Position.Y()))
	return 2
}

func (e *Engine) luaSetPosition(L *lua.LState) int {
	t := e.transform(L, 1)
	t.Position = mgl64.Vec2{float64(L.CheckNumber(2)), float64(L.CheckNumber(3))}
	return 0
}

func (e *Engine) luaMove(L *lua.LState) int {
	t := e.transform(L, 1)
	t.Position = t.Position.Add(mgl64.Vec2{float64(L.CheckNumber(2)), float64(L.CheckNumber(3))})
	return 0
}

func (e *Engine) luaSetRotation(L *lua.LState) int {
	t := e.transform(L, 1)
	t.Rotation = float64(L.CheckNumber(2))
	return 0
}

func (e *Engine) luaSetDirection(L *lua.LState) int {
	pc, err := tessera.GetComponent[tessera.PlayerControlled](e.scene, checkEntity(L, 1))
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	pc.Direction = mgl64.Vec2{float64(L.CheckNumber(2)), float64(L.CheckNumber(3))}
	return 0
}

func (e *Engine) luaControl(L *lua.LState) int {
	pc, err := tessera.GetComponent[tessera.PlayerControlled](e.scene, checkEntity(L, 1))
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(lua.LNumber(pc.Direction.X()))
	L.Push(lua.LNumber(pc.Direction.Y()))
	L.Push(lua.LNumber(pc.Speed))
	return 3
}

func (e *Engine) luaNow(L *lua.LState) int {
	L.Push(lua.LNumber(e.scene.Now().Seconds()))
	return 1
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

// call invokes the global hook name if the scripts define it. Errors are
// logged and dropped.
func (e *Engine) call(name string, args ...lua.LValue) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua hook error", zap.String("hook", name), zap.Error(err))
	}
}

// Update runs on_update with dt in seconds.
func (e *Engine) Update(dt time.Duration) {
	e.call("on_update", lua.LNumber(dt.Seconds()))
}

// OnKeyPressed implements tessera.InputHandler.
func (e *Engine) OnKeyPressed(ctx tessera.KeyContext) {
	e.call("on_key_pressed", lua.LString(ctx.Key.String()))
}

// OnKeyReleased implements tessera.InputHandler.
func (e *Engine) OnKeyReleased(ctx tessera.KeyContext) {
	e.call("on_key_released", lua.LString(ctx.Key.String()))
}

// OnResize implements tessera.InputHandler.
func (e *Engine) OnResize(width, height int) {
	e.call("on_resize", lua.LNumber(width), lua.LNumber(height))
}

var _ tessera.InputHandler = (*Engine)(nil)
