// Package scripting hosts the gopher-lua VM that carries the tunable
// gameplay policies.
package scripting

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/skyraid/server/internal/data"
)

// Engine wraps a single gopher-lua VM.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	rng *rand.Rand
	log *zap.Logger
}

// Option tunes an Engine before its scripts are loaded.
type Option func(*Engine)

// WithRand makes rand_int draw from r, for reproducible runs.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// NewEngine creates a Lua engine and loads every script under scriptsDir/ai.
func NewEngine(scriptsDir string, log *zap.Logger, opts ...Option) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	for _, o := range opts {
		o(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	vm.SetGlobal("rand_int", vm.NewFunction(e.randInt))

	if err := e.loadDir(filepath.Join(scriptsDir, "ai")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load ai scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory. A missing directory is not an error.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
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

// randInt implements rand_int(n): a uniform integer in [0, n).
func (e *Engine) randInt(L *lua.LState) int {
	n := L.CheckInt(1)
	if n <= 0 {
		L.ArgError(1, "must be positive")
		return 0
	}
	L.Push(lua.LNumber(e.rng.Intn(n)))
	return 1
}

// HasFunction reports whether a global Lua function named name is defined.
func (e *Engine) HasFunction(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// DropPickup calls the Lua drop_pickup function for an exploding aircraft.
// Script errors and unknown pickup names are logged and mean no drop.
func (e *Engine) DropPickup(typ data.AircraftType, pos mgl64.Vec2) (data.PickupType, bool) {
	fn := e.vm.GetGlobal("drop_pickup")
	if fn == lua.LNil {
		e.log.Error("lua function drop_pickup not found")
		return 0, false
	}

	ctx := e.vm.NewTable()
	ctx.RawSetString("aircraft", lua.LString(typ.String()))
	ctx.RawSetString("x", lua.LNumber(pos[0]))
	ctx.RawSetString("y", lua.LNumber(pos[1]))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, ctx); err != nil {
		e.log.Error("lua drop_pickup error", zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	name, ok := result.(lua.LString)
	if !ok {
		return 0, false
	}
	pt, err := data.ParsePickupType(string(name))
	if err != nil {
		e.log.Error("lua drop_pickup returned bad pickup", zap.Error(err))
		return 0, false
	}
	return pt, true
}

// Close releases the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
