// Package hooks runs a user Lua script after brightness changes.
//
// The script may define a global function:
//
//	function on_change(change)
//	  -- change.id, change.class, change.device, change.source, change.update,
//	  -- change.previous, change.value, change.max, change.percent
//	end
//
// A "log" module is preloaded so scripts can write to the program log.
package hooks

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/dokzlo13/brightctl/internal/brightness"
	"github.com/dokzlo13/brightctl/internal/ledger"
)

const onChangeFunc = "on_change"

// Runner owns a Lua VM loaded with the hook script.
// gopher-lua states are not goroutine safe, so calls are serialized.
type Runner struct {
	mu   sync.Mutex
	L    *lua.LState
	path string
}

// Load executes the script at path and returns a Runner for its hooks.
func Load(path string) (*Runner, error) {
	L := lua.NewState()
	L.PreloadModule("log", NewLogModule().Loader)

	log.Debug().Str("path", path).Msg("Loading hook script")

	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("failed to execute hook script: %w", err)
	}

	return &Runner{L: L, path: path}, nil
}

// LoadString is like Load but takes the script source.
func LoadString(source string) (*Runner, error) {
	L := lua.NewState()
	L.PreloadModule("log", NewLogModule().Loader)

	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("failed to execute hook script: %w", err)
	}

	return &Runner{L: L, path: "<string>"}, nil
}

// HasOnChange reports whether the script defines on_change.
func (r *Runner) HasOnChange() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.L.GetGlobal(onChangeFunc).(*lua.LFunction)
	return ok
}

// OnChange calls on_change with a table describing c. It is a no-op when
// the script does not define the function.
func (r *Runner) OnChange(ctx context.Context, c ledger.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn, ok := r.L.GetGlobal(onChangeFunc).(*lua.LFunction)
	if !ok {
		return nil
	}

	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	err := r.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, changeTable(r.L, c))
	if err != nil {
		return fmt.Errorf("%s: on_change failed: %w", r.path, err)
	}
	return nil
}

// Close releases the Lua VM.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.L.Close()
}

func changeTable(L *lua.LState, c ledger.Change) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "id", lua.LString(c.ID.String()))
	L.SetField(tbl, "class", lua.LString(c.Class))
	L.SetField(tbl, "device", lua.LString(c.DeviceID))
	L.SetField(tbl, "source", lua.LString(string(c.Source)))
	L.SetField(tbl, "update", lua.LString(c.Update))
	L.SetField(tbl, "previous", lua.LNumber(c.Previous))
	L.SetField(tbl, "value", lua.LNumber(c.Value))
	L.SetField(tbl, "max", lua.LNumber(c.Max))
	if c.Max > 0 {
		L.SetField(tbl, "percent", lua.LNumber(brightness.ValueToPercent(c.Value, c.Max)))
	}
	return tbl
}
