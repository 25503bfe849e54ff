package rules

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aisa-it/delta2html/internal/delta2html/delta"
	lua "github.com/yuin/gopher-lua"
)

func deniedLib(state *lua.LState) {
	state.SetGlobal("require", lua.LNil)
	state.SetGlobal("loadfile", lua.LNil)
	state.SetGlobal("dofile", lua.LNil)
	state.SetGlobal("load", lua.LNil)
	state.SetGlobal("loadstring", lua.LNil)
	state.SetGlobal("net", lua.LNil)
	state.SetGlobal("debug", lua.LNil)
	state.SetGlobal("coroutine", lua.LNil)
	state.SetGlobal("socket", lua.LNil)
	state.SetGlobal("lfs", lua.LNil)
	state.SetGlobal("os", lua.LNil)
	state.SetGlobal("io", lua.LNil)
	state.SetGlobal("package", lua.LNil)
	state.SetGlobal("ffi", lua.LNil)
}

func registerLogger(state *lua.LState, messages *[]LuaOut) {
	state.SetGlobal("print", state.NewFunction(func(L *lua.LState) int {
		args := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			args = append(args, L.ToStringMeta(L.Get(i)).String())
		}
		*messages = append(*messages, LuaOut{
			Msg:    strings.Join(args, " "),
			Time:   time.Now(),
			FnName: FnRenderCustom,
		})
		return 0
	}))
}

// getOpLTable операция в виде таблицы {kind, value, attributes}.
func getOpLTable(state *lua.LState, op delta.Op) *lua.LTable {
	table := state.NewTable()
	table.RawSetString("kind", lua.LString(op.Insert.CustomKind))
	table.RawSetString("value", toLValue(state, op.Insert.Payload))
	table.RawSetString("attributes", toLValue(state, op.Attributes.Raw()))
	return table
}

// getContextLTable блочная операция, внутри которой находится embed.
func getContextLTable(state *lua.LState, op delta.Op) *lua.LTable {
	table := state.NewTable()
	table.RawSetString("type", lua.LString(blockType(op)))
	table.RawSetString("attributes", toLValue(state, op.Attributes.Raw()))
	return table
}

func blockType(op delta.Op) string {
	switch {
	case op.IsHeader():
		return "header"
	case op.IsBlockquote():
		return "blockquote"
	case op.IsCodeBlock():
		return "code-block"
	case op.IsList():
		return "list"
	}
	return "paragraph"
}

// toLValue переводит значения, полученные из JSON, в значения Lua.
func toLValue(state *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case float64:
		return lua.LNumber(val)
	case int:
		return lua.LNumber(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return lua.LString(val.String())
		}
		return lua.LNumber(f)
	case map[string]any:
		table := state.NewTable()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			table.RawSetString(k, toLValue(state, val[k]))
		}
		return table
	case []any:
		table := state.NewTable()
		for _, item := range val {
			table.Append(toLValue(state, item))
		}
		return table
	}
	return lua.LString(fmt.Sprint(v))
}
