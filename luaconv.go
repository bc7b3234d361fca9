package templua

import (
	"fmt"
	"math"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// toLValue maps a Go value into the interpreter. Unrecognized types fall
// back to their fmt string form so a provider can hand over anything
// printable.
func toLValue(L *lua.LState, v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return v
	case bool:
		return lua.LBool(v)
	case string:
		return lua.LString(v)
	case []byte:
		return lua.LString(v)
	case int:
		return lua.LNumber(v)
	case int8:
		return lua.LNumber(v)
	case int16:
		return lua.LNumber(v)
	case int32:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case uint:
		return lua.LNumber(v)
	case uint8:
		return lua.LNumber(v)
	case uint16:
		return lua.LNumber(v)
	case uint32:
		return lua.LNumber(v)
	case uint64:
		return lua.LNumber(v)
	case float32:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case time.Time:
		return lua.LString(v.Format(time.RFC3339))
	case func(*lua.LState) int:
		return L.NewFunction(v)
	case []any:
		tbl := L.NewTable()
		for _, elem := range v {
			tbl.Append(toLValue(L, elem))
		}
		return tbl
	case map[string]any:
		tbl := L.NewTable()
		for k, val := range v {
			tbl.RawSetString(k, toLValue(L, val))
		}
		return tbl
	default:
		return lua.LString(fmt.Sprintf("%v", v))
	}
}

// fromLValue maps a Lua value back to plain Go data. Tables with contiguous
// 1..n integer keys become []any, everything else map[string]any. Integral
// numbers come back as int64.
func fromLValue(v lua.LValue) any {
	switch v := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LString:
		return string(v)
	case lua.LNumber:
		f := float64(v)
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int64(f)
		}
		return f
	case *lua.LTable:
		return fromLTable(v)
	default:
		return v.String()
	}
}

func fromLTable(tbl *lua.LTable) any {
	count := 0
	m := make(map[string]any)
	tbl.ForEach(func(k, val lua.LValue) {
		count++
		m[lua.LVAsString(k)] = fromLValue(val)
	})
	if n := tbl.Len(); n > 0 && n == count {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = fromLValue(tbl.RawGetInt(i))
		}
		return arr
	}
	return m
}
