package templua

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func TestToLValue(t *testing.T) {
	t.Parallel()
	L := lua.NewState()
	defer L.Close()

	assert.Equal(t, lua.LNil, toLValue(L, nil))
	assert.Equal(t, lua.LTrue, toLValue(L, true))
	assert.Equal(t, lua.LString("s"), toLValue(L, "s"))
	assert.Equal(t, lua.LString("bytes"), toLValue(L, []byte("bytes")))
	assert.Equal(t, lua.LNumber(42), toLValue(L, 42))
	assert.Equal(t, lua.LNumber(42), toLValue(L, int64(42)))
	assert.Equal(t, lua.LNumber(42), toLValue(L, uint8(42)))
	assert.Equal(t, lua.LNumber(3.5), toLValue(L, 3.5))

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, lua.LString("2024-05-01T12:00:00Z"), toLValue(L, ts))

	tbl, ok := toLValue(L, map[string]any{"k": "v"}).(*lua.LTable)
	require.True(t, ok)
	assert.Equal(t, lua.LString("v"), tbl.RawGetString("k"))

	arr, ok := toLValue(L, []any{1, "two"}).(*lua.LTable)
	require.True(t, ok)
	assert.Equal(t, 2, arr.Len())
	assert.Equal(t, lua.LNumber(1), arr.RawGetInt(1))
	assert.Equal(t, lua.LString("two"), arr.RawGetInt(2))

	// printable fallback
	assert.Equal(t, lua.LString("{7}"), toLValue(L, struct{ N int }{7}))
}

func TestFromLValue(t *testing.T) {
	t.Parallel()
	L := lua.NewState()
	defer L.Close()

	assert.Nil(t, fromLValue(lua.LNil))
	assert.Equal(t, true, fromLValue(lua.LTrue))
	assert.Equal(t, "s", fromLValue(lua.LString("s")))
	assert.Equal(t, int64(42), fromLValue(lua.LNumber(42)))
	assert.Equal(t, 3.5, fromLValue(lua.LNumber(3.5)))

	tbl := L.NewTable()
	tbl.RawSetString("name", lua.LString("x"))
	tbl.RawSetString("count", lua.LNumber(2))
	assert.Equal(t, map[string]any{"name": "x", "count": int64(2)}, fromLValue(tbl))

	arr := L.NewTable()
	arr.Append(lua.LString("a"))
	arr.Append(lua.LNumber(1))
	assert.Equal(t, []any{"a", int64(1)}, fromLValue(arr))

	empty := L.NewTable()
	assert.Equal(t, map[string]any{}, fromLValue(empty))
}
