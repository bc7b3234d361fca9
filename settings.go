package templua

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"gopkg.in/yaml.v3"
)

// ParseSettings parses a settings file written as a Lua table literal.
// A leading "return" is optional. The result must be a table; its entries
// are converted to plain Go values with recognized and unrecognized keys
// alike preserved.
func ParseSettings(data []byte) (Settings, error) {
	src := strings.TrimSpace(string(data))
	if !strings.HasPrefix(src, "return") {
		src = "return " + src
	}
	L := lua.NewState()
	defer L.Close()
	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettingsInvalid, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: expected a table, got %s", ErrSettingsInvalid, ret.Type())
	}
	m, ok := fromLValue(tbl).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected string keys", ErrSettingsInvalid)
	}
	return Settings(m), nil
}

// ParseSettingsYAML parses a settings file written as a YAML mapping.
func ParseSettingsYAML(data []byte) (Settings, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettingsInvalid, err)
	}
	if m == nil {
		m = make(map[string]any)
	}
	return Settings(m), nil
}
