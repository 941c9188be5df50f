package sim

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/modeshell/internal/host"
)

// encodeValue renders a Lua value as the JSON completion value of a script.
func encodeValue(lv lua.LValue) (host.Value, error) {
	doc, err := sjson.Set("", "v", toGoValue(lv, make(map[*lua.LTable]bool)))
	if err != nil {
		return nil, err
	}
	return host.Value(gjson.Get(doc, "v").Raw), nil
}

// toGoValue converts a Lua value to a Go value, tracking visited tables.
func toGoValue(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return tableToGo(v, visited)
	default:
		return nil
	}
}

// tableToGo converts a Lua table to either a Go map or slice.
func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	if n := t.MaxN(); n > 0 && n == t.Len() {
		count := 0
		t.ForEach(func(_, _ lua.LValue) { count++ })
		if count == n {
			arr := make([]any, n)
			for i := 1; i <= n; i++ {
				arr[i-1] = toGoValue(t.RawGetInt(i), visited)
			}
			return arr
		}
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = fmt.Sprintf("%v", float64(kv))
		default:
			key = k.String()
		}
		if _, ok := v.(*lua.LFunction); ok {
			return
		}
		m[key] = toGoValue(v, visited)
	})
	return m
}
