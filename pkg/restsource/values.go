package restsource

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// isEmpty reports whether v counts as "not set" for ids, actions and paging
// directives: nil, false, zero numbers, "", "0" and empty lists or maps.
func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case string:
		return val == "" || val == "0"
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f == 0
		}
		return val == ""
	case int:
		return val == 0
	case int8:
		return val == 0
	case int16:
		return val == 0
	case int32:
		return val == 0
	case int64:
		return val == 0
	case uint:
		return val == 0
	case uint8:
		return val == 0
	case uint16:
		return val == 0
	case uint32:
		return val == 0
	case uint64:
		return val == 0
	case float32:
		return val == 0
	case float64:
		return val == 0
	case Fields:
		return val.Len() == 0
	case *Fields:
		return val == nil || val.Len() == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// formatScalar renders a scalar the way it appears in a URL path segment or a
// query value. ok is false for values that have no scalar form.
func formatScalar(v any) (s string, ok bool) {
	switch val := v.(type) {
	case nil:
		return "", true
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		if val {
			return "1", true
		}
		return "0", true
	case int:
		return strconv.Itoa(val), true
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(val).Int(), 10), true
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(val).Uint(), 10), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case fmt.Stringer:
		return val.String(), true
	}
	return "", false
}

// segment renders v for use inside a URL path.
func segment(v any) string {
	if s, ok := formatScalar(v); ok {
		return s
	}
	return fmt.Sprint(v)
}
