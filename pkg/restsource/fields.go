package restsource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Fields is an ordered string-keyed mapping. It backs both filter conditions
// and record payloads so that query strings and request bodies come out in the
// order the caller supplied them. The zero value is ready to use.
type Fields struct {
	keys   []string
	values map[string]any
}

// Combine pairs fields and values positionally into a record.
func Combine(fields []string, values []any) (Fields, error) {
	if len(fields) != len(values) {
		return Fields{}, fmt.Errorf("%w: %d fields but %d values", ErrInvalidArgument, len(fields), len(values))
	}
	var f Fields
	for i, name := range fields {
		f.Set(name, values[i])
	}
	return f, nil
}

// FieldsFromMap builds Fields from a plain map. Keys are sorted because Go maps
// carry no order of their own.
func FieldsFromMap(m map[string]any) Fields {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var f Fields
	for _, k := range keys {
		f.Set(k, m[k])
	}
	return f
}

// Set stores value under key. An existing key keeps its position.
func (f *Fields) Set(key string, value any) *Fields {
	if f.values == nil {
		f.values = make(map[string]any)
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
	return f
}

// Get returns the value stored under key.
func (f Fields) Get(key string) (any, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Has reports whether key is present, even with a nil value.
func (f Fields) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Delete removes key if present.
func (f *Fields) Delete(key string) {
	if _, ok := f.values[key]; !ok {
		return
	}
	delete(f.values, key)
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i:i], f.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys.
func (f Fields) Len() int { return len(f.keys) }

// Keys returns the keys in insertion order.
func (f Fields) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Map returns an unordered copy of the fields.
func (f Fields) Map() map[string]any {
	out := make(map[string]any, len(f.keys))
	for _, k := range f.keys {
		out[k] = f.values[k]
	}
	return out
}

// Clone returns an independent working copy. Values are shared, the key set is not.
func (f Fields) Clone() Fields {
	out := Fields{
		keys:   make([]string, len(f.keys)),
		values: make(map[string]any, len(f.keys)),
	}
	copy(out.keys, f.keys)
	for k, v := range f.values {
		out.values[k] = v
	}
	return out
}

// MarshalJSON encodes the fields as a JSON object in insertion order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode renders the fields as a form-encoded query string. Lists become
// key[0]=a&key[1]=b, nested maps key[sub]=v, booleans 1/0, nil values are
// dropped.
func (f Fields) Encode() string {
	parts := make([]string, 0, len(f.keys))
	for _, k := range f.keys {
		parts = appendEncoded(parts, k, f.values[k])
	}
	return strings.Join(parts, "&")
}

func appendEncoded(parts []string, key string, value any) []string {
	switch val := value.(type) {
	case nil:
		return parts
	case Fields:
		for _, k := range val.keys {
			parts = appendEncoded(parts, key+"["+k+"]", val.values[k])
		}
		return parts
	case *Fields:
		if val == nil {
			return parts
		}
		return appendEncoded(parts, key, *val)
	}

	if s, ok := formatScalar(value); ok {
		return append(parts, url.QueryEscape(key)+"="+url.QueryEscape(s))
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			parts = appendEncoded(parts, key+"["+strconv.Itoa(i)+"]", rv.Index(i).Interface())
		}
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, k)
			byKey[k] = iter.Value().Interface()
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = appendEncoded(parts, key+"["+k+"]", byKey[k])
		}
	case reflect.Pointer:
		if !rv.IsNil() {
			parts = appendEncoded(parts, key, rv.Elem().Interface())
		}
	default:
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(fmt.Sprint(value)))
	}
	return parts
}
