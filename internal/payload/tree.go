package payload

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Value is a typed JSON tree node. Provider payloads have no fixed schema, so
// instead of decoding into structs we hold the parsed document as a tagged
// union and navigate it with dot paths. Any key may be absent, null, or of an
// unexpected type; navigation never panics, it just reports "not found".
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string
	list []Value
	obj  map[string]Value
}

type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

// Parse decodes raw JSON bytes into a Value tree.
func Parse(raw []byte) (Value, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Value{}, err
	}
	return FromAny(v), nil
}

// FromAny converts a json.Unmarshal-shaped value (map[string]any, []any,
// float64, string, bool, nil) into a Value. Unknown Go types map to null.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{kind: KindNull}
	case bool:
		return Value{kind: KindBool, b: t}
	case float64:
		return Value{kind: KindNumber, num: t}
	case string:
		return Value{kind: KindString, str: t}
	case []any:
		list := make([]Value, 0, len(t))
		for _, item := range t {
			list = append(list, FromAny(item))
		}
		return Value{kind: KindList, list: list}
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, item := range t {
			obj[k] = FromAny(item)
		}
		return Value{kind: KindMap, obj: obj}
	default:
		return Value{kind: KindNull}
	}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Get returns the value under key when v is a map.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	child, ok := v.obj[key]
	return child, ok
}

// Keys returns the map keys of v in sorted order, or nil when v is not a
// map. The fixed order keeps scans over sibling keys deterministic, so the
// same payload always resolves the same way.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Items returns the list elements of v, or nil when v is not a list.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// At resolves a dot-separated path by descending through nested maps one key
// at a time. If any step lands on a non-map node or a missing key, the path
// fails with ok=false. A resolved null also reports ok=false: callers treat
// null the same as absent.
func (v Value) At(path string) (Value, bool) {
	cur := v
	for _, key := range strings.Split(path, ".") {
		next, ok := cur.Get(key)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	if cur.kind == KindNull {
		return Value{}, false
	}
	return cur, true
}

// AsString returns the node's string value. Only native strings qualify.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsNumber returns the node's numeric value. Numeric strings are accepted
// ("120" parses to 120); a string that fails to parse reports ok=false, which
// extraction treats as "not found" for that candidate, never as an error.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// AsBool returns the node's boolean value. Only native booleans qualify.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}
