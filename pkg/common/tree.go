package common

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Tree is a read-only view over a decoded mapping. Keys are read either
// directly with Get, or as a dotted attribute path with Lookup and the typed
// GetX accessors, where "a.b" reads key "b" of the mapping stored under "a".
// Nested mappings are returned as *Tree.
//
// Integers are held as int64 and floats as float64 whatever document format
// they were decoded from.
type Tree struct {
	values map[string]any
}

func newTree(values map[string]any) *Tree {
	if values == nil {
		values = map[string]any{}
	}

	return &Tree{values: values}
}

// Len returns the number of top-level keys.
func (t *Tree) Len() int {
	return len(t.values)
}

// Keys returns the top-level keys in sorted order.
func (t *Tree) Keys() []string {
	keys := make([]string, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Has reports whether key is present at the top level.
func (t *Tree) Has(key string) bool {
	_, ok := t.values[key]

	return ok
}

// Get returns the value stored under key.
func (t *Tree) Get(key string) (any, error) {
	v, ok := t.values[key]
	if !ok {
		return nil, errors.Wrapf(ErrKeyNotFound, "%q", key)
	}

	return export(v), nil
}

// Lookup returns the value at a dotted attribute path.
func (t *Tree) Lookup(path string) (any, error) {
	parts := strings.Split(path, ".")
	current := t.values

	for i, part := range parts {
		v, ok := current[part]
		if !ok {
			return nil, errors.Wrapf(ErrKeyNotFound, "%q", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return export(v), nil
		}

		next, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Wrapf(ErrWrongType, "%q is not a mapping", strings.Join(parts[:i+1], "."))
		}

		current = next
	}

	return nil, errors.Wrapf(ErrKeyNotFound, "%q", path)
}

// GetTree returns the mapping at path.
func (t *Tree) GetTree(path string) (*Tree, error) {
	v, err := t.Lookup(path)
	if err != nil {
		return nil, err
	}

	sub, ok := v.(*Tree)
	if !ok {
		return nil, wrongType(path, "mapping", v)
	}

	return sub, nil
}

// GetString returns the string at path.
func (t *Tree) GetString(path string) (string, error) {
	v, err := t.Lookup(path)
	if err != nil {
		return "", err
	}

	s, ok := v.(string)
	if !ok {
		return "", wrongType(path, "string", v)
	}

	return s, nil
}

// GetInt returns the integer at path. Floats without a fractional part are
// accepted.
func (t *Tree) GetInt(path string) (int64, error) {
	v, err := t.Lookup(path)
	if err != nil {
		return 0, err
	}

	switch n := v.(type) {
	case int64:
		return n, nil
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64 {
			return int64(n), nil
		}
	}

	return 0, wrongType(path, "integer", v)
}

// GetFloat returns the number at path as a float64.
func (t *Tree) GetFloat(path string) (float64, error) {
	v, err := t.Lookup(path)
	if err != nil {
		return 0, err
	}

	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	}

	return 0, wrongType(path, "number", v)
}

// GetBool returns the boolean at path.
func (t *Tree) GetBool(path string) (bool, error) {
	v, err := t.Lookup(path)
	if err != nil {
		return false, err
	}

	b, ok := v.(bool)
	if !ok {
		return false, wrongType(path, "bool", v)
	}

	return b, nil
}

// GetSlice returns a copy of the sequence at path.
func (t *Tree) GetSlice(path string) ([]any, error) {
	v, err := t.Lookup(path)
	if err != nil {
		return nil, err
	}

	s, ok := v.([]any)
	if !ok {
		return nil, wrongType(path, "sequence", v)
	}

	return s, nil
}

// Map returns a deep copy of the tree as plain maps and slices.
func (t *Tree) Map() map[string]any {
	out, _ := deepCopy(t.values).(map[string]any)

	return out
}

// Decode decodes the tree into out, usually a pointer to a schema struct
// with yaml tags. When out has a Validate() error method it is called
// afterwards so missing required fields fail here rather than mid-run.
func (t *Tree) Decode(out any) error {
	data, err := yaml.Marshal(t.values)
	if err != nil {
		return newError("decode", fmt.Sprintf("%T", out), ErrWrongType, err)
	}

	err = yaml.Unmarshal(data, out)
	if err != nil {
		return newError("decode", fmt.Sprintf("%T", out), ErrWrongType, err)
	}

	if v, ok := out.(interface{ Validate() error }); ok {
		return v.Validate()
	}

	return nil
}

func wrongType(path, want string, got any) error {
	return errors.Wrapf(ErrWrongType, "%q is %T, not %s", path, got, want)
}

// export returns v as handed to callers: mappings become *Tree and
// sequences are copied so the tree cannot be mutated through them.
func export(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return newTree(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = export(item)
		}

		return out
	default:
		return v
	}
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopy(item)
		}

		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}

		return out
	case []byte:
		return append([]byte(nil), val...)
	default:
		return v
	}
}

// normalize converts decoded documents to the value set Tree exposes:
// string keyed maps, []any, int64 and float64.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}

		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}

		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}

		return out
	case json.Number:
		if !strings.ContainsAny(val.String(), ".eE") {
			if i, err := val.Int64(); err == nil {
				return i
			}
		}
		f, err := val.Float64()
		if err != nil {
			return val.String()
		}

		return f
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return normalizeUint(uint64(val))
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return normalizeUint(val)
	case float32:
		return float64(val)
	default:
		return v
	}
}

func normalizeUint(u uint64) any {
	if u > math.MaxInt64 {
		return float64(u)
	}

	return int64(u)
}
