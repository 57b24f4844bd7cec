// Package state holds the search state tree shared by all widgets.
//
// A State is a plain map of widget keys to values. Nested objects are stored
// as map[string]interface{} so that the tree round-trips through JSON and
// YAML without conversion. Every helper in this package returns a fresh tree
// and never mutates its input.
package state

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// IndicesKey is the root key under which per-index branches are stored.
const IndicesKey = "indices"

// State represents the serializable search state as a generic map of
// key-value pairs.
type State map[string]interface{}

// New returns an empty state.
func New() State {
	return make(State)
}

// AsMap returns v as a plain map when it is a State or a
// map[string]interface{}.
func AsMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case State:
		return map[string]interface{}(m), true
	case map[string]interface{}:
		return m, true
	}
	return nil, false
}

// Clone returns a deep copy of the state. Maps and slices are copied,
// scalars and functions are shared.
func (s State) Clone() State {
	if s == nil {
		return New()
	}
	return State(cloneMap(s))
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case State:
		return cloneMap(t)
	case map[string]interface{}:
		return cloneMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return v
}

// Get walks a dotted path ("indices.first.menu") and returns the value found.
func (s State) Get(path string) (interface{}, bool) {
	var cur interface{} = map[string]interface{}(s)
	for _, part := range strings.Split(path, ".") {
		m, ok := AsMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether a dotted path exists in the state.
func (s State) Has(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// Branch returns the nested object stored at key, or nil.
func (s State) Branch(key string) map[string]interface{} {
	m, _ := AsMap(s[key])
	return m
}

// Index returns the state branch of a secondary index, if present.
func (s State) Index(indexID string) (State, bool) {
	indices := s.Branch(IndicesKey)
	if indices == nil {
		return nil, false
	}
	m, ok := AsMap(indices[indexID])
	if !ok {
		return nil, false
	}
	return State(m), true
}

// Merge returns a copy of s with the entries of next written over it.
func (s State) Merge(next map[string]interface{}) State {
	out := make(State, len(s)+len(next))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range next {
		out[k] = v
	}
	return out
}

// Omit returns a copy of s without the given keys.
func (s State) Omit(keys ...string) State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Keys returns the top level keys in sorted order.
func (s State) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether two states hold the same tree.
func Equal(a, b State) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(normalize(map[string]interface{}(a)), normalize(map[string]interface{}(b)))
}

func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case State:
		return normalize(map[string]interface{}(t))
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case []string:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	}
	return v
}

// RemoveEmptyKey prunes empty nested objects from a copy of the state.
// Only objects that are already empty are removed; a parent that becomes
// empty because its children were pruned is kept.
func RemoveEmptyKey(s State) State {
	return State(removeEmpty(map[string]interface{}(s.Clone())))
}

func removeEmpty(m map[string]interface{}) map[string]interface{} {
	for k, v := range m {
		child, ok := AsMap(v)
		if !ok {
			continue
		}
		if len(child) == 0 {
			delete(m, k)
			continue
		}
		m[k] = removeEmpty(child)
	}
	return m
}

// Int converts a stored value to an int. Values coming back from JSON are
// float64 and values coming from URLs are strings.
func Int(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case int32:
		return int(t), true
	case uint64:
		return int(t), true
	case float64:
		return int(t), true
	case float32:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// String converts a stored scalar to a string.
func String(v interface{}) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case fmt.Stringer:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return fmt.Sprintf("%v", v), true
}

// Strings converts a stored list to a string slice. A non-empty string is
// treated as a one element list and the empty string as an empty list.
func Strings(v interface{}) []string {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := String(e); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if t == "" {
			return []string{}
		}
		return []string{t}
	}
	return []string{}
}
