// Package scope resolves where a widget's state lives in the search state
// tree.
//
// Widgets targeting the main index read and write the root of the tree.
// Widgets nested in another index scope use the indices.<id> branch, so the
// main index keeps the flat single-index shape even on multi-index pages.
package scope

import (
	"strings"

	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

// PageKey is the state key holding the one-based page.
const PageKey = "page"

// Scope is the explicit index context of a widget. An empty Target means
// the widget has no enclosing index scope.
type Scope struct {
	Main   string `json:"main"`
	Target string `json:"target,omitempty"`
}

// Root returns the scope of a widget mounted directly under the main index.
func Root(main string) Scope {
	return Scope{Main: main}
}

// Nested returns the scope of a widget mounted inside an index scope.
func (s Scope) Nested(target string) Scope {
	return Scope{Main: s.Main, Target: target}
}

// IsScoped reports whether the widget sits inside an index scope.
func (s Scope) IsScoped() bool {
	return s.Target != ""
}

// IndexID returns the index the widget applies to.
func IndexID(s Scope) string {
	if s.Target != "" {
		return s.Target
	}
	return s.Main
}

// HasMultipleIndices reports whether the widget's state lives under
// indices.<target> rather than at the root.
func HasMultipleIndices(s Scope) bool {
	return s.Target != "" && s.Target != s.Main
}

func splitID(id string) (namespace, key string) {
	if i := strings.Index(id, "."); i >= 0 {
		return id[:i], id[i+1:]
	}
	return "", id
}

// Slice returns the part of the tree the widget reads from. A missing
// index branch yields an empty state.
func Slice(st state.State, s Scope) state.State {
	if !HasMultipleIndices(s) {
		if st == nil {
			return state.New()
		}
		return st
	}
	branch, ok := st.Index(IndexID(s))
	if !ok {
		return state.New()
	}
	return branch
}

// CurrentRefinementValue looks id up in the widget's slice. id is either a
// plain key ("page") or "namespace.attribute". A present key is found even
// when its value is empty.
func CurrentRefinementValue(st state.State, s Scope, id string) (interface{}, bool) {
	slice := Slice(st, s)
	ns, key := splitID(id)
	if ns == "" {
		v, ok := slice[key]
		return v, ok
	}
	m, ok := state.AsMap(slice[ns])
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// RefineValue writes next into the widget's slice and returns a new tree.
// With a namespace the entries are merged into that object. resetPage sets
// page to 1 in the written slice; an unscoped widget also resets the page
// of every existing index branch since it refines all of them.
func RefineValue(st state.State, next map[string]interface{}, s Scope, resetPage bool, namespace string) state.State {
	if st == nil {
		st = state.New()
	}
	if HasMultipleIndices(s) {
		return refineMultiIndex(st, next, IndexID(s), resetPage, namespace)
	}
	out := refineSlice(st, next, resetPage, namespace)
	if resetPage && !s.IsScoped() {
		out = resetIndexPages(out)
	}
	return out
}

func refineSlice(slice state.State, next map[string]interface{}, resetPage bool, namespace string) state.State {
	var out state.State
	if namespace == "" {
		out = slice.Merge(next)
	} else {
		inner := state.State(slice.Branch(namespace)).Merge(next)
		out = slice.Merge(map[string]interface{}{namespace: map[string]interface{}(inner)})
	}
	if resetPage {
		out[PageKey] = 1
	}
	return out
}

func refineMultiIndex(st state.State, next map[string]interface{}, indexID string, resetPage bool, namespace string) state.State {
	indices := state.State(st.Branch(state.IndicesKey)).Merge(nil)
	branch := state.State(indices.Branch(indexID))
	indices[indexID] = map[string]interface{}(refineSlice(branch, next, resetPage, namespace))
	return st.Merge(map[string]interface{}{state.IndicesKey: map[string]interface{}(indices)})
}

func resetIndexPages(st state.State) state.State {
	indices := st.Branch(state.IndicesKey)
	if len(indices) == 0 {
		return st
	}
	next := make(map[string]interface{}, len(indices))
	for id, v := range indices {
		branch, ok := state.AsMap(v)
		if !ok {
			next[id] = v
			continue
		}
		next[id] = map[string]interface{}(state.State(branch).Merge(map[string]interface{}{PageKey: 1}))
	}
	st[state.IndicesKey] = next
	return st
}

// CleanUpValue removes id from the widget's slice and returns a new tree.
// A namespace object left empty is kept. Cleaning up an index branch that
// no longer exists is a no-op.
func CleanUpValue(st state.State, s Scope, id string) state.State {
	if st == nil {
		return state.New()
	}
	if !HasMultipleIndices(s) {
		return omit(st, id)
	}
	indexID := IndexID(s)
	branch, ok := st.Index(indexID)
	if !ok {
		return st.Merge(nil)
	}
	indices := state.State(st.Branch(state.IndicesKey)).Merge(map[string]interface{}{
		indexID: map[string]interface{}(omit(branch, id)),
	})
	return st.Merge(map[string]interface{}{state.IndicesKey: map[string]interface{}(indices)})
}

func omit(slice state.State, id string) state.State {
	ns, key := splitID(id)
	if ns == "" {
		return slice.Omit(key)
	}
	inner, ok := state.AsMap(slice[ns])
	if !ok {
		return slice.Merge(nil)
	}
	return slice.Merge(map[string]interface{}{
		ns: map[string]interface{}(state.State(inner).Omit(key)),
	})
}

// Results returns the widget's results, or nil when none exist yet for its
// index.
func Results(b search.Bundle, s Scope) *search.Results {
	return b.For(IndexID(s))
}
