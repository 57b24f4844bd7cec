package instantsearch

import (
	"sync"

	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/pkg/widgets"
	"github.com/grovetools/searchcore/state"
)

// Index is an index scope. Widgets mounted with its Scope() query
// IndexName and keep their state under indices.<IndexID>.
type Index struct {
	manager *Manager
	id      string

	mu         sync.Mutex
	indexName  string
	unregister func()
}

// MountIndex registers an index scope. indexID defaults to indexName.
func (m *Manager) MountIndex(indexName, indexID string) *Index {
	if indexID == "" {
		indexID = indexName
	}
	idx := &Index{manager: m, id: indexID, indexName: indexName}
	idx.unregister = m.widgets.Register(idx)
	return idx
}

// ID returns the scope id used in the state tree.
func (x *Index) ID() string { return x.id }

// IndexName returns the queried index.
func (x *Index) IndexName() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.indexName
}

// SetIndexName switches the queried index and schedules a search.
func (x *Index) SetIndexName(name string) {
	x.mu.Lock()
	if x.indexName == name {
		x.mu.Unlock()
		return
	}
	x.indexName = name
	x.mu.Unlock()
	x.manager.widgets.Update()
}

// Unmount unregisters the scope. Calling it twice is a no-op.
func (x *Index) Unmount() {
	x.mu.Lock()
	unregister := x.unregister
	x.unregister = nil
	x.mu.Unlock()
	if unregister != nil {
		unregister()
	}
}

// Capabilities implements widgets.Widget.
func (x *Index) Capabilities() widgets.Capabilities {
	return widgets.ComputesSearchParameters | widgets.IndexScope
}

// Scope implements widgets.Widget. Child widgets are mounted with it.
func (x *Index) Scope() scope.Scope {
	return scope.Root(x.manager.MainIndex()).Nested(x.id)
}

// SearchParameters implements widgets.Widget.
func (x *Index) SearchParameters(params search.Parameters, _ state.State) search.Parameters {
	return params.SetIndex(x.IndexName())
}

// Metadata implements widgets.Widget.
func (x *Index) Metadata(state.State) refinements.Metadata {
	return refinements.Metadata{}
}

// TransitionState implements widgets.Widget.
func (x *Index) TransitionState(_, next state.State) state.State {
	return next
}
