package connector

import (
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/pkg/store"
	"github.com/grovetools/searchcore/pkg/widgets"
	"github.com/grovetools/searchcore/state"
)

// Host is the runtime an instance is mounted into.
type Host interface {
	Store() *store.Store
	Widgets() *widgets.Manager
	MainIndex() string

	// OnInternalStateUpdate receives the state produced by a widget refine.
	OnInternalStateUpdate(next state.State)
	// OnSearchStateChange publishes a state change to the embedder.
	OnSearchStateChange(next state.State)
	CreateHrefForState(next state.State) string
	OnSearchForFacetValues(sc scope.Scope, req search.FacetValuesRequest)
}
