package connectors

import (
	"encoding/json"

	"github.com/grovetools/searchcore/pkg/connector"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

// CurrentRefinementsProps configures the current refinements connector.
type CurrentRefinementsProps struct {
	// ClearsQuery lists the search box entry along with the filters.
	ClearsQuery bool `yaml:"clears_query,omitempty" json:"clears_query,omitempty"`
	// IndexOnly restricts the list to the widget's own index.
	IndexOnly bool `yaml:"index_only,omitempty" json:"index_only,omitempty"`

	TransformItems func([]refinements.Item) []refinements.Item `yaml:"-" json:"-"`
}

func clearsFrom(value interface{}) []refinements.ClearFunc {
	switch v := value.(type) {
	case refinements.ClearFunc:
		return []refinements.ClearFunc{v}
	case func(state.State) state.State:
		return []refinements.ClearFunc{v}
	case []refinements.ClearFunc:
		return v
	case refinements.Item:
		return refinements.Clears([]refinements.Item{v})
	case []refinements.Item:
		return refinements.Clears(v)
	}
	return nil
}

// sameItems compares items without their clear functions.
func sameItems(a, b connector.Props) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}

// CurrentRefinements lists the active refinements published by the other
// widgets. Refine takes one item, a list of items or their clear functions.
var CurrentRefinements = connector.Connector[CurrentRefinementsProps]{
	DisplayName: "CurrentRefinements",

	GetProvidedProps: func(sc scope.Scope, props CurrentRefinementsProps, _ state.State, _ search.Bundle, metadata []refinements.Metadata, _ *search.FacetValuesResults) connector.Props {
		opts := refinements.Options{ClearsQuery: props.ClearsQuery}
		if props.IndexOnly {
			opts.Index = indexOf(sc)
		}
		items := refinements.Aggregate(metadata, opts)
		if props.TransformItems != nil {
			items = props.TransformItems(items)
		}
		return connector.Props{
			"items":     items,
			"canRefine": len(items) > 0,
		}
	},

	Refine: func(_ scope.Scope, _ CurrentRefinementsProps, st state.State, value interface{}) state.State {
		return refinements.Apply(st, clearsFrom(value)...)
	},

	ShouldUpdate: func(_, _ CurrentRefinementsProps, prev, next connector.Props) bool {
		return !sameItems(prev, next)
	},
}
