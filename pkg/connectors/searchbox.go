package connectors

import (
	"github.com/grovetools/searchcore/pkg/connector"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

// SearchBoxProps configures the search box connector.
type SearchBoxProps struct {
	DefaultRefinement string `yaml:"default_refinement,omitempty" json:"default_refinement,omitempty"`
}

func currentQuery(sc scope.Scope, props SearchBoxProps, st state.State) string {
	return currentString(sc, st, QueryKey, props.DefaultRefinement)
}

// SearchBox owns the full text query stored under "query".
var SearchBox = connector.Connector[SearchBoxProps]{
	DisplayName: "SearchBox",

	GetProvidedProps: func(sc scope.Scope, props SearchBoxProps, st state.State, b search.Bundle, _ []refinements.Metadata, _ *search.FacetValuesResults) connector.Props {
		return connector.Props{
			"currentRefinement": currentQuery(sc, props, st),
			"isSearchStalled":   b.IsSearchStalled,
		}
	},

	GetID: func(SearchBoxProps) string { return QueryKey },

	Refine: func(sc scope.Scope, _ SearchBoxProps, st state.State, value interface{}) state.State {
		q, _ := state.String(value)
		return scope.RefineValue(st, map[string]interface{}{QueryKey: q}, sc, true, "")
	},

	CleanUp: func(sc scope.Scope, _ SearchBoxProps, st state.State) state.State {
		return scope.CleanUpValue(st, sc, QueryKey)
	},

	GetSearchParameters: func(sc scope.Scope, params search.Parameters, props SearchBoxProps, st state.State) search.Parameters {
		return params.SetQuery(currentQuery(sc, props, st))
	},

	GetMetadata: func(sc scope.Scope, props SearchBoxProps, st state.State) refinements.Metadata {
		meta := refinements.Metadata{ID: QueryKey, Index: indexOf(sc), Items: []refinements.Item{}}
		q := currentQuery(sc, props, st)
		if q == "" {
			return meta
		}
		meta.Items = append(meta.Items, refinements.Item{
			Label:             QueryKey + ": " + q,
			Attribute:         QueryKey,
			CurrentRefinement: q,
			Clear: func(next state.State) state.State {
				return scope.RefineValue(next, map[string]interface{}{QueryKey: ""}, sc, true, "")
			},
		})
		return meta
	},
}
