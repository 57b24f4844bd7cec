package connectors

import (
	"github.com/grovetools/searchcore/pkg/connector"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

// PaginationProps configures the pagination connector.
type PaginationProps struct {
	// TotalPages caps the number of pages exposed when set.
	TotalPages int `yaml:"total_pages,omitempty" json:"total_pages,omitempty"`
}

func currentPage(sc scope.Scope, st state.State) int {
	v := current(sc, st, scope.PageKey, 1)
	if page, ok := state.Int(v); ok {
		return page
	}
	return 1
}

// Pagination exposes the one-based page stored under "page".
var Pagination = connector.Connector[PaginationProps]{
	DisplayName: "Pagination",

	GetProvidedProps: func(sc scope.Scope, props PaginationProps, st state.State, b search.Bundle, _ []refinements.Metadata, _ *search.FacetValuesResults) connector.Props {
		r := scope.Results(b, sc)
		if r == nil {
			return nil
		}
		nbPages := r.NbPages
		if props.TotalPages > 0 && props.TotalPages < nbPages {
			nbPages = props.TotalPages
		}
		return connector.Props{
			"currentRefinement": currentPage(sc, st),
			"nbPages":           nbPages,
			"canRefine":         nbPages > 1,
		}
	},

	GetID: func(PaginationProps) string { return scope.PageKey },

	// Paging keeps the rest of the state so no page reset happens here.
	Refine: func(sc scope.Scope, _ PaginationProps, st state.State, value interface{}) state.State {
		return scope.RefineValue(st, map[string]interface{}{scope.PageKey: value}, sc, false, "")
	},

	CleanUp: func(sc scope.Scope, _ PaginationProps, st state.State) state.State {
		return scope.CleanUpValue(st, sc, scope.PageKey)
	},

	GetSearchParameters: func(sc scope.Scope, params search.Parameters, _ PaginationProps, st state.State) search.Parameters {
		return params.SetPage(currentPage(sc, st) - 1)
	},

	GetMetadata: func(scope.Scope, PaginationProps, state.State) refinements.Metadata {
		return refinements.Metadata{ID: scope.PageKey}
	},
}
