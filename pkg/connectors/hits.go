package connectors

import (
	"github.com/grovetools/searchcore/pkg/connector"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

// HitsProps configures the hits connector.
type HitsProps struct {
	// HitsPerPage overrides the page size when set.
	HitsPerPage int `yaml:"hits_per_page,omitempty" json:"hits_per_page,omitempty"`
}

// Hits provides the hits of the widget's index.
var Hits = connector.Connector[HitsProps]{
	DisplayName: "Hits",

	GetProvidedProps: func(sc scope.Scope, _ HitsProps, _ state.State, b search.Bundle, _ []refinements.Metadata, _ *search.FacetValuesResults) connector.Props {
		hits := []search.Hit{}
		if r := scope.Results(b, sc); r != nil && r.Hits != nil {
			hits = r.Hits
		}
		return connector.Props{"hits": hits}
	},

	GetSearchParameters: func(_ scope.Scope, params search.Parameters, props HitsProps, _ state.State) search.Parameters {
		if props.HitsPerPage > 0 {
			return params.SetHitsPerPage(props.HitsPerPage)
		}
		return params
	},
}
