package connectors

import (
	"github.com/grovetools/searchcore/pkg/connector"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

// StateResultsProps configures the state results connector.
type StateResultsProps struct{}

// StateResults exposes the raw state and results of the widget's index.
var StateResults = connector.Connector[StateResultsProps]{
	DisplayName: "StateResults",

	GetProvidedProps: func(sc scope.Scope, _ StateResultsProps, st state.State, b search.Bundle, _ []refinements.Metadata, _ *search.FacetValuesResults) connector.Props {
		var errMsg string
		if b.Error != nil {
			errMsg = b.Error.Error()
		}
		return connector.Props{
			"searchState":             st,
			"searchResults":           scope.Results(b, sc),
			"allSearchResults":        b.ResultsByIndex,
			"searching":               b.Searching,
			"isSearchStalled":         b.IsSearchStalled,
			"searchingForFacetValues": b.SearchingForFacetValues,
			"error":                   errMsg,
		}
	},
}
