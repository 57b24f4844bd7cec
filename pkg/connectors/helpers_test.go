package connectors

import (
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
)

var (
	root  = scope.Root("index")
	multi = scope.Root("first").Nested("second")
)

func facetResults(attr string, values ...search.FacetValue) *search.Results {
	return &search.Results{
		Index:  "index",
		Facets: map[string][]search.FacetValue{attr: values},
	}
}

func single(r *search.Results) search.Bundle {
	return search.Bundle{Results: r}
}

func ptr(f float64) *float64 { return &f }
