package connectors

import (
	"github.com/grovetools/searchcore/pkg/connector"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

// BreadcrumbProps configures the breadcrumb connector. Attributes must
// match those of the hierarchical menu it follows.
type BreadcrumbProps struct {
	Attributes []string `yaml:"attributes" json:"attributes"`

	TransformItems func([]BreadcrumbItem) []BreadcrumbItem `yaml:"-" json:"-"`
}

func (p BreadcrumbProps) id() string {
	if len(p.Attributes) == 0 {
		return ""
	}
	return p.Attributes[0]
}

// BreadcrumbItem is one level of the refined path.
type BreadcrumbItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func refinedTrail(values []search.HierarchicalFacetValue) []BreadcrumbItem {
	trail := []BreadcrumbItem{}
	for level := values; len(level) > 0; {
		var next []search.HierarchicalFacetValue
		for _, v := range level {
			if v.IsRefined {
				trail = append(trail, BreadcrumbItem{Label: v.Name, Value: v.Path})
				next = v.Data
				break
			}
		}
		level = next
	}
	return trail
}

// Breadcrumb shows the refined path of a hierarchical facet. It contributes
// no search parameters: the hierarchical menu declares the facet.
var Breadcrumb = connector.Connector[BreadcrumbProps]{
	DisplayName: "Breadcrumb",

	GetProvidedProps: func(sc scope.Scope, props BreadcrumbProps, _ state.State, b search.Bundle, _ []refinements.Metadata, _ *search.FacetValuesResults) connector.Props {
		items := []BreadcrumbItem{}
		if values, ok := scope.Results(b, sc).HierarchicalFacetValues(props.id()); ok {
			items = refinedTrail(values)
		}
		if props.TransformItems != nil {
			items = props.TransformItems(items)
		}
		return connector.Props{
			"items":     items,
			"canRefine": len(items) > 0,
		}
	},

	Refine: func(sc scope.Scope, props BreadcrumbProps, st state.State, value interface{}) state.State {
		next, _ := state.String(value)
		return refineAttribute(sc, st, HierarchicalMenuNamespace, props.id(), next)
	},
}
