package connectors

import (
	"github.com/grovetools/searchcore/pkg/connector"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

// MenuProps configures the menu connector.
type MenuProps struct {
	Attribute         string `yaml:"attribute" json:"attribute"`
	Limit             int    `yaml:"limit,omitempty" json:"limit,omitempty"`
	ShowMore          bool   `yaml:"show_more,omitempty" json:"show_more,omitempty"`
	ShowMoreLimit     int    `yaml:"show_more_limit,omitempty" json:"show_more_limit,omitempty"`
	Searchable        bool   `yaml:"searchable,omitempty" json:"searchable,omitempty"`
	DefaultRefinement string `yaml:"default_refinement,omitempty" json:"default_refinement,omitempty"`

	TransformItems func([]MenuItem) []MenuItem `yaml:"-" json:"-"`
}

// MenuItem is one selectable value. Value is what Refine expects: the empty
// string for the current refinement, which toggles it off.
type MenuItem struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Count       int    `json:"count"`
	IsRefined   bool   `json:"isRefined"`
	Highlighted string `json:"highlighted,omitempty"`
}

func menuID(props MenuProps) string {
	return namespaced(MenuNamespace, props.Attribute)
}

func currentMenu(sc scope.Scope, props MenuProps, st state.State) string {
	return currentString(sc, st, menuID(props), props.DefaultRefinement)
}

func menuItems(sc scope.Scope, props MenuProps, st state.State, b search.Bundle, fv *search.FacetValuesResults) ([]MenuItem, bool) {
	cur := currentMenu(sc, props, st)

	if hits, ok := fv.For(props.Attribute); ok {
		items := make([]MenuItem, 0, len(hits))
		for _, h := range hits {
			items = append(items, MenuItem{
				Value:       h.Value,
				Label:       h.Value,
				Count:       h.Count,
				IsRefined:   h.IsRefined,
				Highlighted: h.Highlighted,
			})
		}
		return items, true
	}

	r := scope.Results(b, sc)
	if !r.HasFacet(props.Attribute) {
		return []MenuItem{}, false
	}
	order := search.DefaultFacetOrder
	if props.Searchable {
		order = []search.FacetOrder{search.ByIsRefined, search.ByCountDesc, search.ByNameAsc}
	}
	values := r.FacetValues(props.Attribute, order...)
	items := make([]MenuItem, 0, len(values))
	for _, v := range values {
		value := v.Name
		if v.Name == cur {
			value = ""
		}
		items = append(items, MenuItem{Value: value, Label: v.Name, Count: v.Count, IsRefined: v.IsRefined})
	}
	return items, false
}

// Menu is a single-choice facet list stored under menu.<attribute>.
var Menu = connector.Connector[MenuProps]{
	DisplayName: "Menu",
	Namespace:   MenuNamespace,

	GetProvidedProps: func(sc scope.Scope, props MenuProps, st state.State, b search.Bundle, _ []refinements.Metadata, fv *search.FacetValuesResults) connector.Props {
		items, fromSearch := menuItems(sc, props, st, b, fv)
		if props.TransformItems != nil {
			items = props.TransformItems(items)
		}
		if n := limitFor(props.Limit, props.ShowMoreLimit, props.ShowMore); len(items) > n {
			items = items[:n]
		}

		var cur interface{}
		if c := currentMenu(sc, props, st); c != "" {
			cur = c
		}
		return connector.Props{
			"items":             items,
			"currentRefinement": cur,
			"isFromSearch":      fromSearch,
			"canRefine":         len(items) > 0,
			"searchable":        props.Searchable,
		}
	},

	GetID: func(props MenuProps) string { return props.Attribute },

	Refine: func(sc scope.Scope, props MenuProps, st state.State, value interface{}) state.State {
		next, _ := state.String(value)
		return refineAttribute(sc, st, MenuNamespace, props.Attribute, next)
	},

	SearchForFacetValues: func(_ scope.Scope, props MenuProps, _ state.State, query string) search.FacetValuesRequest {
		return search.FacetValuesRequest{
			FacetName:    props.Attribute,
			Query:        query,
			MaxFacetHits: limitFor(props.Limit, props.ShowMoreLimit, props.ShowMore),
		}
	},

	CleanUp: func(sc scope.Scope, props MenuProps, st state.State) state.State {
		return scope.CleanUpValue(st, sc, menuID(props))
	},

	GetSearchParameters: func(sc scope.Scope, params search.Parameters, props MenuProps, st state.State) search.Parameters {
		params = params.AddDisjunctiveFacet(props.Attribute)
		params = params.SetMaxValuesPerFacet(maxInt(params.MaxValuesPerFacet(), limitFor(props.Limit, props.ShowMoreLimit, props.ShowMore)))
		if cur := currentMenu(sc, props, st); cur != "" {
			params = params.AddDisjunctiveFacetRefinement(props.Attribute, cur)
		}
		return params
	},

	GetMetadata: func(sc scope.Scope, props MenuProps, st state.State) refinements.Metadata {
		meta := refinements.Metadata{ID: props.Attribute, Index: indexOf(sc), Items: []refinements.Item{}}
		cur := currentMenu(sc, props, st)
		if cur == "" {
			return meta
		}
		meta.Items = append(meta.Items, refinements.Item{
			Label:             props.Attribute + ": " + cur,
			Attribute:         props.Attribute,
			CurrentRefinement: cur,
			Clear:             clearAttribute(sc, MenuNamespace, props.Attribute),
		})
		return meta
	},
}
