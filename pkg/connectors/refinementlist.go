package connectors

import (
	"github.com/grovetools/searchcore/pkg/connector"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

// Operators combining the values of a refinement list.
const (
	OperatorOr  = "or"
	OperatorAnd = "and"
)

// RefinementListProps configures the refinement list connector.
type RefinementListProps struct {
	Attribute         string   `yaml:"attribute" json:"attribute"`
	Operator          string   `yaml:"operator,omitempty" json:"operator,omitempty" jsonschema:"enum=or,enum=and"`
	Limit             int      `yaml:"limit,omitempty" json:"limit,omitempty"`
	ShowMore          bool     `yaml:"show_more,omitempty" json:"show_more,omitempty"`
	ShowMoreLimit     int      `yaml:"show_more_limit,omitempty" json:"show_more_limit,omitempty"`
	Searchable        bool     `yaml:"searchable,omitempty" json:"searchable,omitempty"`
	DefaultRefinement []string `yaml:"default_refinement,omitempty" json:"default_refinement,omitempty"`

	TransformItems func([]RefinementListItem) []RefinementListItem `yaml:"-" json:"-"`
}

// RefinementListItem is one facet value. Value is the full list Refine
// expects once this value is toggled.
type RefinementListItem struct {
	Value       []string `json:"value"`
	Label       string   `json:"label"`
	Count       int      `json:"count"`
	IsRefined   bool     `json:"isRefined"`
	Highlighted string   `json:"highlighted,omitempty"`
}

func refinementListID(props RefinementListProps) string {
	return namespaced(RefinementListNamespace, props.Attribute)
}

func currentRefinementList(sc scope.Scope, props RefinementListProps, st state.State) []string {
	v, ok := scope.CurrentRefinementValue(st, sc, refinementListID(props))
	if !ok {
		if props.DefaultRefinement == nil {
			return []string{}
		}
		return append([]string{}, props.DefaultRefinement...)
	}
	return state.Strings(v)
}

func toggle(list []string, value string) []string {
	out := make([]string, 0, len(list)+1)
	found := false
	for _, v := range list {
		if v == value {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, value)
	}
	return out
}

func without(list []string, value string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

func refinementListItems(sc scope.Scope, props RefinementListProps, st state.State, b search.Bundle, fv *search.FacetValuesResults) ([]RefinementListItem, bool) {
	cur := currentRefinementList(sc, props, st)

	if hits, ok := fv.For(props.Attribute); ok {
		items := make([]RefinementListItem, 0, len(hits))
		for _, h := range hits {
			items = append(items, RefinementListItem{
				Value:       toggle(cur, h.Value),
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
		return []RefinementListItem{}, false
	}
	values := r.FacetValues(props.Attribute, search.ByIsRefined, search.ByCountDesc, search.ByNameAsc)
	items := make([]RefinementListItem, 0, len(values))
	for _, v := range values {
		items = append(items, RefinementListItem{
			Value:     toggle(cur, v.Name),
			Label:     v.Name,
			Count:     v.Count,
			IsRefined: v.IsRefined,
		})
	}
	return items, false
}

// RefinementList is a multiple-choice facet list stored under
// refinementList.<attribute>.
var RefinementList = connector.Connector[RefinementListProps]{
	DisplayName: "RefinementList",
	Namespace:   RefinementListNamespace,

	GetProvidedProps: func(sc scope.Scope, props RefinementListProps, st state.State, b search.Bundle, _ []refinements.Metadata, fv *search.FacetValuesResults) connector.Props {
		items, fromSearch := refinementListItems(sc, props, st, b, fv)
		if props.TransformItems != nil {
			items = props.TransformItems(items)
		}
		if n := limitFor(props.Limit, props.ShowMoreLimit, props.ShowMore); len(items) > n {
			items = items[:n]
		}
		return connector.Props{
			"items":             items,
			"currentRefinement": currentRefinementList(sc, props, st),
			"isFromSearch":      fromSearch,
			"canRefine":         len(items) > 0,
			"searchable":        props.Searchable,
		}
	},

	GetID: func(props RefinementListProps) string { return props.Attribute },

	// An empty selection is stored as "".
	Refine: func(sc scope.Scope, props RefinementListProps, st state.State, value interface{}) state.State {
		var next interface{} = ""
		if values := state.Strings(value); len(values) > 0 {
			next = values
		}
		return refineAttribute(sc, st, RefinementListNamespace, props.Attribute, next)
	},

	SearchForFacetValues: func(_ scope.Scope, props RefinementListProps, _ state.State, query string) search.FacetValuesRequest {
		return search.FacetValuesRequest{
			FacetName:    props.Attribute,
			Query:        query,
			MaxFacetHits: limitFor(props.Limit, props.ShowMoreLimit, props.ShowMore),
		}
	},

	CleanUp: func(sc scope.Scope, props RefinementListProps, st state.State) state.State {
		return scope.CleanUpValue(st, sc, refinementListID(props))
	},

	GetSearchParameters: func(sc scope.Scope, params search.Parameters, props RefinementListProps, st state.State) search.Parameters {
		and := props.Operator == OperatorAnd
		if and {
			params = params.AddFacet(props.Attribute)
		} else {
			params = params.AddDisjunctiveFacet(props.Attribute)
		}
		params = params.SetMaxValuesPerFacet(maxInt(params.MaxValuesPerFacet(), limitFor(props.Limit, props.ShowMoreLimit, props.ShowMore)))
		for _, v := range currentRefinementList(sc, props, st) {
			if and {
				params = params.AddFacetRefinement(props.Attribute, v)
			} else {
				params = params.AddDisjunctiveFacetRefinement(props.Attribute, v)
			}
		}
		return params
	},

	GetMetadata: func(sc scope.Scope, props RefinementListProps, st state.State) refinements.Metadata {
		meta := refinements.Metadata{ID: props.Attribute, Index: indexOf(sc), Items: []refinements.Item{}}
		cur := currentRefinementList(sc, props, st)
		if len(cur) == 0 {
			return meta
		}
		nested := make([]refinements.Item, 0, len(cur))
		for _, v := range cur {
			value := v
			nested = append(nested, refinements.Item{
				Label: value,
				Clear: func(next state.State) state.State {
					remaining := without(currentRefinementList(sc, props, next), value)
					var stored interface{} = ""
					if len(remaining) > 0 {
						stored = remaining
					}
					return refineAttribute(sc, next, RefinementListNamespace, props.Attribute, stored)
				},
			})
		}
		meta.Items = append(meta.Items, refinements.Item{
			Label:             props.Attribute + ": ",
			Attribute:         props.Attribute,
			CurrentRefinement: cur,
			Clear:             clearAttribute(sc, RefinementListNamespace, props.Attribute),
			Items:             nested,
		})
		return meta
	},
}
