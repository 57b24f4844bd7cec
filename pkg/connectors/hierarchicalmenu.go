package connectors

import (
	"strings"

	"github.com/grovetools/searchcore/pkg/connector"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

// DefaultSeparator joins the levels of a hierarchical path.
const DefaultSeparator = " > "

// HierarchicalMenuProps configures the hierarchical menu connector.
// Attributes lists one attribute per level, root first.
type HierarchicalMenuProps struct {
	Attributes        []string `yaml:"attributes" json:"attributes"`
	Separator         string   `yaml:"separator,omitempty" json:"separator,omitempty"`
	RootPath          string   `yaml:"root_path,omitempty" json:"root_path,omitempty"`
	ShowParentLevel   *bool    `yaml:"show_parent_level,omitempty" json:"show_parent_level,omitempty"`
	Limit             int      `yaml:"limit,omitempty" json:"limit,omitempty"`
	ShowMore          bool     `yaml:"show_more,omitempty" json:"show_more,omitempty"`
	ShowMoreLimit     int      `yaml:"show_more_limit,omitempty" json:"show_more_limit,omitempty"`
	DefaultRefinement string   `yaml:"default_refinement,omitempty" json:"default_refinement,omitempty"`

	TransformItems func([]HierarchicalMenuItem) []HierarchicalMenuItem `yaml:"-" json:"-"`
}

func (p HierarchicalMenuProps) id() string {
	if len(p.Attributes) == 0 {
		return ""
	}
	return p.Attributes[0]
}

func (p HierarchicalMenuProps) separator() string {
	if p.Separator == "" {
		return DefaultSeparator
	}
	return p.Separator
}

func (p HierarchicalMenuProps) facet() search.HierarchicalFacet {
	show := true
	if p.ShowParentLevel != nil {
		show = *p.ShowParentLevel
	}
	return search.HierarchicalFacet{
		Name:            p.id(),
		Attributes:      p.Attributes,
		Separator:       p.separator(),
		RootPath:        p.RootPath,
		ShowParentLevel: show,
	}
}

// HierarchicalMenuItem is one node of the menu. Value is the path Refine
// expects when the node is selected; selecting the refined node moves the
// refinement up one level.
type HierarchicalMenuItem struct {
	Label     string                 `json:"label"`
	Value     string                 `json:"value"`
	Count     int                    `json:"count"`
	IsRefined bool                   `json:"isRefined"`
	Items     []HierarchicalMenuItem `json:"items,omitempty"`
}

func hierarchicalMenuID(props HierarchicalMenuProps) string {
	return namespaced(HierarchicalMenuNamespace, props.id())
}

func currentHierarchicalMenu(sc scope.Scope, props HierarchicalMenuProps, st state.State) string {
	return currentString(sc, st, hierarchicalMenuID(props), props.DefaultRefinement)
}

// nextPath returns the refinement selecting path given the current one.
func nextPath(cur, path, separator string) string {
	if cur == "" || path != cur {
		return path
	}
	if i := strings.LastIndex(path, separator); i >= 0 {
		return path[:i]
	}
	return ""
}

func hierarchicalItems(values []search.HierarchicalFacetValue, cur, separator string) []HierarchicalMenuItem {
	items := make([]HierarchicalMenuItem, 0, len(values))
	for _, v := range values {
		item := HierarchicalMenuItem{
			Label:     v.Name,
			Value:     nextPath(cur, v.Path, separator),
			Count:     v.Count,
			IsRefined: v.IsRefined,
		}
		if len(v.Data) > 0 {
			item.Items = hierarchicalItems(v.Data, cur, separator)
		}
		items = append(items, item)
	}
	return items
}

func truncateItems(items []HierarchicalMenuItem, n int) []HierarchicalMenuItem {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]HierarchicalMenuItem, len(items))
	for i, it := range items {
		if it.Items != nil {
			it.Items = truncateItems(it.Items, n)
		}
		out[i] = it
	}
	return out
}

// HierarchicalMenu navigates a multi-level facet stored under
// hierarchicalMenu.<first attribute>.
var HierarchicalMenu = connector.Connector[HierarchicalMenuProps]{
	DisplayName: "HierarchicalMenu",
	Namespace:   HierarchicalMenuNamespace,

	GetProvidedProps: func(sc scope.Scope, props HierarchicalMenuProps, st state.State, b search.Bundle, _ []refinements.Metadata, _ *search.FacetValuesResults) connector.Props {
		cur := currentHierarchicalMenu(sc, props, st)
		var currentRefinement interface{}
		if cur != "" {
			currentRefinement = cur
		}

		items := []HierarchicalMenuItem{}
		if values, ok := scope.Results(b, sc).HierarchicalFacetValues(props.id()); ok {
			items = hierarchicalItems(values, cur, props.separator())
		}
		if props.TransformItems != nil {
			items = props.TransformItems(items)
		}
		items = truncateItems(items, limitFor(props.Limit, props.ShowMoreLimit, props.ShowMore))
		return connector.Props{
			"items":             items,
			"currentRefinement": currentRefinement,
			"canRefine":         len(items) > 0,
		}
	},

	GetID: func(props HierarchicalMenuProps) string { return props.id() },

	Refine: func(sc scope.Scope, props HierarchicalMenuProps, st state.State, value interface{}) state.State {
		next, _ := state.String(value)
		return refineAttribute(sc, st, HierarchicalMenuNamespace, props.id(), next)
	},

	CleanUp: func(sc scope.Scope, props HierarchicalMenuProps, st state.State) state.State {
		return scope.CleanUpValue(st, sc, hierarchicalMenuID(props))
	},

	GetSearchParameters: func(sc scope.Scope, params search.Parameters, props HierarchicalMenuProps, st state.State) search.Parameters {
		params = params.AddHierarchicalFacet(props.facet())
		params = params.SetMaxValuesPerFacet(maxInt(params.MaxValuesPerFacet(), limitFor(props.Limit, props.ShowMoreLimit, props.ShowMore)))
		if cur := currentHierarchicalMenu(sc, props, st); cur != "" {
			params = params.AddHierarchicalFacetRefinement(props.id(), cur)
		}
		return params
	},

	GetMetadata: func(sc scope.Scope, props HierarchicalMenuProps, st state.State) refinements.Metadata {
		id := props.id()
		meta := refinements.Metadata{ID: id, Index: indexOf(sc), Items: []refinements.Item{}}
		cur := currentHierarchicalMenu(sc, props, st)
		if cur == "" {
			return meta
		}
		meta.Items = append(meta.Items, refinements.Item{
			Label:             id + ": " + cur,
			Attribute:         id,
			CurrentRefinement: cur,
			Clear:             clearAttribute(sc, HierarchicalMenuNamespace, id),
		})
		return meta
	},
}
