// Package connectors holds the stock widget connectors: result lists,
// facet lists, numeric ranges, pagination and the search box, plus the
// registry used to mount them from configuration.
package connectors

import (
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/state"
)

// Facet list defaults.
const (
	DefaultLimit         = 10
	DefaultShowMoreLimit = 20
)

// Namespaces of the state keys owned by the stock connectors.
const (
	MenuNamespace             = "menu"
	RefinementListNamespace   = "refinementList"
	NumericMenuNamespace      = "multiRange"
	HierarchicalMenuNamespace = "hierarchicalMenu"
	ConfigureKey              = "configure"
	QueryKey                  = "query"
)

func namespaced(ns, attr string) string {
	return ns + "." + attr
}

// current returns the stored refinement of id, or def when none is stored.
func current(sc scope.Scope, st state.State, id string, def interface{}) interface{} {
	if v, ok := scope.CurrentRefinementValue(st, sc, id); ok {
		return v
	}
	return def
}

func currentString(sc scope.Scope, st state.State, id, def string) string {
	v := current(sc, st, id, def)
	if s, ok := state.String(v); ok {
		return s
	}
	return def
}

// refineAttribute stores value under ns.attr and resets the page.
func refineAttribute(sc scope.Scope, st state.State, ns, attr string, value interface{}) state.State {
	return scope.RefineValue(st, map[string]interface{}{attr: value}, sc, true, ns)
}

// clearAttribute returns a ClearFunc emptying ns.attr.
func clearAttribute(sc scope.Scope, ns, attr string) refinements.ClearFunc {
	return func(st state.State) state.State {
		return refineAttribute(sc, st, ns, attr, "")
	}
}

func limitFor(limit, showMoreLimit int, showMore bool) int {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if showMoreLimit <= 0 {
		showMoreLimit = DefaultShowMoreLimit
	}
	if showMore {
		return showMoreLimit
	}
	return limit
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func indexOf(sc scope.Scope) string {
	return scope.IndexID(sc)
}
