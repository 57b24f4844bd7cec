// Package refinements aggregates the metadata widgets publish about their
// active refinements.
package refinements

import (
	"github.com/grovetools/searchcore/state"
)

// ClearFunc removes one refinement from a state tree and returns the new tree.
type ClearFunc func(state.State) state.State

// Item is one active refinement. Multi-valued refinements carry one nested
// item per value.
type Item struct {
	Label             string      `json:"label"`
	Attribute         string      `json:"attribute"`
	CurrentRefinement interface{} `json:"currentRefinement"`
	Clear             ClearFunc   `json:"-"`
	Items             []Item      `json:"items,omitempty"`
}

// Metadata is what a widget reports about itself on each recomputation.
type Metadata struct {
	ID    string `json:"id"`
	Index string `json:"index,omitempty"`
	Items []Item `json:"items,omitempty"`
}

// Options filters the aggregated refinement list.
type Options struct {
	// ClearsQuery keeps the search box entry in the list.
	ClearsQuery bool
	// Index restricts the list to one index when set.
	Index string
}

// QueryID is the metadata id of the search box.
const QueryID = "query"

// Aggregate flattens the metadata of all widgets into the list of active
// refinements, in widget order.
func Aggregate(metadata []Metadata, opts Options) []Item {
	items := []Item{}
	for _, m := range metadata {
		if opts.Index != "" && m.Index != "" && m.Index != opts.Index {
			continue
		}
		if m.ID == QueryID && !opts.ClearsQuery {
			continue
		}
		items = append(items, m.Items...)
	}
	return items
}

// Clears returns the clear functions of items, nested items excluded.
func Clears(items []Item) []ClearFunc {
	out := make([]ClearFunc, 0, len(items))
	for _, it := range items {
		if it.Clear != nil {
			out = append(out, it.Clear)
		}
	}
	return out
}

// Apply runs every clear function in order over st.
func Apply(st state.State, clears ...ClearFunc) state.State {
	out := st.Clone()
	for _, clear := range clears {
		out = clear(out)
	}
	return out
}

// IDs lists the metadata ids in widget order.
func IDs(metadata []Metadata) []string {
	ids := make([]string, 0, len(metadata))
	for _, m := range metadata {
		ids = append(ids, m.ID)
	}
	return ids
}
