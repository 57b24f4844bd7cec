// Package store provides the process-wide observable store holding the
// search state tree, the latest results and the status flags.
package store

import (
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

// Snapshot is the complete view of the store. Snapshots are values: the
// state tree inside is never mutated in place, so a copy is safe to keep.
type Snapshot struct {
	Widgets                 state.State                `json:"widgets"`
	Metadata                []refinements.Metadata     `json:"metadata"`
	Results                 *search.Results            `json:"results,omitempty"`
	ResultsByIndex          map[string]*search.Results `json:"resultsByIndex,omitempty"`
	ResultsFacetValues      *search.FacetValuesResults `json:"resultsFacetValues,omitempty"`
	Searching               bool                       `json:"searching"`
	SearchingForFacetValues bool                       `json:"searchingForFacetValues"`
	IsSearchStalled         bool                       `json:"isSearchStalled"`
	Error                   error                      `json:"-"`
}

// Bundle returns the results view handed to widgets.
func (s Snapshot) Bundle() search.Bundle {
	return search.Bundle{
		Results:                 s.Results,
		ResultsByIndex:          s.ResultsByIndex,
		Searching:               s.Searching,
		SearchingForFacetValues: s.SearchingForFacetValues,
		IsSearchStalled:         s.IsSearchStalled,
		Error:                   s.Error,
	}
}

// ErrorMessage returns the last search error as text.
func (s Snapshot) ErrorMessage() string {
	if s.Error == nil {
		return ""
	}
	return s.Error.Error()
}

// UpdateType defines what kind of change an Update carries.
type UpdateType string

const (
	UpdateState        UpdateType = "state"
	UpdateConfigReload UpdateType = "config_reload"
)

// Update is delivered to Watch channels.
type Update struct {
	Type     UpdateType
	Source   string // e.g. "store", "config"
	Snapshot Snapshot
	Payload  interface{}
}

// Listener is notified synchronously after every Set.
type Listener func(Snapshot)
