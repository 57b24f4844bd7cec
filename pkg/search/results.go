package search

import (
	"sort"
)

// Hit is one matched record.
type Hit map[string]interface{}

// FacetValue is one entry of a facet distribution.
type FacetValue struct {
	Name      string `json:"name"`
	Count     int    `json:"count"`
	IsRefined bool   `json:"isRefined"`
}

// HierarchicalFacetValue is a node of a hierarchical facet tree. Data holds
// the children of refined nodes.
type HierarchicalFacetValue struct {
	Name      string                   `json:"name"`
	Path      string                   `json:"path"`
	Count     int                      `json:"count"`
	IsRefined bool                     `json:"isRefined"`
	Data      []HierarchicalFacetValue `json:"data,omitempty"`
}

// FacetStats summarizes the numeric values of a facet.
type FacetStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	Sum float64 `json:"sum"`
}

// Results is the response for one query.
type Results struct {
	Index            string                              `json:"index"`
	Query            string                              `json:"query"`
	Hits             []Hit                               `json:"hits"`
	NbHits           int                                 `json:"nbHits"`
	NbPages          int                                 `json:"nbPages"`
	Page             int                                 `json:"page"`
	HitsPerPage      int                                 `json:"hitsPerPage"`
	ProcessingTimeMS int64                               `json:"processingTimeMS"`
	Facets           map[string][]FacetValue             `json:"facets,omitempty"`
	Hierarchical     map[string][]HierarchicalFacetValue `json:"hierarchicalFacets,omitempty"`
	Stats            map[string]FacetStats               `json:"facets_stats,omitempty"`
}

// FacetOrder is a sort criterion for facet values.
type FacetOrder int

const (
	// ByIsRefined puts refined values first.
	ByIsRefined FacetOrder = iota
	// ByCountDesc orders by descending count.
	ByCountDesc
	// ByNameAsc orders by name.
	ByNameAsc
)

// DefaultFacetOrder is count then name.
var DefaultFacetOrder = []FacetOrder{ByCountDesc, ByNameAsc}

// HasFacet reports whether attr was faceted in this response.
func (r *Results) HasFacet(attr string) bool {
	if r == nil {
		return false
	}
	if _, ok := r.Facets[attr]; ok {
		return true
	}
	_, ok := r.Hierarchical[attr]
	return ok
}

// FacetValues returns the values of attr sorted by the given criteria, or
// DefaultFacetOrder when none is given. Unknown facets yield nil.
func (r *Results) FacetValues(attr string, order ...FacetOrder) []FacetValue {
	if r == nil {
		return nil
	}
	values, ok := r.Facets[attr]
	if !ok {
		return nil
	}
	if len(order) == 0 {
		order = DefaultFacetOrder
	}
	out := append([]FacetValue(nil), values...)
	sort.SliceStable(out, func(i, j int) bool {
		return lessFacet(out[i], out[j], order)
	})
	return out
}

func lessFacet(a, b FacetValue, order []FacetOrder) bool {
	for _, o := range order {
		switch o {
		case ByIsRefined:
			if a.IsRefined != b.IsRefined {
				return a.IsRefined
			}
		case ByCountDesc:
			if a.Count != b.Count {
				return a.Count > b.Count
			}
		case ByNameAsc:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		}
	}
	return false
}

// HierarchicalFacetValues returns the tree of a hierarchical facet.
func (r *Results) HierarchicalFacetValues(name string) ([]HierarchicalFacetValue, bool) {
	if r == nil {
		return nil, false
	}
	values, ok := r.Hierarchical[name]
	return values, ok
}

// FacetStats returns the numeric stats of attr.
func (r *Results) FacetStats(attr string) (FacetStats, bool) {
	if r == nil {
		return FacetStats{}, false
	}
	s, ok := r.Stats[attr]
	return s, ok
}
