package search

import "context"

// Query pairs a parameter set with the index id its results belong to.
type Query struct {
	IndexID    string     `json:"indexId"`
	Parameters Parameters `json:"params"`
}

// FacetValuesRequest asks for facet values matching a partial query.
type FacetValuesRequest struct {
	FacetName    string `json:"facetName"`
	Query        string `json:"query"`
	MaxFacetHits int    `json:"maxFacetHits"`
}

// FacetHit is a facet value returned by a facet-value search.
type FacetHit struct {
	Value       string `json:"value"`
	Highlighted string `json:"highlighted"`
	Count       int    `json:"count"`
	IsRefined   bool   `json:"isRefined"`
}

// Executor runs queries. Implementations must return one Results per query,
// in order.
type Executor interface {
	Search(ctx context.Context, queries []Query) ([]*Results, error)
	SearchForFacetValues(ctx context.Context, q Query, req FacetValuesRequest) ([]FacetHit, error)
}

// Bundle is the results view handed to widgets.
type Bundle struct {
	Results                 *Results
	ResultsByIndex          map[string]*Results
	Searching               bool
	SearchingForFacetValues bool
	IsSearchStalled         bool
	Error                   error
}

// For returns the results of indexID. When the bundle holds a single
// response it is returned regardless of the id.
func (b Bundle) For(indexID string) *Results {
	if len(b.ResultsByIndex) > 0 {
		return b.ResultsByIndex[indexID]
	}
	return b.Results
}

// FacetValuesResults holds the latest facet-value search: the query that
// produced it and the hits per facet name.
type FacetValuesResults struct {
	Query string                `json:"query"`
	Hits  map[string][]FacetHit `json:"hits"`
}

// For returns the hits of facet when the search query is not empty.
func (f *FacetValuesResults) For(facet string) ([]FacetHit, bool) {
	if f == nil || f.Query == "" {
		return nil, false
	}
	hits, ok := f.Hits[facet]
	return hits, ok
}
