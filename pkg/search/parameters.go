// Package search defines the query and results types exchanged with a query
// execution engine.
package search

import (
	"encoding/json"
	"sort"

	"github.com/grovetools/searchcore/errors"
)

// Numeric refinement operators.
const (
	OpGTE = ">="
	OpLTE = "<="
	OpEQ  = "="
	OpGT  = ">"
	OpLT  = "<"
)

// HierarchicalFacet describes a facet spread over several level attributes.
type HierarchicalFacet struct {
	Name            string   `json:"name"`
	Attributes      []string `json:"attributes"`
	Separator       string   `json:"separator"`
	RootPath        string   `json:"rootPath,omitempty"`
	ShowParentLevel bool     `json:"showParentLevel"`
}

// knownParameters lists the query attributes understood by the engine even
// when they were never set.
var knownParameters = map[string]bool{
	"index": true, "query": true, "page": true, "hitsPerPage": true,
	"maxValuesPerFacet": true, "facets": true, "disjunctiveFacets": true,
	"hierarchicalFacets": true, "facetsRefinements": true,
	"disjunctiveFacetsRefinements": true, "hierarchicalFacetsRefinements": true,
	"numericRefinements": true, "distinct": true, "filters": true,
	"attributesToRetrieve": true, "attributesToHighlight": true,
	"attributesToSnippet": true, "analytics": true, "clickAnalytics": true,
	"getRankingInfo": true, "typoTolerance": true, "ignorePlurals": true,
	"optionalWords": true, "restrictSearchableAttributes": true,
	"ruleContexts": true, "highlightPreTag": true, "highlightPostTag": true,
	"offset": true, "length": true, "queryType": true, "advancedSyntax": true,
	"tagFilters": true, "optionalFilters": true, "userToken": true,
	"enableRules": true, "aroundLatLng": true, "aroundRadius": true,
	"insideBoundingBox": true, "snippetEllipsisText": true,
	"facetingAfterDistinct": true, "removeWordsIfNoResults": true,
}

// IsKnownParameter reports whether name is a recognized query attribute.
func IsKnownParameter(name string) bool {
	return knownParameters[name]
}

// Parameters is an immutable set of query parameters for one index. Every
// builder method returns a modified copy and leaves the receiver untouched.
type Parameters struct {
	index             string
	query             string
	page              int
	hitsPerPage       int
	maxValuesPerFacet int

	facets             []string
	disjunctiveFacets  []string
	hierarchicalFacets []HierarchicalFacet

	facetsRefinements             map[string][]string
	disjunctiveFacetsRefinements  map[string][]string
	hierarchicalFacetsRefinements map[string][]string
	numericRefinements            map[string]map[string][]float64

	extra map[string]interface{}
}

// NewParameters returns an empty parameter set targeting index.
func NewParameters(index string) Parameters {
	return Parameters{index: index}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneListMap(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = cloneStrings(v)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}

func without(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		if e != v {
			out = append(out, e)
		}
	}
	return out
}

// Index returns the targeted index name.
func (p Parameters) Index() string { return p.index }

// Query returns the full text query.
func (p Parameters) Query() string { return p.query }

// Page returns the zero-based page.
func (p Parameters) Page() int { return p.page }

// HitsPerPage returns the page size, 0 when unset.
func (p Parameters) HitsPerPage() int { return p.hitsPerPage }

// MaxValuesPerFacet returns the facet window, 0 when unset.
func (p Parameters) MaxValuesPerFacet() int { return p.maxValuesPerFacet }

// Facets returns the conjunctive facets.
func (p Parameters) Facets() []string { return cloneStrings(p.facets) }

// DisjunctiveFacets returns the disjunctive facets.
func (p Parameters) DisjunctiveFacets() []string { return cloneStrings(p.disjunctiveFacets) }

// HierarchicalFacets returns the hierarchical facet declarations.
func (p Parameters) HierarchicalFacets() []HierarchicalFacet {
	return append([]HierarchicalFacet(nil), p.hierarchicalFacets...)
}

// HierarchicalFacet returns the declaration of a hierarchical facet by name.
func (p Parameters) HierarchicalFacet(name string) (HierarchicalFacet, bool) {
	for _, f := range p.hierarchicalFacets {
		if f.Name == name {
			return f, true
		}
	}
	return HierarchicalFacet{}, false
}

// FacetRefinements returns the conjunctive refinements of attr.
func (p Parameters) FacetRefinements(attr string) []string {
	return cloneStrings(p.facetsRefinements[attr])
}

// DisjunctiveRefinements returns the disjunctive refinements of attr.
func (p Parameters) DisjunctiveRefinements(attr string) []string {
	return cloneStrings(p.disjunctiveFacetsRefinements[attr])
}

// HierarchicalRefinements returns the refined paths of a hierarchical facet.
func (p Parameters) HierarchicalRefinements(name string) []string {
	return cloneStrings(p.hierarchicalFacetsRefinements[name])
}

// NumericRefinements returns the numeric constraints of attr keyed by operator.
func (p Parameters) NumericRefinements(attr string) map[string][]float64 {
	out := map[string][]float64{}
	for op, values := range p.numericRefinements[attr] {
		out[op] = append([]float64(nil), values...)
	}
	return out
}

// NumericAttributes returns the attributes carrying numeric refinements.
func (p Parameters) NumericAttributes() []string {
	attrs := make([]string, 0, len(p.numericRefinements))
	for a := range p.numericRefinements {
		attrs = append(attrs, a)
	}
	sort.Strings(attrs)
	return attrs
}

// RefinedFacets returns every conjunctive attribute with refinements.
func (p Parameters) RefinedFacets() []string { return sortedKeys(p.facetsRefinements) }

// RefinedDisjunctiveFacets returns every disjunctive attribute with refinements.
func (p Parameters) RefinedDisjunctiveFacets() []string {
	return sortedKeys(p.disjunctiveFacetsRefinements)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetIndex targets another index.
func (p Parameters) SetIndex(index string) Parameters {
	p.index = index
	return p
}

// SetQuery sets the full text query.
func (p Parameters) SetQuery(q string) Parameters {
	p.query = q
	return p
}

// SetPage sets the zero-based page.
func (p Parameters) SetPage(page int) Parameters {
	if page < 0 {
		page = 0
	}
	p.page = page
	return p
}

// SetHitsPerPage sets the page size.
func (p Parameters) SetHitsPerPage(n int) Parameters {
	p.hitsPerPage = n
	return p
}

// SetMaxValuesPerFacet sets the facet window.
func (p Parameters) SetMaxValuesPerFacet(n int) Parameters {
	p.maxValuesPerFacet = n
	return p
}

// AddFacet declares a conjunctive facet. Adding twice is a no-op.
func (p Parameters) AddFacet(attr string) Parameters {
	if contains(p.facets, attr) {
		return p
	}
	p.facets = append(cloneStrings(p.facets), attr)
	return p
}

// RemoveFacet drops a conjunctive facet and its refinements.
func (p Parameters) RemoveFacet(attr string) Parameters {
	p.facets = without(p.facets, attr)
	if _, ok := p.facetsRefinements[attr]; ok {
		p.facetsRefinements = cloneListMap(p.facetsRefinements)
		delete(p.facetsRefinements, attr)
	}
	return p
}

// AddDisjunctiveFacet declares a disjunctive facet. Adding twice is a no-op.
func (p Parameters) AddDisjunctiveFacet(attr string) Parameters {
	if contains(p.disjunctiveFacets, attr) {
		return p
	}
	p.disjunctiveFacets = append(cloneStrings(p.disjunctiveFacets), attr)
	return p
}

// RemoveDisjunctiveFacet drops a disjunctive facet and its refinements.
func (p Parameters) RemoveDisjunctiveFacet(attr string) Parameters {
	p.disjunctiveFacets = without(p.disjunctiveFacets, attr)
	if _, ok := p.disjunctiveFacetsRefinements[attr]; ok {
		p.disjunctiveFacetsRefinements = cloneListMap(p.disjunctiveFacetsRefinements)
		delete(p.disjunctiveFacetsRefinements, attr)
	}
	return p
}

// AddHierarchicalFacet declares a hierarchical facet. Redeclaring a name is a no-op.
func (p Parameters) AddHierarchicalFacet(f HierarchicalFacet) Parameters {
	if _, ok := p.HierarchicalFacet(f.Name); ok {
		return p
	}
	if f.Separator == "" {
		f.Separator = " > "
	}
	f.Attributes = cloneStrings(f.Attributes)
	p.hierarchicalFacets = append(p.HierarchicalFacets(), f)
	return p
}

// AddFacetRefinement adds a conjunctive refinement. Duplicates are ignored.
func (p Parameters) AddFacetRefinement(attr, value string) Parameters {
	if contains(p.facetsRefinements[attr], value) {
		return p
	}
	p.facetsRefinements = cloneListMap(p.facetsRefinements)
	p.facetsRefinements[attr] = append(p.facetsRefinements[attr], value)
	return p
}

// RemoveFacetRefinement removes a conjunctive refinement.
func (p Parameters) RemoveFacetRefinement(attr, value string) Parameters {
	if !contains(p.facetsRefinements[attr], value) {
		return p
	}
	p.facetsRefinements = removeRefinement(p.facetsRefinements, attr, value)
	return p
}

// AddDisjunctiveFacetRefinement adds a disjunctive refinement. Duplicates are ignored.
func (p Parameters) AddDisjunctiveFacetRefinement(attr, value string) Parameters {
	if contains(p.disjunctiveFacetsRefinements[attr], value) {
		return p
	}
	p.disjunctiveFacetsRefinements = cloneListMap(p.disjunctiveFacetsRefinements)
	p.disjunctiveFacetsRefinements[attr] = append(p.disjunctiveFacetsRefinements[attr], value)
	return p
}

// RemoveDisjunctiveFacetRefinement removes a disjunctive refinement.
func (p Parameters) RemoveDisjunctiveFacetRefinement(attr, value string) Parameters {
	if !contains(p.disjunctiveFacetsRefinements[attr], value) {
		return p
	}
	p.disjunctiveFacetsRefinements = removeRefinement(p.disjunctiveFacetsRefinements, attr, value)
	return p
}

func removeRefinement(m map[string][]string, attr, value string) map[string][]string {
	out := cloneListMap(m)
	rest := without(out[attr], value)
	if len(rest) == 0 {
		delete(out, attr)
	} else {
		out[attr] = rest
	}
	return out
}

// AddHierarchicalFacetRefinement refines a hierarchical facet on path. A
// hierarchical facet holds a single refined path.
func (p Parameters) AddHierarchicalFacetRefinement(name, path string) Parameters {
	p.hierarchicalFacetsRefinements = cloneListMap(p.hierarchicalFacetsRefinements)
	p.hierarchicalFacetsRefinements[name] = []string{path}
	return p
}

// AddNumericRefinement adds a numeric constraint on attr.
func (p Parameters) AddNumericRefinement(attr, op string, value float64) Parameters {
	for _, v := range p.numericRefinements[attr][op] {
		if v == value {
			return p
		}
	}
	next := make(map[string]map[string][]float64, len(p.numericRefinements)+1)
	for a, ops := range p.numericRefinements {
		next[a] = ops
	}
	ops := make(map[string][]float64, len(next[attr])+1)
	for o, values := range next[attr] {
		ops[o] = append([]float64(nil), values...)
	}
	ops[op] = append(ops[op], value)
	next[attr] = ops
	p.numericRefinements = next
	return p
}

// RemoveNumericRefinement drops every constraint on attr.
func (p Parameters) RemoveNumericRefinement(attr string) Parameters {
	if _, ok := p.numericRefinements[attr]; !ok {
		return p
	}
	next := make(map[string]map[string][]float64, len(p.numericRefinements))
	for a, ops := range p.numericRefinements {
		if a != attr {
			next[a] = ops
		}
	}
	p.numericRefinements = next
	return p
}

// SetQueryParameter sets a named parameter. Structured attributes are routed
// to their typed setters; anything else is stored as is.
func (p Parameters) SetQueryParameter(name string, value interface{}) Parameters {
	switch name {
	case "index":
		if s, ok := value.(string); ok {
			return p.SetIndex(s)
		}
	case "query":
		if s, ok := value.(string); ok {
			return p.SetQuery(s)
		}
	case "page":
		if n, ok := toInt(value); ok {
			return p.SetPage(n)
		}
	case "hitsPerPage":
		if n, ok := toInt(value); ok {
			return p.SetHitsPerPage(n)
		}
	case "maxValuesPerFacet":
		if n, ok := toInt(value); ok {
			return p.SetMaxValuesPerFacet(n)
		}
	}
	extra := make(map[string]interface{}, len(p.extra)+1)
	for k, v := range p.extra {
		extra[k] = v
	}
	extra[name] = value
	p.extra = extra
	return p
}

// SetQueryParameters applies SetQueryParameter for every entry, in key order.
func (p Parameters) SetQueryParameters(values map[string]interface{}) Parameters {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p = p.SetQueryParameter(k, values[k])
	}
	return p
}

// GetQueryParameter reads a named parameter. Asking for a name that is
// neither set nor a recognized attribute fails with PARAMETER_NOT_FOUND.
func (p Parameters) GetQueryParameter(name string) (interface{}, error) {
	switch name {
	case "index":
		return p.index, nil
	case "query":
		return p.query, nil
	case "page":
		return p.page, nil
	case "hitsPerPage":
		return p.hitsPerPage, nil
	case "maxValuesPerFacet":
		return p.maxValuesPerFacet, nil
	case "facets":
		return p.Facets(), nil
	case "disjunctiveFacets":
		return p.DisjunctiveFacets(), nil
	}
	if v, ok := p.extra[name]; ok {
		return v, nil
	}
	if knownParameters[name] {
		return nil, nil
	}
	return nil, errors.ParameterNotFound(name)
}

// Extra returns the parameters without a structured setter.
func (p Parameters) Extra() map[string]interface{} {
	out := make(map[string]interface{}, len(p.extra))
	for k, v := range p.extra {
		out[k] = v
	}
	return out
}

// Equal reports whether two parameter sets describe the same query.
func (p Parameters) Equal(o Parameters) bool {
	a, err := json.Marshal(p)
	if err != nil {
		return false
	}
	b, err := json.Marshal(o)
	if err != nil {
		return false
	}
	return string(a) == string(b)
}

// Map renders the set parameters as a plain map.
func (p Parameters) Map() map[string]interface{} {
	m := map[string]interface{}{}
	for k, v := range p.extra {
		m[k] = v
	}
	if p.index != "" {
		m["index"] = p.index
	}
	if p.query != "" {
		m["query"] = p.query
	}
	m["page"] = p.page
	if p.hitsPerPage > 0 {
		m["hitsPerPage"] = p.hitsPerPage
	}
	if p.maxValuesPerFacet > 0 {
		m["maxValuesPerFacet"] = p.maxValuesPerFacet
	}
	if len(p.facets) > 0 {
		m["facets"] = cloneStrings(p.facets)
	}
	if len(p.disjunctiveFacets) > 0 {
		m["disjunctiveFacets"] = cloneStrings(p.disjunctiveFacets)
	}
	if len(p.hierarchicalFacets) > 0 {
		m["hierarchicalFacets"] = p.HierarchicalFacets()
	}
	if len(p.facetsRefinements) > 0 {
		m["facetsRefinements"] = cloneListMap(p.facetsRefinements)
	}
	if len(p.disjunctiveFacetsRefinements) > 0 {
		m["disjunctiveFacetsRefinements"] = cloneListMap(p.disjunctiveFacetsRefinements)
	}
	if len(p.hierarchicalFacetsRefinements) > 0 {
		m["hierarchicalFacetsRefinements"] = cloneListMap(p.hierarchicalFacetsRefinements)
	}
	if len(p.numericRefinements) > 0 {
		nr := map[string]map[string][]float64{}
		for _, attr := range p.NumericAttributes() {
			nr[attr] = p.NumericRefinements(attr)
		}
		m["numericRefinements"] = nr
	}
	return m
}

// MarshalJSON implements json.Marshaler.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Map())
}

func toInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	}
	return 0, false
}
