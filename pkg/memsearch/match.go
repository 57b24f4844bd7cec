package memsearch

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/grovetools/searchcore/pkg/search"
)

// fold normalizes text for comparison: accents are stripped and case is
// folded. A fresh transformer is built per call since transformers carry
// state.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// matcher evaluates one parameter set against records.
type matcher struct {
	params search.Parameters
	tokens []string
}

func newMatcher(p search.Parameters) *matcher {
	return &matcher{params: p, tokens: strings.Fields(fold(p.Query()))}
}

// matches reports whether r satisfies the query and every refinement. The
// refinements bound to exclude (a disjunctive attribute, a numeric attribute
// or a hierarchical facet name) are ignored so that facet counts show the
// alternatives of that facet.
func (m *matcher) matches(r search.Hit, exclude string) bool {
	return m.matchesText(r) && m.matchesFilters(r, exclude)
}

func (m *matcher) matchesText(r search.Hit) bool {
	if len(m.tokens) == 0 {
		return true
	}
	text := fold(strings.Join(textOf(r), " "))
	for _, tok := range m.tokens {
		if !strings.Contains(text, tok) {
			return false
		}
	}
	return true
}

func (m *matcher) matchesFilters(r search.Hit, exclude string) bool {
	p := m.params
	for _, attr := range p.RefinedFacets() {
		values := stringValues(r[attr])
		for _, want := range p.FacetRefinements(attr) {
			if !containsString(values, want) {
				return false
			}
		}
	}
	for _, attr := range p.RefinedDisjunctiveFacets() {
		if attr == exclude {
			continue
		}
		refs := p.DisjunctiveRefinements(attr)
		if len(refs) == 0 {
			continue
		}
		values := stringValues(r[attr])
		found := false
		for _, want := range refs {
			if containsString(values, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, attr := range p.NumericAttributes() {
		if attr == exclude {
			continue
		}
		if !matchesNumeric(numberValues(r[attr]), p.NumericRefinements(attr)) {
			return false
		}
	}
	for _, f := range p.HierarchicalFacets() {
		if f.Name == exclude {
			continue
		}
		for _, path := range p.HierarchicalRefinements(f.Name) {
			if path == "" {
				continue
			}
			level := strings.Count(path, separatorOf(f))
			if level >= len(f.Attributes) {
				return false
			}
			if !containsString(stringValues(r[f.Attributes[level]]), path) {
				return false
			}
		}
	}
	return true
}

// matchesNumeric holds when one value satisfies every constraint.
func matchesNumeric(values []float64, ops map[string][]float64) bool {
	for _, v := range values {
		ok := true
		for op, bounds := range ops {
			for _, b := range bounds {
				if !compare(v, op, b) {
					ok = false
				}
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func compare(v float64, op string, b float64) bool {
	switch op {
	case search.OpGTE:
		return v >= b
	case search.OpLTE:
		return v <= b
	case search.OpGT:
		return v > b
	case search.OpLT:
		return v < b
	case search.OpEQ:
		return v == b
	}
	return false
}

func separatorOf(f search.HierarchicalFacet) string {
	if f.Separator == "" {
		return " > "
	}
	return f.Separator
}

// textOf collects the searchable strings of a record in key order.
func textOf(r search.Hit) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []string
	for _, k := range keys {
		out = append(out, textValues(r[k])...)
	}
	return out
}

func textValues(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		var out []string
		for _, e := range t {
			out = append(out, textValues(e)...)
		}
		return out
	case []string:
		return t
	case map[string]interface{}:
		return textOf(search.Hit(t))
	}
	return nil
}

// stringValues returns the facet values of an attribute. Lists contribute
// each element.
func stringValues(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := scalarString(e); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	}
	if s, ok := scalarString(v); ok {
		return []string{s}
	}
	return nil
}

func scalarString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case json.Number:
		return t.String(), true
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}

func numberValues(v interface{}) []float64 {
	if list, ok := v.([]interface{}); ok {
		out := make([]float64, 0, len(list))
		for _, e := range list {
			if f, ok := toFloat(e); ok {
				out = append(out, f)
			}
		}
		return out
	}
	if f, ok := toFloat(v); ok {
		return []float64{f}
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
