package memsearch

import (
	"sort"
	"strings"

	"github.com/grovetools/searchcore/pkg/search"
)

// DefaultMaxValuesPerFacet applies when the query does not set a limit.
const DefaultMaxValuesPerFacet = 100

type counter map[string]int

func (c counter) values(refined []string, limit int) []search.FacetValue {
	out := make([]search.FacetValue, 0, len(c))
	for name, n := range c {
		out = append(out, search.FacetValue{Name: name, Count: n, IsRefined: containsString(refined, name)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func count(records []search.Hit, attr string) (counter, []float64) {
	c := counter{}
	var numbers []float64
	for _, r := range records {
		for _, v := range stringValues(r[attr]) {
			c[v]++
		}
		numbers = append(numbers, numberValues(r[attr])...)
	}
	return c, numbers
}

func stats(numbers []float64) search.FacetStats {
	s := search.FacetStats{Min: numbers[0], Max: numbers[0]}
	for _, n := range numbers {
		if n < s.Min {
			s.Min = n
		}
		if n > s.Max {
			s.Max = n
		}
		s.Sum += n
	}
	s.Avg = s.Sum / float64(len(numbers))
	return s
}

func filter(records []search.Hit, m *matcher, exclude string) []search.Hit {
	var out []search.Hit
	for _, r := range records {
		if m.matches(r, exclude) {
			out = append(out, r)
		}
	}
	return out
}

// facetAll fills the facet distributions of res. Conjunctive facets count
// the final hit set. Disjunctive and hierarchical facets count the records
// matching every refinement but their own.
func facetAll(res *search.Results, records []search.Hit, m *matcher, p search.Parameters) {
	limit := p.MaxValuesPerFacet()
	if limit <= 0 {
		limit = DefaultMaxValuesPerFacet
	}
	put := func(attr string, set []search.Hit, refined []string) {
		c, numbers := count(set, attr)
		if res.Facets == nil {
			res.Facets = map[string][]search.FacetValue{}
		}
		res.Facets[attr] = c.values(refined, limit)
		if len(numbers) > 0 {
			if res.Stats == nil {
				res.Stats = map[string]search.FacetStats{}
			}
			res.Stats[attr] = stats(numbers)
		}
	}

	var matched []search.Hit
	if len(p.Facets()) > 0 {
		matched = filter(records, m, "")
	}
	for _, attr := range p.Facets() {
		put(attr, matched, p.FacetRefinements(attr))
	}
	for _, attr := range p.DisjunctiveFacets() {
		put(attr, filter(records, m, attr), p.DisjunctiveRefinements(attr))
	}
	for _, f := range p.HierarchicalFacets() {
		if len(f.Attributes) == 0 {
			continue
		}
		current := ""
		if refs := p.HierarchicalRefinements(f.Name); len(refs) > 0 {
			current = refs[0]
		}
		set := filter(records, m, f.Name)
		levels := make([]counter, len(f.Attributes))
		for i, attr := range f.Attributes {
			levels[i], _ = count(set, attr)
		}
		t := tree{facet: f, sep: separatorOf(f), current: current, levels: levels, limit: limit}
		if res.Hierarchical == nil {
			res.Hierarchical = map[string][]search.HierarchicalFacetValue{}
		}
		res.Hierarchical[f.Name] = t.build(f.RootPath, t.rootLevel())
	}
}

type tree struct {
	facet   search.HierarchicalFacet
	sep     string
	current string
	levels  []counter
	limit   int
}

func (t tree) rootLevel() int {
	if t.facet.RootPath == "" {
		return 0
	}
	return strings.Count(t.facet.RootPath, t.sep) + 1
}

// onPath reports whether v is the refined path or one of its ancestors.
func (t tree) onPath(v string) bool {
	return t.current != "" && (t.current == v || strings.HasPrefix(t.current, v+t.sep))
}

// build lists the nodes of level below parent. Refined nodes carry their
// children. Without ShowParentLevel, levels under the root only keep the
// refined chain and the children of the deepest refined node.
func (t tree) build(parent string, level int) []search.HierarchicalFacetValue {
	if level >= len(t.levels) {
		return nil
	}
	out := []search.HierarchicalFacetValue{}
	for _, fv := range t.levels[level].values(nil, 0) {
		v := fv.Name
		if parent != "" && !strings.HasPrefix(v, parent+t.sep) {
			continue
		}
		if level > t.rootLevel() && !t.facet.ShowParentLevel && !t.onPath(v) && parent != t.current {
			continue
		}
		name := v
		if i := strings.LastIndex(v, t.sep); i >= 0 {
			name = v[i+len(t.sep):]
		}
		node := search.HierarchicalFacetValue{Name: name, Path: v, Count: fv.Count, IsRefined: t.onPath(v)}
		if node.IsRefined {
			node.Data = t.build(v, level+1)
		}
		out = append(out, node)
	}
	if t.limit > 0 && len(out) > t.limit {
		out = out[:t.limit]
	}
	return out
}
