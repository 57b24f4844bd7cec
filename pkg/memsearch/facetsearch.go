package memsearch

import (
	"context"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/grovetools/searchcore/pkg/search"
)

// Default highlight tags, overridable with the highlightPreTag and
// highlightPostTag query parameters.
const (
	HighlightPreTag  = "<em>"
	HighlightPostTag = "</em>"
)

// typoBudget is the number of edits tolerated for a folded query of n runes.
func typoBudget(n int) int {
	switch {
	case n >= 8:
		return 2
	case n >= 4:
		return 1
	}
	return 0
}

// SearchForFacetValues implements search.Executor. Values of the facet are
// counted over the records matching the query and every refinement except
// the facet's own, then kept when a word of the value starts with the
// folded request query, allowing a few typos on longer queries.
func (e *Engine) SearchForFacetValues(ctx context.Context, q search.Query, req search.FacetValuesRequest) ([]search.FacetHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := e.records(q.Parameters.Index())
	if err != nil {
		return nil, err
	}

	p := q.Parameters
	m := newMatcher(p)
	counts, _ := count(filter(records, m, req.FacetName), req.FacetName)
	refined := append(p.FacetRefinements(req.FacetName), p.DisjunctiveRefinements(req.FacetName)...)
	pre, post := tags(p)

	needle := fold(req.Query)
	hits := []search.FacetHit{}
	for value, n := range counts {
		highlighted, ok := highlight(value, needle, pre, post)
		if !ok {
			continue
		}
		hits = append(hits, search.FacetHit{
			Value:       value,
			Highlighted: highlighted,
			Count:       n,
			IsRefined:   containsString(refined, value),
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Count != hits[j].Count {
			return hits[i].Count > hits[j].Count
		}
		return hits[i].Value < hits[j].Value
	})
	if req.MaxFacetHits > 0 && len(hits) > req.MaxFacetHits {
		hits = hits[:req.MaxFacetHits]
	}
	return hits, nil
}

func tags(p search.Parameters) (string, string) {
	pre, post := HighlightPreTag, HighlightPostTag
	extra := p.Extra()
	if s, ok := extra["highlightPreTag"].(string); ok {
		pre = s
	}
	if s, ok := extra["highlightPostTag"].(string); ok {
		post = s
	}
	return pre, post
}

// highlight matches the folded needle against the words of value and wraps
// the matched prefix of the first matching word. An empty needle matches
// every value unhighlighted.
func highlight(value, needle, pre, post string) (string, bool) {
	if needle == "" {
		return value, true
	}
	words := strings.Fields(value)
	for _, w := range words {
		if strings.HasPrefix(fold(w), needle) {
			return wrap(value, w, prefixLen(w, needle), pre, post), true
		}
	}
	budget := typoBudget(len([]rune(needle)))
	if budget == 0 {
		return "", false
	}
	n := len([]rune(needle))
	for _, w := range words {
		fw := []rune(fold(w))
		if len(fw) > n {
			fw = fw[:n]
		}
		if levenshtein.ComputeDistance(string(fw), needle) <= budget {
			return wrap(value, w, len(fw), pre, post), true
		}
	}
	return "", false
}

// prefixLen is the number of runes of w whose folded form equals needle.
func prefixLen(w, needle string) int {
	rs := []rune(w)
	for k := 1; k <= len(rs); k++ {
		if fold(string(rs[:k])) == needle {
			return k
		}
	}
	return len(rs)
}

// wrap highlights the first k runes of word w inside value.
func wrap(value, w string, k int, pre, post string) string {
	i := strings.Index(value, w)
	if i < 0 {
		return value
	}
	rs := []rune(w)
	if k > len(rs) {
		k = len(rs)
	}
	head := string(rs[:k])
	return value[:i] + pre + head + post + value[i+len(head):]
}
