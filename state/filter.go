package state

import (
	"sort"
	"strings"

	"github.com/moby/patternmatcher"

	"github.com/grovetools/searchcore/errors"
)

// Filter keeps the entries of st whose slash-separated path matches one of
// patterns, as in "menu/*" or "indices/**/query". A matching branch keeps
// everything below it. Patterns starting with "!" exclude.
func Filter(st State, patterns []string) (State, error) {
	if len(patterns) == 0 {
		return st.Clone(), nil
	}
	pm, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid state pattern")
	}
	out, err := filterMap(pm, map[string]interface{}(st), "")
	if err != nil {
		return nil, err
	}
	return State(out), nil
}

func filterMap(pm *patternmatcher.PatternMatcher, m map[string]interface{}, prefix string) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	for _, k := range sortedKeys(m) {
		p := k
		if prefix != "" {
			p = prefix + "/" + k
		}
		if child, ok := AsMap(m[k]); ok {
			sub, err := filterMap(pm, child, p)
			if err != nil {
				return nil, err
			}
			if len(sub) > 0 {
				out[k] = sub
			}
			continue
		}
		ok, err := pm.MatchesOrParentMatches(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid state pattern")
		}
		if ok {
			out[k] = cloneValue(m[k])
		}
	}
	return out, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Paths lists the slash-separated paths of every leaf of st, sorted.
func Paths(st State) []string {
	var out []string
	var walk func(m map[string]interface{}, prefix []string)
	walk = func(m map[string]interface{}, prefix []string) {
		for _, k := range sortedKeys(m) {
			p := append(append([]string(nil), prefix...), k)
			if child, ok := AsMap(m[k]); ok {
				walk(child, p)
				continue
			}
			out = append(out, strings.Join(p, "/"))
		}
	}
	walk(map[string]interface{}(st), nil)
	return out
}
