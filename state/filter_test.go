package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterFixture() State {
	return State{
		"query": "tea",
		"page":  2,
		"menu":  map[string]interface{}{"brand": "Apple", "category": "Drinks"},
		"indices": map[string]interface{}{
			"articles": map[string]interface{}{"query": "brew", "page": 1},
		},
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		want     State
	}{
		{
			name:     "no patterns keeps everything",
			patterns: nil,
			want:     filterFixture(),
		},
		{
			name:     "branch",
			patterns: []string{"menu"},
			want:     State{"menu": map[string]interface{}{"brand": "Apple", "category": "Drinks"}},
		},
		{
			name:     "wildcard leaf",
			patterns: []string{"menu/b*"},
			want:     State{"menu": map[string]interface{}{"brand": "Apple"}},
		},
		{
			name:     "double star",
			patterns: []string{"**/query"},
			want: State{
				"query":   "tea",
				"indices": map[string]interface{}{"articles": map[string]interface{}{"query": "brew"}},
			},
		},
		{
			name:     "exclusion",
			patterns: []string{"menu", "!menu/category"},
			want:     State{"menu": map[string]interface{}{"brand": "Apple"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(filterFixture(), tt.patterns)
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "got %v", got)
		})
	}
}

func TestFilterInvalidPattern(t *testing.T) {
	_, err := Filter(filterFixture(), []string{"[a"})
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, []string{
		"indices/articles/page",
		"indices/articles/query",
		"menu/brand",
		"menu/category",
		"page",
		"query",
	}, Paths(filterFixture()))
}
