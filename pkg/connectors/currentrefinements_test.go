package connectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/searchcore/pkg/connector"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

func TestCurrentRefinements(t *testing.T) {
	st := state.State{
		"query": "phone",
		"menu":  map[string]interface{}{"brand": "Apple"},
		"refinementList": map[string]interface{}{
			"color": []interface{}{"red", "blue"},
		},
	}
	metadata := []refinements.Metadata{
		SearchBox.GetMetadata(root, SearchBoxProps{}, st),
		Menu.GetMetadata(root, MenuProps{Attribute: "brand"}, st),
		RefinementList.GetMetadata(root, RefinementListProps{Attribute: "color"}, st),
	}

	got := CurrentRefinements.GetProvidedProps(root, CurrentRefinementsProps{}, st, search.Bundle{}, metadata, nil)
	items := got["items"].([]refinements.Item)
	require.Len(t, items, 2)
	assert.Equal(t, "brand: Apple", items[0].Label)
	assert.Equal(t, true, got["canRefine"])

	got = CurrentRefinements.GetProvidedProps(root, CurrentRefinementsProps{ClearsQuery: true}, st, search.Bundle{}, metadata, nil)
	assert.Len(t, got["items"], 3)

	next := CurrentRefinements.Refine(root, CurrentRefinementsProps{}, st, items)
	assert.Equal(t, "", next.Branch("menu")["brand"])
	assert.Equal(t, "", next.Branch("refinementList")["color"])
	assert.Equal(t, "phone", next["query"])

	next = CurrentRefinements.Refine(root, CurrentRefinementsProps{}, st, items[1].Items[0].Clear)
	assert.Equal(t, []string{"blue"}, next.Branch("refinementList")["color"])
	assert.Equal(t, "Apple", next.Branch("menu")["brand"])

	assert.Equal(t, st, CurrentRefinements.Refine(root, CurrentRefinementsProps{}, st, 42))
}

func TestCurrentRefinementsRenderGate(t *testing.T) {
	st := state.State{"menu": map[string]interface{}{"brand": "Apple"}}
	meta := []refinements.Metadata{Menu.GetMetadata(root, MenuProps{Attribute: "brand"}, st)}
	prev := CurrentRefinements.GetProvidedProps(root, CurrentRefinementsProps{}, st, search.Bundle{}, meta, nil)

	meta = []refinements.Metadata{Menu.GetMetadata(root, MenuProps{Attribute: "brand"}, st)}
	next := CurrentRefinements.GetProvidedProps(root, CurrentRefinementsProps{}, st, search.Bundle{}, meta, nil)
	assert.False(t, connector.ShallowEqual(prev, next))
	assert.False(t, CurrentRefinements.ShouldUpdate(CurrentRefinementsProps{}, CurrentRefinementsProps{}, prev, next))

	next = CurrentRefinements.GetProvidedProps(root, CurrentRefinementsProps{}, st, search.Bundle{}, nil, nil)
	assert.True(t, CurrentRefinements.ShouldUpdate(CurrentRefinementsProps{}, CurrentRefinementsProps{}, prev, next))
}

func TestStateResults(t *testing.T) {
	r := &search.Results{Index: "index", NbHits: 2}
	st := state.State{"query": "x"}
	got := StateResults.GetProvidedProps(root, StateResultsProps{}, st, search.Bundle{Results: r, Searching: true}, nil, nil)
	assert.Equal(t, st, got["searchState"])
	assert.Same(t, r, got["searchResults"])
	assert.Equal(t, true, got["searching"])
	assert.Equal(t, "", got["error"])
}
