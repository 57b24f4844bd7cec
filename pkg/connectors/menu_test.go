package connectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/searchcore/pkg/connector"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

func menuResults() *search.Results {
	return facetResults("ok",
		search.FacetValue{Name: "oy", Count: 10},
		search.FacetValue{Name: "wat", Count: 20, IsRefined: true},
	)
}

func TestMenuProvidedProps(t *testing.T) {
	props := MenuProps{Attribute: "ok"}

	got := Menu.GetProvidedProps(root, props, state.New(), search.Bundle{}, nil, nil)
	assert.Equal(t, connector.Props{
		"items":             []MenuItem{},
		"currentRefinement": nil,
		"isFromSearch":      false,
		"canRefine":         false,
		"searchable":        false,
	}, got)

	got = Menu.GetProvidedProps(root, MenuProps{Attribute: "ok", DefaultRefinement: "wat"}, state.New(), search.Bundle{}, nil, nil)
	assert.Equal(t, "wat", got["currentRefinement"])

	got = Menu.GetProvidedProps(root, props, state.New(), single(menuResults()), nil, nil)
	assert.Equal(t, []MenuItem{
		{Value: "wat", Label: "wat", Count: 20, IsRefined: true},
		{Value: "oy", Label: "oy", Count: 10},
	}, got["items"])
	assert.Equal(t, true, got["canRefine"])

	got = Menu.GetProvidedProps(root, MenuProps{Attribute: "ok", Limit: 1}, state.New(), single(menuResults()), nil, nil)
	assert.Len(t, got["items"], 1)

	got = Menu.GetProvidedProps(root, MenuProps{Attribute: "ok", Limit: 5, ShowMore: true, ShowMoreLimit: 1}, state.New(), single(menuResults()), nil, nil)
	assert.Len(t, got["items"], 1)
}

func TestMenuCurrentItemTogglesOff(t *testing.T) {
	st := state.State{"menu": map[string]interface{}{"ok": "wat"}}
	got := Menu.GetProvidedProps(root, MenuProps{Attribute: "ok"}, st, single(menuResults()), nil, nil)

	items := got["items"].([]MenuItem)
	require.Len(t, items, 2)
	assert.Equal(t, "", items[0].Value)
	assert.Equal(t, "wat", items[0].Label)
	assert.Equal(t, "wat", got["currentRefinement"])
}

func TestMenuFacetHits(t *testing.T) {
	fv := &search.FacetValuesResults{
		Query: "query",
		Hits: map[string][]search.FacetHit{
			"ok": {{Value: "wat", Highlighted: "<em>wa</em>t", Count: 10}},
		},
	}
	got := Menu.GetProvidedProps(root, MenuProps{Attribute: "ok", Limit: 1}, state.New(), single(menuResults()), nil, fv)
	assert.Equal(t, []MenuItem{{Value: "wat", Label: "wat", Count: 10, Highlighted: "<em>wa</em>t"}}, got["items"])
	assert.Equal(t, true, got["isFromSearch"])

	fv.Query = ""
	got = Menu.GetProvidedProps(root, MenuProps{Attribute: "ok", Limit: 1}, state.New(), single(menuResults()), nil, fv)
	assert.Equal(t, []MenuItem{{Value: "wat", Label: "wat", Count: 20, IsRefined: true}}, got["items"])
	assert.Equal(t, false, got["isFromSearch"])
}

func TestMenuSearchableOrdersRefinedFirst(t *testing.T) {
	r := facetResults("ok",
		search.FacetValue{Name: "wat", Count: 20},
		search.FacetValue{Name: "oy", Count: 10, IsRefined: true},
	)
	got := Menu.GetProvidedProps(root, MenuProps{Attribute: "ok", Searchable: true}, state.New(), single(r), nil, nil)
	items := got["items"].([]MenuItem)
	assert.Equal(t, "oy", items[0].Label)
	assert.Equal(t, true, got["searchable"])
}

func TestMenuTransformItemsDrivesCanRefine(t *testing.T) {
	props := MenuProps{Attribute: "ok", TransformItems: func([]MenuItem) []MenuItem { return []MenuItem{} }}
	got := Menu.GetProvidedProps(root, props, state.New(), single(menuResults()), nil, nil)
	assert.Equal(t, false, got["canRefine"])
}

func TestMenuRefine(t *testing.T) {
	st := state.State{"otherKey": "val", "menu": map[string]interface{}{"otherKey": "val"}}
	next := Menu.Refine(root, MenuProps{Attribute: "ok"}, st, "yep")
	assert.Equal(t, state.State{
		"otherKey": "val",
		"page":     1,
		"menu":     map[string]interface{}{"ok": "yep", "otherKey": "val"},
	}, next)
	assert.Equal(t, state.State{"otherKey": "val", "menu": map[string]interface{}{"otherKey": "val"}}, st)

	next = Menu.Refine(multi, MenuProps{Attribute: "ok"}, state.New(), "yep")
	assert.Equal(t, state.State{
		"indices": map[string]interface{}{
			"second": map[string]interface{}{
				"page": 1,
				"menu": map[string]interface{}{"ok": "yep"},
			},
		},
	}, next)
}

func TestMenuSearchParameters(t *testing.T) {
	base := search.NewParameters("index").SetMaxValuesPerFacet(100)

	p := Menu.GetSearchParameters(root, base, MenuProps{Attribute: "ok", Limit: 101}, state.New())
	assert.Equal(t, 101, p.MaxValuesPerFacet())
	p = Menu.GetSearchParameters(root, base, MenuProps{Attribute: "ok", ShowMore: true, ShowMoreLimit: 101}, state.New())
	assert.Equal(t, 101, p.MaxValuesPerFacet())
	p = Menu.GetSearchParameters(root, base, MenuProps{Attribute: "ok", Limit: 99}, state.New())
	assert.Equal(t, 100, p.MaxValuesPerFacet())

	st := state.State{"menu": map[string]interface{}{"ok": "wat"}}
	p = Menu.GetSearchParameters(root, search.NewParameters("index"), MenuProps{Attribute: "ok", Limit: 1}, st)
	want := search.NewParameters("index").
		AddDisjunctiveFacet("ok").
		SetMaxValuesPerFacet(1).
		AddDisjunctiveFacetRefinement("ok", "wat")
	assert.True(t, want.Equal(p))

	again := Menu.GetSearchParameters(root, search.NewParameters("index"), MenuProps{Attribute: "ok", Limit: 1}, st)
	assert.True(t, p.Equal(again))
}

func TestMenuMetadata(t *testing.T) {
	meta := Menu.GetMetadata(root, MenuProps{Attribute: "ok"}, state.New())
	assert.Equal(t, "ok", meta.ID)
	assert.Equal(t, "index", meta.Index)
	assert.Empty(t, meta.Items)

	st := state.State{"menu": map[string]interface{}{"one": "one", "two": "two"}}
	meta = Menu.GetMetadata(root, MenuProps{Attribute: "one"}, st)
	require.Len(t, meta.Items, 1)
	assert.Equal(t, "one: one", meta.Items[0].Label)
	assert.Equal(t, "one", meta.Items[0].Attribute)
	assert.Equal(t, "one", meta.Items[0].CurrentRefinement)

	cleared := meta.Items[0].Clear(st)
	assert.Equal(t, state.State{
		"page": 1,
		"menu": map[string]interface{}{"one": "", "two": "two"},
	}, cleared)
}

func TestMenuCleanUp(t *testing.T) {
	st := state.State{
		"menu":    map[string]interface{}{"name": "x", "name2": "y"},
		"another": map[string]interface{}{"searchState": "searchState"},
	}
	st = Menu.CleanUp(root, MenuProps{Attribute: "name"}, st)
	assert.Equal(t, map[string]interface{}{"name2": "y"}, st["menu"])

	st = Menu.CleanUp(root, MenuProps{Attribute: "name2"}, st)
	assert.Equal(t, state.State{
		"menu":    map[string]interface{}{},
		"another": map[string]interface{}{"searchState": "searchState"},
	}, st)
}

func TestMenuSearchForFacetValues(t *testing.T) {
	props := MenuProps{Attribute: "ok", Limit: 15, ShowMoreLimit: 25}
	req := Menu.SearchForFacetValues(root, props, state.New(), "yep")
	assert.Equal(t, search.FacetValuesRequest{FacetName: "ok", Query: "yep", MaxFacetHits: 15}, req)

	props.ShowMore = true
	req = Menu.SearchForFacetValues(root, props, state.New(), "yep")
	assert.Equal(t, 25, req.MaxFacetHits)
}
