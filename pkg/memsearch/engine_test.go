package memsearch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/searchcore/errors"
	"github.com/grovetools/searchcore/pkg/search"
)

func products() []search.Hit {
	return []search.Hit{
		{"objectID": "1", "name": "Café Crème", "brand": "Apple", "price": 10.0, "tags": []interface{}{"hot", "milk"},
			"cat.lvl0": "Drinks", "cat.lvl1": "Drinks > Coffee"},
		{"objectID": "2", "name": "Espresso", "brand": "Apple", "price": 4.0, "tags": []interface{}{"hot"},
			"cat.lvl0": "Drinks", "cat.lvl1": "Drinks > Coffee"},
		{"objectID": "3", "name": "Green tea", "brand": "Samsung", "price": 6.0, "tags": []interface{}{"hot"},
			"cat.lvl0": "Drinks", "cat.lvl1": "Drinks > Tea"},
		{"objectID": "4", "name": "Croissant", "brand": "Sony", "price": 3.0,
			"cat.lvl0": "Food", "cat.lvl1": "Food > Pastry"},
		{"objectID": "5", "name": "Samsonite bag", "brand": "Samsonite", "price": 80.0,
			"cat.lvl0": "Goods"},
	}
}

func engine() *Engine {
	e := New()
	e.AddIndex("products", products())
	return e
}

func searchOne(t *testing.T, e *Engine, p search.Parameters) *search.Results {
	t.Helper()
	res, err := e.Search(context.Background(), []search.Query{{IndexID: p.Index(), Parameters: p}})
	require.NoError(t, err)
	require.Len(t, res, 1)
	return res[0]
}

func ids(hits []search.Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h["objectID"].(string)
	}
	return out
}

func TestSearchUnknownIndex(t *testing.T) {
	_, err := engine().Search(context.Background(), []search.Query{{Parameters: search.NewParameters("nope")}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestSearchQueryFoldsCaseAndAccents(t *testing.T) {
	e := engine()
	res := searchOne(t, e, search.NewParameters("products").SetQuery("cafe CREME"))
	assert.Equal(t, []string{"1"}, ids(res.Hits))

	res = searchOne(t, e, search.NewParameters("products"))
	assert.Equal(t, 5, res.NbHits)
	assert.Equal(t, "products", res.Index)
}

func TestSearchPaging(t *testing.T) {
	p := search.NewParameters("products").SetHitsPerPage(2).SetPage(2)
	res := searchOne(t, engine(), p)
	assert.Equal(t, 5, res.NbHits)
	assert.Equal(t, 3, res.NbPages)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, []string{"5"}, ids(res.Hits))

	res = searchOne(t, engine(), search.NewParameters("products").SetPage(4))
	assert.Equal(t, []search.Hit{}, res.Hits)
	assert.Equal(t, DefaultHitsPerPage, res.HitsPerPage)
}

func TestConjunctiveFacets(t *testing.T) {
	p := search.NewParameters("products").
		AddFacet("tags").
		AddFacetRefinement("tags", "hot").
		AddFacetRefinement("tags", "milk")
	res := searchOne(t, engine(), p)
	assert.Equal(t, []string{"1"}, ids(res.Hits))
	assert.Equal(t, []search.FacetValue{
		{Name: "hot", Count: 1, IsRefined: true},
		{Name: "milk", Count: 1, IsRefined: true},
	}, res.Facets["tags"])
}

func TestDisjunctiveFacetsKeepAlternatives(t *testing.T) {
	p := search.NewParameters("products").
		AddDisjunctiveFacet("brand").
		AddDisjunctiveFacetRefinement("brand", "Apple").
		AddDisjunctiveFacetRefinement("brand", "Sony")
	res := searchOne(t, engine(), p)
	assert.Equal(t, []string{"1", "2", "4"}, ids(res.Hits))
	assert.Equal(t, []search.FacetValue{
		{Name: "Apple", Count: 2, IsRefined: true},
		{Name: "Samsonite", Count: 1},
		{Name: "Samsung", Count: 1},
		{Name: "Sony", Count: 1, IsRefined: true},
	}, res.Facets["brand"])

	limited := searchOne(t, engine(), p.SetMaxValuesPerFacet(1))
	assert.Len(t, limited.Facets["brand"], 1)
}

func TestNumericRefinementsAndStats(t *testing.T) {
	p := search.NewParameters("products").
		AddDisjunctiveFacet("price").
		AddNumericRefinement("price", search.OpGTE, 4).
		AddNumericRefinement("price", search.OpLTE, 10)
	res := searchOne(t, engine(), p)
	assert.Equal(t, []string{"1", "2", "3"}, ids(res.Hits))

	stats, ok := res.FacetStats("price")
	require.True(t, ok)
	assert.Equal(t, search.FacetStats{Min: 3, Max: 80, Avg: 20.6, Sum: 103}, stats)

	zero := searchOne(t, engine(), search.NewParameters("products").AddNumericRefinement("price", search.OpLT, 0))
	assert.Equal(t, 0, zero.NbHits)
	assert.Equal(t, 0, zero.NbPages)
}

func hierarchical(show bool) search.HierarchicalFacet {
	return search.HierarchicalFacet{
		Name:            "cat.lvl0",
		Attributes:      []string{"cat.lvl0", "cat.lvl1"},
		Separator:       " > ",
		ShowParentLevel: show,
	}
}

func TestHierarchicalTree(t *testing.T) {
	p := search.NewParameters("products").
		AddHierarchicalFacet(hierarchical(true)).
		AddHierarchicalFacetRefinement("cat.lvl0", "Drinks")
	res := searchOne(t, engine(), p)
	assert.Equal(t, 3, res.NbHits)

	tree, ok := res.HierarchicalFacetValues("cat.lvl0")
	require.True(t, ok)
	assert.Equal(t, []search.HierarchicalFacetValue{
		{Name: "Drinks", Path: "Drinks", Count: 3, IsRefined: true, Data: []search.HierarchicalFacetValue{
			{Name: "Coffee", Path: "Drinks > Coffee", Count: 2},
			{Name: "Tea", Path: "Drinks > Tea", Count: 1},
		}},
		{Name: "Food", Path: "Food", Count: 1},
		{Name: "Goods", Path: "Goods", Count: 1},
	}, tree)
}

func TestHierarchicalTreeHidesParentSiblings(t *testing.T) {
	p := search.NewParameters("products").
		AddHierarchicalFacet(hierarchical(false)).
		AddHierarchicalFacetRefinement("cat.lvl0", "Drinks > Coffee")
	res := searchOne(t, engine(), p)
	assert.Equal(t, []string{"1", "2"}, ids(res.Hits))

	tree, _ := res.HierarchicalFacetValues("cat.lvl0")
	require.Len(t, tree, 3)
	assert.Equal(t, []search.HierarchicalFacetValue{
		{Name: "Coffee", Path: "Drinks > Coffee", Count: 2, IsRefined: true},
	}, tree[0].Data)

	rooted := hierarchical(true)
	rooted.RootPath = "Drinks"
	res = searchOne(t, engine(), search.NewParameters("products").AddHierarchicalFacet(rooted))
	tree, _ = res.HierarchicalFacetValues("cat.lvl0")
	assert.Equal(t, []search.HierarchicalFacetValue{
		{Name: "Coffee", Path: "Drinks > Coffee", Count: 2},
		{Name: "Tea", Path: "Drinks > Tea", Count: 1},
	}, tree)
}

func TestSearchForFacetValues(t *testing.T) {
	e := engine()
	p := search.NewParameters("products").
		AddDisjunctiveFacet("brand").
		AddDisjunctiveFacetRefinement("brand", "Samsung")
	hits, err := e.SearchForFacetValues(context.Background(), search.Query{Parameters: p},
		search.FacetValuesRequest{FacetName: "brand", Query: "sam", MaxFacetHits: 10})
	require.NoError(t, err)
	assert.Equal(t, []search.FacetHit{
		{Value: "Samsonite", Highlighted: "<em>Sam</em>sonite", Count: 1},
		{Value: "Samsung", Highlighted: "<em>Sam</em>sung", Count: 1, IsRefined: true},
	}, hits)

	hits, err = e.SearchForFacetValues(context.Background(), search.Query{Parameters: p},
		search.FacetValuesRequest{FacetName: "brand", Query: "sam", MaxFacetHits: 1})
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearchForFacetValuesToleratesTypos(t *testing.T) {
	p := search.NewParameters("products").
		SetQueryParameter("highlightPreTag", "[").
		SetQueryParameter("highlightPostTag", "]")
	hits, err := engine().SearchForFacetValues(context.Background(), search.Query{Parameters: p},
		search.FacetValuesRequest{FacetName: "brand", Query: "samsunk"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Samsung", hits[0].Value)
	assert.Equal(t, "[Samsung]", hits[0].Highlighted)

	hits, err = engine().SearchForFacetValues(context.Background(), search.Query{Parameters: p},
		search.FacetValuesRequest{FacetName: "brand", Query: "sn"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := engine().Search(ctx, []search.Query{{Parameters: search.NewParameters("products")}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"products":[{"objectID":"1","price":3}],"articles":[]}`), 0o644))
	e, err := LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"articles", "products"}, e.Indices())
	assert.Equal(t, 1, e.Len("products"))

	yamlPath := filepath.Join(dir, "data.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("products:\n  - objectID: \"1\"\n    price: 3\n"), 0o644))
	e, err = LoadFile(yamlPath)
	require.NoError(t, err)
	res := searchOne(t, e, search.NewParameters("products").AddNumericRefinement("price", search.OpEQ, 3))
	assert.Equal(t, 1, res.NbHits)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[1,2`), 0o644))
	_, err = LoadFile(bad)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}
