package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/pkg/widgets"
	"github.com/grovetools/searchcore/state"
)

type paramsWidget struct {
	caps  widgets.Capabilities
	scope scope.Scope
	apply func(search.Parameters, state.State) search.Parameters
}

func (w paramsWidget) Capabilities() widgets.Capabilities { return w.caps }
func (w paramsWidget) Scope() scope.Scope                 { return w.scope }
func (w paramsWidget) SearchParameters(p search.Parameters, st state.State) search.Parameters {
	return w.apply(p, st)
}
func (w paramsWidget) Metadata(state.State) refinements.Metadata { return refinements.Metadata{} }
func (w paramsWidget) TransitionState(_, next state.State) state.State {
	return next
}

func facet(sc scope.Scope, attr string) paramsWidget {
	return paramsWidget{
		caps:  widgets.ComputesSearchParameters,
		scope: sc,
		apply: func(p search.Parameters, _ state.State) search.Parameters {
			return p.AddDisjunctiveFacet(attr)
		},
	}
}

func index(main, id, name string) paramsWidget {
	return paramsWidget{
		caps:  widgets.ComputesSearchParameters | widgets.IndexScope,
		scope: scope.Root(main).Nested(id),
		apply: func(p search.Parameters, _ state.State) search.Parameters {
			return p.SetIndex(name)
		},
	}
}

func limit(n int) paramsWidget {
	return paramsWidget{
		caps: widgets.ComputesSearchParameters,
		apply: func(p search.Parameters, _ state.State) search.Parameters {
			if n > p.MaxValuesPerFacet() {
				return p.SetMaxValuesPerFacet(n)
			}
			return p
		},
	}
}

func TestReducePartitionsByIndex(t *testing.T) {
	root := scope.Root("first")
	ws := []widgets.Widget{
		facet(root, "shared"),
		facet(root.Nested("second"), "secondOnly"),
		index("first", "second", "products_second"),
		facet(root.Nested("first"), "firstOnly"),
		index("first", "first", "products"),
		paramsWidget{caps: widgets.ComputesMetadata, scope: root},
	}

	c := Reduce(search.NewParameters("products"), ws, state.New(), "first")

	assert.Equal(t, "products", c.Main.Index())
	assert.Equal(t, []string{"shared", "firstOnly"}, c.Main.DisjunctiveFacets())

	require.Len(t, c.Derived, 1)
	assert.Equal(t, "second", c.Derived[0].IndexID)
	assert.Equal(t, "products_second", c.Derived[0].Parameters.Index())
	assert.Equal(t, []string{"shared", "secondOnly"}, c.Derived[0].Parameters.DisjunctiveFacets())

	assert.Equal(t, []string{"first", "second"}, c.IndexIDs())
	queries := c.Queries()
	require.Len(t, queries, 2)
	assert.Equal(t, "second", queries[1].IndexID)
}

func TestReduceIsIdempotent(t *testing.T) {
	root := scope.Root("first")
	ws := []widgets.Widget{facet(root, "brand"), limit(10), facet(root.Nested("second"), "color")}
	st := state.State{"menu": map[string]interface{}{"brand": "Apple"}}

	a := Reduce(search.NewParameters("products"), ws, st, "first")
	b := Reduce(search.NewParameters("products"), ws, st, "first")

	assert.True(t, a.Equal(b))
}

func TestMaxValuesPerFacetOnlyIncreases(t *testing.T) {
	base := search.NewParameters("products").SetMaxValuesPerFacet(20)

	for _, sizes := range [][]int{{5, 30, 10}, {10, 5}, {40}, {}} {
		ws := []widgets.Widget{}
		want := 20
		for _, n := range sizes {
			ws = append(ws, limit(n))
			if n > want {
				want = n
			}
		}
		c := Reduce(base, ws, state.New(), "products")
		assert.Equal(t, want, c.Main.MaxValuesPerFacet(), "sizes %v", sizes)
	}
}

func TestReduceWithoutWidgets(t *testing.T) {
	base := search.NewParameters("products").SetQuery("tv")
	c := Reduce(base, nil, nil, "products")

	assert.True(t, c.Main.Equal(base))
	assert.Empty(t, c.Derived)
}
