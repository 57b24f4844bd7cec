// Package compose folds the contributions of every registered widget into
// one query per targeted index.
package compose

import (
	"sort"

	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/pkg/widgets"
	"github.com/grovetools/searchcore/state"
)

// Derived is the query of an index other than the main one.
type Derived struct {
	IndexID    string            `json:"indexId"`
	Parameters search.Parameters `json:"parameters"`
}

// Composition is the result of one full replay.
type Composition struct {
	MainIndex string            `json:"mainIndex"`
	Main      search.Parameters `json:"main"`
	Derived   []Derived         `json:"derived,omitempty"`
}

// Queries lists the main query followed by the derived ones.
func (c Composition) Queries() []search.Query {
	out := make([]search.Query, 0, len(c.Derived)+1)
	out = append(out, search.Query{IndexID: c.MainIndex, Parameters: c.Main})
	for _, d := range c.Derived {
		out = append(out, search.Query{IndexID: d.IndexID, Parameters: d.Parameters})
	}
	return out
}

// IndexIDs lists the index ids the composition queries.
func (c Composition) IndexIDs() []string {
	ids := []string{c.MainIndex}
	for _, d := range c.Derived {
		ids = append(ids, d.IndexID)
	}
	return ids
}

// Equal reports whether two compositions query the same thing.
func (c Composition) Equal(o Composition) bool {
	if c.MainIndex != o.MainIndex || !c.Main.Equal(o.Main) || len(c.Derived) != len(o.Derived) {
		return false
	}
	for i := range c.Derived {
		if c.Derived[i].IndexID != o.Derived[i].IndexID || !c.Derived[i].Parameters.Equal(o.Derived[i].Parameters) {
			return false
		}
	}
	return true
}

// Reduce replays every widget over base. Widgets without an index scope
// form the shared parameters; widgets scoped to mainIndex refine them into
// the main query; every other targeted index gets its own query built over
// the shared parameters. Index scope widgets are applied before the other
// widgets of their index. Registration order is kept otherwise.
func Reduce(base search.Parameters, ws []widgets.Widget, st state.State, mainIndex string) Composition {
	contributors := make([]widgets.Widget, 0, len(ws))
	for _, w := range ws {
		if w.Capabilities().Has(widgets.ComputesSearchParameters) {
			contributors = append(contributors, w)
		}
	}

	shared := base
	var scoped []widgets.Widget
	for _, w := range contributors {
		if isScoped(w) {
			scoped = append(scoped, w)
			continue
		}
		shared = w.SearchParameters(shared, st)
	}

	sort.SliceStable(scoped, func(i, j int) bool {
		return isIndexWidget(scoped[i]) && !isIndexWidget(scoped[j])
	})

	main := shared
	var order []string
	byIndex := map[string][]widgets.Widget{}
	for _, w := range scoped {
		id := scope.IndexID(w.Scope())
		if id == mainIndex {
			main = w.SearchParameters(main, st)
			continue
		}
		if _, ok := byIndex[id]; !ok {
			order = append(order, id)
		}
		byIndex[id] = append(byIndex[id], w)
	}

	c := Composition{MainIndex: mainIndex, Main: main}
	for _, id := range order {
		params := shared
		for _, w := range byIndex[id] {
			params = w.SearchParameters(params, st)
		}
		c.Derived = append(c.Derived, Derived{IndexID: id, Parameters: params})
	}
	return c
}

func isScoped(w widgets.Widget) bool {
	return w.Scope().IsScoped() || isIndexWidget(w)
}

func isIndexWidget(w widgets.Widget) bool {
	return w.Capabilities().Has(widgets.IndexScope)
}
