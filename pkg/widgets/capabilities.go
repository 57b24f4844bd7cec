package widgets

import "strings"

// Capabilities is the set of hooks a widget declares.
type Capabilities uint16

const (
	ComputesSearchParameters Capabilities = 1 << iota
	ComputesMetadata
	TransitionsState
	CleansUp
	RefinesSearch
	SearchesFacetValues
	// IndexScope marks a widget that opens an index scope for its children.
	IndexScope
)

var capabilityNames = []struct {
	c    Capabilities
	name string
}{
	{ComputesSearchParameters, "computesSearchParameters"},
	{ComputesMetadata, "computesMetadata"},
	{TransitionsState, "transitionsState"},
	{CleansUp, "cleansUp"},
	{RefinesSearch, "refinesSearch"},
	{SearchesFacetValues, "searchesFacetValues"},
	{IndexScope, "indexScope"},
}

// Has reports whether every capability in o is set.
func (c Capabilities) Has(o Capabilities) bool {
	return c&o == o
}

// Registers reports whether a widget with these capabilities takes part in
// recomputations. Widgets that only read results do not register.
func (c Capabilities) Registers() bool {
	return c&(ComputesSearchParameters|ComputesMetadata|TransitionsState) != 0
}

// Names lists the set capabilities.
func (c Capabilities) Names() []string {
	var names []string
	for _, n := range capabilityNames {
		if c.Has(n.c) {
			names = append(names, n.name)
		}
	}
	return names
}

func (c Capabilities) String() string {
	return strings.Join(c.Names(), "|")
}
