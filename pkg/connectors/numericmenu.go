package connectors

import (
	"math"
	"strconv"
	"strings"

	"github.com/grovetools/searchcore/pkg/connector"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

// AllLabel labels the synthesized item clearing a numeric menu.
const AllLabel = "All"

// NumericRange is one configured range. A nil bound is open.
type NumericRange struct {
	Label string   `yaml:"label" json:"label"`
	Start *float64 `yaml:"start,omitempty" json:"start,omitempty"`
	End   *float64 `yaml:"end,omitempty" json:"end,omitempty"`
}

// Value encodes the range as "start:end" with open bounds left empty.
func (r NumericRange) Value() string {
	if r.Start == nil && r.End == nil {
		return ""
	}
	return formatBound(r.Start) + ":" + formatBound(r.End)
}

func formatBound(b *float64) string {
	if b == nil {
		return ""
	}
	return strconv.FormatFloat(*b, 'f', -1, 64)
}

// ParseRange decodes a "start:end" value. Unparsable bounds are open.
func ParseRange(value string) (start, end *float64) {
	parts := strings.SplitN(value, ":", 2)
	parse := func(s string) *float64 {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	}
	start = parse(parts[0])
	if len(parts) == 2 {
		end = parse(parts[1])
	}
	return start, end
}

// NumericMenuProps configures the numeric menu connector.
type NumericMenuProps struct {
	Attribute         string         `yaml:"attribute" json:"attribute"`
	Items             []NumericRange `yaml:"items" json:"items"`
	DefaultRefinement string         `yaml:"default_refinement,omitempty" json:"default_refinement,omitempty"`

	TransformItems func([]NumericMenuItem) []NumericMenuItem `yaml:"-" json:"-"`
}

// NumericMenuItem is one range as exposed to the presentation.
// NoRefinement is set when the range cannot match any result.
type NumericMenuItem struct {
	Label        string `json:"label"`
	Value        string `json:"value"`
	IsRefined    bool   `json:"isRefined"`
	NoRefinement bool   `json:"noRefinement"`
}

func numericMenuID(props NumericMenuProps) string {
	return namespaced(NumericMenuNamespace, props.Attribute)
}

func currentNumericMenu(sc scope.Scope, props NumericMenuProps, st state.State) string {
	return currentString(sc, st, numericMenuID(props), props.DefaultRefinement)
}

// rangeCanMatch reports whether value overlaps the facet stats.
func rangeCanMatch(value string, stats search.FacetStats, ok bool) bool {
	if !ok {
		return true
	}
	start, end := math.Inf(-1), math.Inf(1)
	if value != "" {
		s, e := ParseRange(value)
		if s != nil {
			start = *s
		}
		if e != nil {
			end = *e
		}
	}
	return !(start > stats.Max || end < stats.Min)
}

func numericMenuItems(sc scope.Scope, props NumericMenuProps, st state.State, b search.Bundle) []NumericMenuItem {
	cur := currentNumericMenu(sc, props, st)
	r := scope.Results(b, sc)
	stats, hasStats := r.FacetStats(props.Attribute)

	items := make([]NumericMenuItem, 0, len(props.Items)+1)
	anyRefined, hasAll := false, false
	for _, rng := range props.Items {
		value := rng.Value()
		item := NumericMenuItem{
			Label:     rng.Label,
			Value:     value,
			IsRefined: value == cur,
		}
		if r != nil {
			item.NoRefinement = !rangeCanMatch(value, stats, hasStats)
		}
		anyRefined = anyRefined || item.IsRefined
		hasAll = hasAll || value == ""
		items = append(items, item)
	}
	if !hasAll {
		items = append(items, NumericMenuItem{
			Label:        AllLabel,
			Value:        "",
			IsRefined:    !anyRefined,
			NoRefinement: !hasStats,
		})
	}
	return items
}

func numericMenuLabel(props NumericMenuProps, value string) string {
	for _, rng := range props.Items {
		if rng.Value() == value {
			return rng.Label
		}
	}
	return value
}

// NumericMenu is a single-choice list of numeric ranges stored under
// multiRange.<attribute>.
var NumericMenu = connector.Connector[NumericMenuProps]{
	DisplayName: "NumericMenu",
	Namespace:   NumericMenuNamespace,

	GetProvidedProps: func(sc scope.Scope, props NumericMenuProps, st state.State, b search.Bundle, _ []refinements.Metadata, _ *search.FacetValuesResults) connector.Props {
		items := numericMenuItems(sc, props, st, b)
		if props.TransformItems != nil {
			items = props.TransformItems(items)
		}
		canRefine := false
		for _, it := range items {
			if !it.NoRefinement {
				canRefine = true
				break
			}
		}
		return connector.Props{
			"items":             items,
			"currentRefinement": currentNumericMenu(sc, props, st),
			"canRefine":         len(items) > 0 && canRefine,
		}
	},

	GetID: func(props NumericMenuProps) string { return props.Attribute },

	Refine: func(sc scope.Scope, props NumericMenuProps, st state.State, value interface{}) state.State {
		next, _ := state.String(value)
		return refineAttribute(sc, st, NumericMenuNamespace, props.Attribute, next)
	},

	CleanUp: func(sc scope.Scope, props NumericMenuProps, st state.State) state.State {
		return scope.CleanUpValue(st, sc, numericMenuID(props))
	},

	GetSearchParameters: func(sc scope.Scope, params search.Parameters, props NumericMenuProps, st state.State) search.Parameters {
		params = params.AddDisjunctiveFacet(props.Attribute)
		start, end := ParseRange(currentNumericMenu(sc, props, st))
		if start != nil {
			params = params.AddNumericRefinement(props.Attribute, search.OpGTE, *start)
		}
		if end != nil {
			params = params.AddNumericRefinement(props.Attribute, search.OpLTE, *end)
		}
		return params
	},

	GetMetadata: func(sc scope.Scope, props NumericMenuProps, st state.State) refinements.Metadata {
		meta := refinements.Metadata{ID: props.Attribute, Index: indexOf(sc), Items: []refinements.Item{}}
		cur := currentNumericMenu(sc, props, st)
		if cur == "" {
			return meta
		}
		label := numericMenuLabel(props, cur)
		meta.Items = append(meta.Items, refinements.Item{
			Label:             props.Attribute + ": " + label,
			Attribute:         props.Attribute,
			CurrentRefinement: label,
			Clear:             clearAttribute(sc, NumericMenuNamespace, props.Attribute),
		})
		return meta
	},
}
