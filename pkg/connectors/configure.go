package connectors

import (
	"github.com/grovetools/searchcore/pkg/connector"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

// ConfigureProps are raw query parameters, e.g. {"distinct": 1}.
type ConfigureProps map[string]interface{}

func (p ConfigureProps) keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	return keys
}

// Configure applies arbitrary query parameters and mirrors them in the
// state under "configure".
var Configure = connector.Connector[ConfigureProps]{
	DisplayName: "Configure",

	GetProvidedProps: func(scope.Scope, ConfigureProps, state.State, search.Bundle, []refinements.Metadata, *search.FacetValuesResults) connector.Props {
		return connector.Props{}
	},

	GetID: func(ConfigureProps) string { return ConfigureKey },

	GetSearchParameters: func(_ scope.Scope, params search.Parameters, props ConfigureProps, _ state.State) search.Parameters {
		return params.SetQueryParameters(props)
	},

	// Keys the previous props declared and the current ones do not are
	// dropped. Keys set by anything else stay.
	TransitionState: func(sc scope.Scope, prevProps, props ConfigureProps, _, next state.State) state.State {
		var dropped []string
		for k := range prevProps {
			if _, ok := props[k]; !ok {
				dropped = append(dropped, k)
			}
		}
		value := state.State(scope.Slice(next, sc).Branch(ConfigureKey)).Omit(dropped...)
		for k, v := range props {
			value[k] = v
		}
		return scope.RefineValue(next, map[string]interface{}{ConfigureKey: map[string]interface{}(value)}, sc, false, "")
	},

	CleanUp: func(sc scope.Scope, props ConfigureProps, st state.State) state.State {
		stored := state.State(scope.Slice(st, sc).Branch(ConfigureKey)).Omit(props.keys()...)
		return scope.RefineValue(st, map[string]interface{}{ConfigureKey: map[string]interface{}(stored)}, sc, false, "")
	},
}
