// Package connector defines the contract a widget type implements and binds
// connectors to a host as mounted widget instances.
//
// A connector is a set of pure functions. Every effect (registration,
// subscriptions, scheduling) lives in Instance and in the host.
package connector

import (
	"github.com/grovetools/searchcore/errors"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/pkg/widgets"
	"github.com/grovetools/searchcore/state"
)

// Props is the computed view a widget hands to its presentation. A nil
// Props means the widget has nothing to render.
type Props map[string]interface{}

// Connector describes a widget type for props of type P. Only DisplayName
// and GetProvidedProps are required.
type Connector[P any] struct {
	DisplayName string

	GetProvidedProps func(sc scope.Scope, props P, st state.State, b search.Bundle, metadata []refinements.Metadata, fv *search.FacetValuesResults) Props

	GetID func(props P) string

	// Namespace is the state branch the widget refines under, keyed by its
	// id. Empty means the id is a top-level key.
	Namespace string

	// GetSearchParameters must be idempotent: it is replayed on every
	// recomputation over freshly built parameters.
	GetSearchParameters func(sc scope.Scope, params search.Parameters, props P, st state.State) search.Parameters

	GetMetadata func(sc scope.Scope, props P, st state.State) refinements.Metadata

	// TransitionState runs when the widget's own props change and on every
	// refine. prevProps are the props of the instance's previous transition,
	// the zero value the first time.
	TransitionState func(sc scope.Scope, prevProps, props P, prev, next state.State) state.State

	// CleanUp removes exactly the widget's keys on unmount.
	CleanUp func(sc scope.Scope, props P, st state.State) state.State

	Refine func(sc scope.Scope, props P, st state.State, value interface{}) state.State

	SearchForFacetValues func(sc scope.Scope, props P, st state.State, query string) search.FacetValuesRequest

	// ShouldUpdate overrides the shallow equality render gate.
	ShouldUpdate func(prevProps, nextProps P, prev, next Props) bool
}

// Capabilities derives the capability set from the hooks that are set.
func (c Connector[P]) Capabilities() widgets.Capabilities {
	var caps widgets.Capabilities
	if c.GetSearchParameters != nil {
		caps |= widgets.ComputesSearchParameters
	}
	if c.GetMetadata != nil {
		caps |= widgets.ComputesMetadata
	}
	if c.TransitionState != nil {
		caps |= widgets.TransitionsState
	}
	if c.CleanUp != nil {
		caps |= widgets.CleansUp
	}
	if c.Refine != nil {
		caps |= widgets.RefinesSearch
	}
	if c.SearchForFacetValues != nil {
		caps |= widgets.SearchesFacetValues
	}
	return caps
}

// Validate checks the required fields.
func (c Connector[P]) Validate() error {
	if c.DisplayName == "" {
		return errors.ConnectorInvalid("`DisplayName` is a required property")
	}
	if c.GetProvidedProps == nil {
		return errors.ConnectorInvalid("`GetProvidedProps` is required").
			WithDetail("connector", c.DisplayName)
	}
	return nil
}
