package connector

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/searchcore/errors"
	"github.com/grovetools/searchcore/logging"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/pkg/store"
	"github.com/grovetools/searchcore/pkg/widgets"
	"github.com/grovetools/searchcore/state"
)

// RenderFunc is called with the new props each time the render gate opens.
type RenderFunc func(Props)

// Instance is a connector mounted with concrete props in a scope. It
// implements widgets.Widget.
type Instance[P any] struct {
	connector Connector[P]
	host      Host
	scope     scope.Scope
	logger    *logrus.Entry

	mu           sync.Mutex
	props        P
	transitioned P
	provided     Props
	renders      int
	onRender     RenderFunc
	unsubscribe  func()
	unregister   func()
	unmounted    bool
}

// Mount binds c to host with props in sc. A connector missing a required
// field fails with CONNECTOR_INVALID.
func Mount[P any](host Host, c Connector[P], props P, sc scope.Scope) (*Instance[P], error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if sc.Main == "" {
		sc.Main = host.MainIndex()
	}

	inst := &Instance[P]{
		connector: c,
		host:      host,
		scope:     sc,
		props:     props,
		logger:    logging.NewLogger("connector").WithField("widget", c.DisplayName),
	}

	inst.provided = inst.compute(host.Store().Get())
	inst.unsubscribe = host.Store().Subscribe(inst.onStoreChange)
	if c.Capabilities().Registers() {
		inst.unregister = host.Widgets().Register(inst)
	}
	return inst, nil
}

// MustMount is Mount for statically known connectors.
func MustMount[P any](host Host, c Connector[P], props P, sc scope.Scope) *Instance[P] {
	inst, err := Mount(host, c, props, sc)
	if err != nil {
		panic(err)
	}
	return inst
}

func (i *Instance[P]) compute(snap store.Snapshot) (provided Props) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.WithField("panic", fmt.Sprint(r)).Error("GetProvidedProps panicked")
			provided = nil
		}
	}()
	return i.connector.GetProvidedProps(i.scope, i.WidgetProps(), snap.Widgets, snap.Bundle(), snap.Metadata, snap.ResultsFacetValues)
}

// WidgetProps returns the props the widget was mounted or last updated with.
func (i *Instance[P]) WidgetProps() P {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.props
}

func (i *Instance[P]) onStoreChange(snap store.Snapshot) {
	next := i.compute(snap)

	i.mu.Lock()
	if i.unmounted {
		i.mu.Unlock()
		return
	}
	prev := i.provided
	var changed bool
	if i.connector.ShouldUpdate != nil {
		changed = i.connector.ShouldUpdate(i.props, i.props, prev, next)
	} else {
		changed = !ShallowEqual(prev, next)
	}
	if !changed {
		i.mu.Unlock()
		return
	}
	i.provided = next
	i.renders++
	cb := i.onRender
	i.mu.Unlock()

	if cb != nil {
		cb(next)
	}
}

// OnRender installs the callback run when the provided props change.
func (i *Instance[P]) OnRender(fn RenderFunc) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.onRender = fn
}

// Renders counts how many times the render gate opened.
func (i *Instance[P]) Renders() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.renders
}

// Props returns the latest provided props. Nil means nothing to render.
func (i *Instance[P]) Props() Props {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.provided
}

// ID returns the widget id when the connector defines one.
func (i *Instance[P]) ID() string {
	if i.connector.GetID == nil {
		return ""
	}
	return i.connector.GetID(i.WidgetProps())
}

// StateKey returns the dotted state path the widget refines, such as
// menu.brand, or "" for widgets without an id.
func (i *Instance[P]) StateKey() string {
	id := i.ID()
	if id == "" || i.connector.Namespace == "" {
		return id
	}
	return i.connector.Namespace + "." + id
}

// DisplayName returns the connector name.
func (i *Instance[P]) DisplayName() string {
	return i.connector.DisplayName
}

// SetProps updates the widget props. When they differ from the current ones
// the provided props are recomputed, the manager is asked for an update
// and TransitionState runs over the current state.
func (i *Instance[P]) SetProps(next P) {
	i.mu.Lock()
	if i.unmounted || reflect.DeepEqual(i.props, next) {
		i.mu.Unlock()
		return
	}
	prevProps := i.props
	i.props = next
	prevProvided := i.provided
	i.mu.Unlock()

	snap := i.host.Store().Get()
	provided := i.compute(snap)

	i.mu.Lock()
	changed := !ShallowEqual(prevProvided, provided)
	if i.connector.ShouldUpdate != nil {
		changed = i.connector.ShouldUpdate(prevProps, next, prevProvided, provided)
	}
	i.provided = provided
	var cb RenderFunc
	if changed {
		i.renders++
		cb = i.onRender
	}
	i.mu.Unlock()
	if cb != nil {
		cb(provided)
	}

	if i.connector.Capabilities().Registers() {
		i.host.Widgets().Update()
	}
	if i.connector.TransitionState != nil {
		widgetsState := snap.Widgets
		i.host.OnSearchStateChange(i.transition(next, widgetsState, widgetsState))
	}
}

// Unmount removes the widget. For registered widgets CleanUp runs exactly
// once and the pruned state is published. Unmounting twice is a no-op.
func (i *Instance[P]) Unmount() {
	i.mu.Lock()
	if i.unmounted {
		i.mu.Unlock()
		return
	}
	i.unmounted = true
	unsubscribe, unregister := i.unsubscribe, i.unregister
	i.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	// Widgets that never registered own no state.
	if unregister == nil {
		return
	}
	unregister()
	if i.connector.CleanUp == nil {
		return
	}

	props := i.WidgetProps()
	next := i.host.Store().Update(func(snap store.Snapshot) store.Snapshot {
		snap.Widgets = i.connector.CleanUp(i.scope, props, snap.Widgets)
		return snap
	})
	i.host.OnSearchStateChange(state.RemoveEmptyKey(next.Widgets))
}

// Mounted reports whether Unmount has not been called.
func (i *Instance[P]) Mounted() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return !i.unmounted
}

// Refine applies value through the connector and hands the resulting state
// to the host.
func (i *Instance[P]) Refine(value interface{}) error {
	next, err := i.refined(value)
	if err != nil {
		return err
	}
	i.host.OnInternalStateUpdate(next)
	return nil
}

// CreateURL returns the href of the state Refine(value) would produce.
func (i *Instance[P]) CreateURL(value interface{}) (string, error) {
	next, err := i.refined(value)
	if err != nil {
		return "", err
	}
	return i.host.CreateHrefForState(next), nil
}

func (i *Instance[P]) refined(value interface{}) (state.State, error) {
	if i.connector.Refine == nil {
		return nil, errors.ConnectorInvalid("connector cannot refine").
			WithDetail("connector", i.connector.DisplayName)
	}
	return i.connector.Refine(i.scope, i.WidgetProps(), i.host.Store().Get().Widgets, value), nil
}

// SearchForItems runs a facet-value search for query.
func (i *Instance[P]) SearchForItems(query string) error {
	if i.connector.SearchForFacetValues == nil {
		return errors.ConnectorInvalid("connector cannot search for facet values").
			WithDetail("connector", i.connector.DisplayName)
	}
	req := i.connector.SearchForFacetValues(i.scope, i.WidgetProps(), i.host.Store().Get().Widgets, query)
	i.host.OnSearchForFacetValues(i.scope, req)
	return nil
}

// Capabilities implements widgets.Widget.
func (i *Instance[P]) Capabilities() widgets.Capabilities {
	return i.connector.Capabilities()
}

// Scope implements widgets.Widget.
func (i *Instance[P]) Scope() scope.Scope {
	return i.scope
}

// SearchParameters implements widgets.Widget.
func (i *Instance[P]) SearchParameters(params search.Parameters, st state.State) search.Parameters {
	if i.connector.GetSearchParameters == nil {
		return params
	}
	return i.connector.GetSearchParameters(i.scope, params, i.WidgetProps(), st)
}

// Metadata implements widgets.Widget.
func (i *Instance[P]) Metadata(st state.State) refinements.Metadata {
	if i.connector.GetMetadata == nil {
		return refinements.Metadata{}
	}
	return i.connector.GetMetadata(i.scope, i.WidgetProps(), st)
}

// TransitionState implements widgets.Widget.
func (i *Instance[P]) TransitionState(prev, next state.State) state.State {
	if i.connector.TransitionState == nil {
		return next
	}
	return i.transition(i.WidgetProps(), prev, next)
}

func (i *Instance[P]) transition(props P, prev, next state.State) state.State {
	i.mu.Lock()
	last := i.transitioned
	i.transitioned = props
	i.mu.Unlock()
	return i.connector.TransitionState(i.scope, last, props, prev, next)
}
