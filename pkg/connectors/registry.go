package connectors

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/grovetools/searchcore/errors"
	"github.com/grovetools/searchcore/pkg/connector"
	"github.com/grovetools/searchcore/pkg/scope"
)

// Widget is a mounted connector instance whatever its props type.
type Widget interface {
	ID() string
	DisplayName() string
	Props() connector.Props
	Refine(value interface{}) error
	CreateURL(value interface{}) (string, error)
	SearchForItems(query string) error
	OnRender(fn connector.RenderFunc)
	Renders() int
	Unmount()
	Mounted() bool
}

// MountFunc decodes raw props and mounts a connector on host in sc.
type MountFunc func(host connector.Host, raw map[string]interface{}, sc scope.Scope) (Widget, error)

type entry struct {
	mount MountFunc
	props interface{}
}

// Widget type names accepted in configuration.
const (
	TypeHits               = "hits"
	TypePagination         = "pagination"
	TypeMenu               = "menu"
	TypeRefinementList     = "refinementList"
	TypeNumericMenu        = "numericMenu"
	TypeHierarchicalMenu   = "hierarchicalMenu"
	TypeBreadcrumb         = "breadcrumb"
	TypeSearchBox          = "searchBox"
	TypeConfigure          = "configure"
	TypeCurrentRefinements = "currentRefinements"
	TypeStateResults       = "stateResults"
)

var registry = map[string]entry{
	TypeHits:               register(Hits, nil),
	TypePagination:         register(Pagination, nil),
	TypeMenu:               register(Menu, validateMenu),
	TypeRefinementList:     register(RefinementList, validateRefinementList),
	TypeNumericMenu:        register(NumericMenu, validateNumericMenu),
	TypeHierarchicalMenu:   register(HierarchicalMenu, validateHierarchicalMenu),
	TypeBreadcrumb:         register(Breadcrumb, validateBreadcrumb),
	TypeSearchBox:          register(SearchBox, nil),
	TypeConfigure:          register(Configure, nil),
	TypeCurrentRefinements: register(CurrentRefinements, nil),
	TypeStateResults:       register(StateResults, nil),
}

func register[P any](c connector.Connector[P], validate func(P) error) entry {
	var zero P
	return entry{
		props: zero,
		mount: func(host connector.Host, raw map[string]interface{}, sc scope.Scope) (Widget, error) {
			props, err := DecodeProps[P](raw)
			if err != nil {
				return nil, err
			}
			if validate != nil {
				if err := validate(props); err != nil {
					return nil, err
				}
			}
			inst, err := connector.Mount(host, c, props, sc)
			if err != nil {
				return nil, err
			}
			return inst, nil
		},
	}
}

// DecodeProps decodes a configuration map into typed props. Keys use the
// yaml tag names; unknown keys are rejected.
func DecodeProps[P any](raw map[string]interface{}) (P, error) {
	var props P
	if raw == nil {
		raw = map[string]interface{}{}
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &props,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return props, fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return props, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid widget props")
	}
	return props, nil
}

// Mount mounts a widget of the named type.
func Mount(host connector.Host, typ string, raw map[string]interface{}, sc scope.Scope) (Widget, error) {
	e, ok := registry[typ]
	if !ok {
		return nil, errors.UnknownWidget(typ)
	}
	w, err := e.mount(host, raw, sc)
	if err != nil {
		if se, ok := err.(*errors.SearchError); ok {
			return nil, se.WithDetail("type", typ)
		}
		return nil, err
	}
	return w, nil
}

// Types lists the registered widget types in sorted order.
func Types() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// PropsOf returns the zero props value of a widget type, for schema
// generation.
func PropsOf(typ string) (interface{}, bool) {
	e, ok := registry[typ]
	if !ok {
		return nil, false
	}
	return e.props, true
}

func requireAttribute(attr string) error {
	if attr == "" {
		return errors.ConfigInvalid("`attribute` is required")
	}
	return nil
}

func requireAttributes(attrs []string) error {
	if len(attrs) == 0 {
		return errors.ConfigInvalid("`attributes` needs at least one attribute")
	}
	return nil
}

func validateMenu(p MenuProps) error { return requireAttribute(p.Attribute) }

func validateRefinementList(p RefinementListProps) error {
	if err := requireAttribute(p.Attribute); err != nil {
		return err
	}
	switch p.Operator {
	case "", OperatorOr, OperatorAnd:
		return nil
	}
	return errors.ConfigInvalid(fmt.Sprintf("unknown operator %q", p.Operator))
}

func validateNumericMenu(p NumericMenuProps) error { return requireAttribute(p.Attribute) }

func validateHierarchicalMenu(p HierarchicalMenuProps) error {
	return requireAttributes(p.Attributes)
}

func validateBreadcrumb(p BreadcrumbProps) error { return requireAttributes(p.Attributes) }
