package schema

//go:generate go run ../tools/schema-generator -o searchcore.schema.json

import (
	"encoding/json"
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/grovetools/searchcore/config"
	"github.com/grovetools/searchcore/pkg/connectors"
)

const widgetDef = "widget"

// Build composes the configuration schema: the core keys, one property per
// extension and a widget definition whose props are checked per widget type.
func Build() *jsonschema.Schema {
	base := &jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		ExpandedStruct:             true,
		FieldNameTag:               "yaml",
		DoNotReference:             true,
		Anonymous:                  true,
		RequiredFromJSONSchemaTags: true,
	}

	root := base.Reflect(&config.Config{})
	root.Title = "searchcore configuration"
	root.Description = "Schema for searchcore.yml."

	root.Properties.Set("widgets", &jsonschema.Schema{
		Type:        "array",
		Description: "Widgets mounted at startup",
		Items:       &jsonschema.Schema{Ref: "#/$defs/" + widgetDef},
	})

	keys := make([]string, 0, len(Extensions))
	for k := range Extensions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ext := base.Reflect(Extensions[k])
		ext.Version = ""
		ext.Required = nil
		root.Properties.Set(k, ext)
	}

	root.Definitions = jsonschema.Definitions{widgetDef: widgetSchema()}
	return root
}

// widgetSchema describes one entry of a widget list. Props are reflected
// from the connector props with fields lacking omitempty required.
func widgetSchema() *jsonschema.Schema {
	props := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
		DoNotReference:            true,
		Anonymous:                 true,
	}

	types := append(connectors.Types(), config.WidgetTypeIndex)
	sort.Strings(types)
	enum := make([]any, len(types))
	for i, t := range types {
		enum[i] = t
	}

	properties := jsonschema.NewProperties()
	properties.Set("type", &jsonschema.Schema{Type: "string", Enum: enum, Description: "Widget type"})
	properties.Set("index", &jsonschema.Schema{Type: "string", Description: "Index name of an index widget"})
	properties.Set("id", &jsonschema.Schema{Type: "string", Description: "Index id of an index widget (default: the index name)"})
	properties.Set("props", &jsonschema.Schema{Type: "object", Description: "Connector props"})
	properties.Set("widgets", &jsonschema.Schema{
		Type:        "array",
		Description: "Widgets scoped to an index widget",
		Items:       &jsonschema.Schema{Ref: "#/$defs/" + widgetDef},
	})

	s := &jsonschema.Schema{
		Type:                 "object",
		Properties:           properties,
		Required:             []string{"type"},
		AdditionalProperties: jsonschema.FalseSchema,
	}

	for _, t := range types {
		then := &jsonschema.Schema{}
		if t == config.WidgetTypeIndex {
			then.Required = []string{"index"}
		} else {
			zero, _ := connectors.PropsOf(t)
			p := props.Reflect(zero)
			p.Version = ""
			thenProps := jsonschema.NewProperties()
			thenProps.Set("props", p)
			then.Properties = thenProps
			then.Not = &jsonschema.Schema{AnyOf: []*jsonschema.Schema{
				{Required: []string{"index"}},
				{Required: []string{"id"}},
				{Required: []string{"widgets"}},
			}}
		}

		ifProps := jsonschema.NewProperties()
		ifProps.Set("type", &jsonschema.Schema{Const: t})
		s.AllOf = append(s.AllOf, &jsonschema.Schema{
			If:   &jsonschema.Schema{Properties: ifProps, Required: []string{"type"}},
			Then: then,
		})
	}
	return s
}

// Generate renders the composed schema as indented JSON.
func Generate() ([]byte, error) {
	return json.MarshalIndent(Build(), "", "  ")
}
