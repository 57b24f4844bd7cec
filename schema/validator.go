package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/grovetools/searchcore/config"
	"github.com/grovetools/searchcore/errors"
)

const schemaURL = "searchcore.schema.json"

// Validator validates configuration documents against the generated schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the generated schema.
func NewValidator() (*Validator, error) {
	data, err := Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// Validate validates a configuration document, typically the generic tree
// returned by config.ReadDocument.
func (v *Validator) Validate(doc interface{}) error {
	// Round-trip through JSON so the validator sees plain JSON values.
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal config to JSON for validation: %w", err)
	}

	var dataToValidate interface{}
	if err := json.Unmarshal(jsonData, &dataToValidate); err != nil {
		return fmt.Errorf("failed to unmarshal JSON for validation: %w", err)
	}

	if err := v.schema.Validate(dataToValidate); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			var errorMessages []string
			collectErrors(validationErr, &errorMessages)
			return errors.New(errors.ErrCodeConfigValidation,
				fmt.Sprintf("schema validation failed:\n%s", strings.Join(errorMessages, "\n"))).
				WithDetail("errors", errorMessages)
		}
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "schema validation failed")
	}

	return nil
}

// ValidateFile reads a configuration file and validates it.
func (v *Validator) ValidateFile(path string) error {
	doc, err := config.ReadDocument(path)
	if err != nil {
		return err
	}
	if err := v.Validate(doc); err != nil {
		if se, ok := err.(*errors.SearchError); ok {
			return se.WithDetail("path", path)
		}
		return err
	}
	return nil
}

// collectErrors recursively collects all validation errors into a slice
func collectErrors(err *jsonschema.ValidationError, messages *[]string) {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		*messages = append(*messages, fmt.Sprintf("- %s: %s", location, err.Message))
	}
	for _, cause := range err.Causes {
		collectErrors(cause, messages)
	}
}
