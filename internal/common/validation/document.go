package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// DocumentValidator checks raw JSON documents against a compiled JSON Schema.
type DocumentValidator struct {
	schema *gojsonschema.Schema
}

// NewDocumentValidator compiles schemaJSON.
func NewDocumentValidator(schemaJSON string) (*DocumentValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &DocumentValidator{schema: schema}, nil
}

// MustDocumentValidator is NewDocumentValidator for package-level schemas.
func MustDocumentValidator(schemaJSON string) *DocumentValidator {
	v, err := NewDocumentValidator(schemaJSON)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate reports malformed JSON and schema violations as one error.
func (d *DocumentValidator) Validate(doc []byte) error {
	if len(strings.TrimSpace(string(doc))) == 0 {
		return fmt.Errorf("empty document")
	}

	result, err := d.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("document validation failed: %v", errs)
	}
	return nil
}

// ValidateValue checks an already decoded Go value.
func (d *DocumentValidator) ValidateValue(v interface{}) error {
	result, err := d.schema.Validate(gojsonschema.NewGoLoader(v))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("document validation failed: %v", errs)
	}
	return nil
}
