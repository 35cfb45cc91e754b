// Package schemas validates fixture documents against embedded JSON Schemas.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// SeedSchema is the JSON Schema every seed fixture must satisfy.
//
//go:embed seed.schema.json
var SeedSchema string

// seedSchema is compiled on first use and shared afterwards.
var seedSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(SeedSchema))
})

// FieldError is one schema violation. Field is a dotted path such as
// "jobs.0.type", or "(root)".
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Document string
	Errors   []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d schema violation(s):\n", ve.Document, len(ve.Errors))
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// Fields returns the paths of the offending fields in report order.
func (ve *ValidationError) Fields() []string {
	out := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		out[i] = err.Field
	}
	return out
}

// SchemaLoadError reports a schema that does not compile or a document that
// is not JSON, as opposed to a document that violates the schema.
type SchemaLoadError struct {
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateSeed validates a seed fixture document.
func ValidateSeed(doc []byte) error {
	schema, err := seedSchema()
	if err != nil {
		return &SchemaLoadError{Message: "seed schema does not compile", Cause: err}
	}
	return validate(schema, "seed", doc)
}

// ValidateDocument validates doc against schema source.
func ValidateDocument(schema string, doc []byte) error {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		return &SchemaLoadError{Message: "schema does not compile", Cause: err}
	}
	return validate(compiled, "document", doc)
}

func validate(schema *gojsonschema.Schema, name string, doc []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &SchemaLoadError{Message: name + " is not valid JSON", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Document: name, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}
