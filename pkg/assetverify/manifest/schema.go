package manifest

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed manifest.schema.json
var schemaJSON []byte

var (
	compiledOnce   sync.Once
	compiledSchema *gojsonschema.Schema
	compileErr     error
)

// ValidationError is a single schema violation.
type ValidationError struct {
	Field   string
	Message string
}

// schema returns the compiled manifest schema.
func schema() (*gojsonschema.Schema, error) {
	compiledOnce.Do(func() {
		compiledSchema, compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling manifest schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Validate checks raw manifest JSON against the manifest schema. It returns
// the violations found (nil when the document is valid), or an error when
// the document cannot be parsed as JSON at all.
func Validate(data []byte) ([]ValidationError, error) {
	sch, err := schema()
	if err != nil {
		return nil, err
	}

	result, err := sch.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validating manifest: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]ValidationError, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		field := verr.Field()
		if field == "" {
			field = "(root)"
		}
		violations = append(violations, ValidationError{
			Field:   field,
			Message: verr.Description(),
		})
	}
	return violations, nil
}
