package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FieldError describes one schema violation: which record, which field,
// which constraint, and the offending value.
type FieldError struct {
	Index      int    `json:"index"`
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Value      any    `json:"value,omitempty"`
}

// ValidationError carries structured error descriptors together with the
// original (possibly non-conforming) data so callers can inspect or
// persist partial results instead of dropping them.
type ValidationError struct {
	Errors []FieldError
	Data   []any
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	first := e.Errors[0]
	return fmt.Sprintf("validation failed: %d error(s), first at record %d field %q: %s",
		len(e.Errors), first.Index, first.Field, first.Constraint)
}

// CompileSchema compiles a map-form JSON schema. Exposed so downstream
// consumers of the record contract can compile the collection schema too.
func CompileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

var (
	personSchemaOnce sync.Once
	personSchema     *jsonschema.Schema
	personSchemaErr  error
)

func compiledPersonSchema() (*jsonschema.Schema, error) {
	personSchemaOnce.Do(func() {
		personSchema, personSchemaErr = CompileSchema(BuildPersonJSONSchema())
	})
	return personSchema, personSchemaErr
}

// ValidateRecord checks one record against the person schema and returns
// field-level error descriptors (Index unset; the caller knows it).
// Required-field violations are always reported; absence of any optional
// field is not an error. The input is never mutated.
func ValidateRecord(rec map[string]any) []FieldError {
	var errs []FieldError
	for _, f := range requiredFields {
		v, present := rec[f]
		s, isString := v.(string)
		if !present || !isString || strings.TrimSpace(s) == "" {
			errs = append(errs, FieldError{
				Field:      f,
				Constraint: "required non-empty string",
				Value:      v,
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	schema, err := compiledPersonSchema()
	if err != nil {
		return []FieldError{{Constraint: fmt.Sprintf("schema unavailable: %v", err)}}
	}
	if err := schema.Validate(rec); err != nil {
		var ve *jsonschema.ValidationError
		if vErr, ok := err.(*jsonschema.ValidationError); ok {
			ve = vErr
		}
		if ve == nil {
			return []FieldError{{Constraint: err.Error()}}
		}
		return leafFieldErrors(rec, ve)
	}
	return nil
}

// ValidateRecords validates a sequence: homogeneous shape (every element
// an object) plus element-by-element schema checks, short-circuiting at
// the first invalid element. An empty sequence is valid - a document may
// mention nobody extractable.
func ValidateRecords(records []any) error {
	for i, el := range records {
		rec, ok := el.(map[string]any)
		if !ok {
			return &ValidationError{
				Errors: []FieldError{{Index: i, Constraint: "record must be an object", Value: el}},
				Data:   records,
			}
		}
		if fieldErrs := ValidateRecord(rec); len(fieldErrs) > 0 {
			for j := range fieldErrs {
				fieldErrs[j].Index = i
			}
			return &ValidationError{Errors: fieldErrs, Data: records}
		}
	}
	return nil
}

// leafFieldErrors flattens a nested jsonschema error into per-field
// descriptors.
func leafFieldErrors(rec map[string]any, ve *jsonschema.ValidationError) []FieldError {
	leaves := collectLeaves(ve)
	errs := make([]FieldError, 0, len(leaves))
	for _, leaf := range leaves {
		field := instanceField(leaf.InstanceLocation)
		fe := FieldError{Field: field, Constraint: leaf.Message}
		if field != "" {
			fe.Value = rec[field]
		}
		errs = append(errs, fe)
	}
	return errs
}

func collectLeaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var leaves []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		leaves = append(leaves, collectLeaves(cause)...)
	}
	return leaves
}

// instanceField maps a JSON-pointer instance location ("/gender") to the
// top-level field name.
func instanceField(location string) string {
	trimmed := strings.TrimPrefix(location, "/")
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}
