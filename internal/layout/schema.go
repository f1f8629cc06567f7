package layout

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const (
	layoutSchemaURL   = "schema://quizdeck/layout.json"
	envelopeSchemaURL = "schema://quizdeck/question.json"
)

// layoutSchema checks only the structure the interpreter depends on.
// Variant payloads are checked element by element in DecodeElement so one
// bad element does not reject the whole question.
var layoutSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"header": map[string]any{"type": []any{"string", "object", "null"}},
	},
	"additionalProperties": map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []any{"type"},
			"properties": map[string]any{
				"type": map[string]any{"type": "string"},
			},
		},
	},
}

var envelopeSchema = map[string]any{
	"type":     "object",
	"required": []any{"layout"},
	"properties": map[string]any{
		"type":       map[string]any{"type": []any{"string", "null"}},
		"seed":       map[string]any{"type": []any{"string", "integer", "null"}},
		"difficulty": map[string]any{"type": []any{"string", "null"}},
		"metadata":   map[string]any{"type": []any{"object", "null"}},
		"layout":     map[string]any{"$ref": layoutSchemaURL},
	},
}

var (
	compileOnce      sync.Once
	compiledLayout   *jsonschema.Schema
	compiledEnvelope *jsonschema.Schema
	compileErr       error
)

// InvalidError reports a layout or envelope that fails schema validation.
type InvalidError struct {
	Err error
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid layout: %v", e.Err)
}

func (e *InvalidError) Unwrap() error {
	return e.Err
}

func compileSchemas() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(layoutSchemaURL, layoutSchema); err != nil {
		compileErr = fmt.Errorf("add layout schema: %w", err)
		return
	}
	if err := c.AddResource(envelopeSchemaURL, envelopeSchema); err != nil {
		compileErr = fmt.Errorf("add envelope schema: %w", err)
		return
	}
	if compiledLayout, compileErr = c.Compile(layoutSchemaURL); compileErr != nil {
		return
	}
	compiledEnvelope, compileErr = c.Compile(envelopeSchemaURL)
}

// ValidateLayout checks a bare layout object.
func ValidateLayout(data []byte) error {
	return validate(data, func() *jsonschema.Schema { return compiledLayout })
}

// ValidateEnvelope checks a question envelope including its layout.
func ValidateEnvelope(data []byte) error {
	return validate(data, func() *jsonschema.Schema { return compiledEnvelope })
}

func validate(data []byte, pick func() *jsonschema.Schema) error {
	compileOnce.Do(compileSchemas)
	if compileErr != nil {
		return fmt.Errorf("compile layout schema: %w", compileErr)
	}
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return &InvalidError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := pick().Validate(parsed); err != nil {
		return &InvalidError{Err: err}
	}
	return nil
}
