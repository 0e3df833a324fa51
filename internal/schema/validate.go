package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type ErrorKind string

const (
	KindMalformedJSON ErrorKind = "malformed-json"
	KindMissingField  ErrorKind = "missing-field"
	KindTypeMismatch  ErrorKind = "type-mismatch"
	KindOutOfRange    ErrorKind = "out-of-range"
)

// ValidationError classifies one way a raw completion failed its schema.
type ValidationError struct {
	Kind     ErrorKind
	Field    string
	Expected string
	Actual   string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindMalformedJSON:
		return "response is not valid JSON"
	case KindMissingField:
		return fmt.Sprintf("missing required field %q", e.Field)
	case KindTypeMismatch:
		return fmt.Sprintf("field %q: expected %s, got %s", e.Field, e.Expected, e.Actual)
	case KindOutOfRange:
		return fmt.Sprintf("field %q is out of range", e.Field)
	default:
		return "schema validation failed"
	}
}

// Validate parses raw JSON text against the schema and returns the typed
// result. It never returns a partial result: the first failure wins, in
// declaration order missing-field, then type-mismatch, then out-of-range.
func (s *Schema) Validate(raw string) (map[string]any, error) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &ValidationError{Kind: KindMalformedJSON}
	}

	for _, f := range s.Fields {
		if f.Sanitize == nil {
			continue
		}
		if v, ok := parsed[f.Name]; ok {
			parsed[f.Name] = f.Sanitize(v)
		}
	}

	for _, f := range s.Fields {
		if !f.Required {
			continue
		}
		if _, ok := parsed[f.Name]; !ok {
			return nil, &ValidationError{Kind: KindMissingField, Field: f.Name}
		}
	}

	if err := s.compiled.Validate(parsed); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return nil, s.classify(ve, parsed)
		}
		return nil, &ValidationError{Kind: KindTypeMismatch}
	}

	out := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		v, ok := parsed[f.Name]
		if !ok {
			continue
		}
		out[f.Name] = typedValue(f.Type, v)
	}
	return out, nil
}

// classify maps the engine's leaf causes onto the error taxonomy and returns
// the highest-priority one.
func (s *Schema) classify(ve *jsonschema.ValidationError, parsed map[string]any) *ValidationError {
	var best *ValidationError
	for _, leaf := range leaves(ve) {
		mapped := s.mapLeaf(leaf, parsed)
		if mapped == nil {
			continue
		}
		if best == nil || kindRank(mapped.Kind) < kindRank(best.Kind) {
			best = mapped
		}
	}
	if best == nil {
		best = &ValidationError{Kind: KindTypeMismatch}
	}
	return best
}

func (s *Schema) mapLeaf(leaf *jsonschema.ValidationError, parsed map[string]any) *ValidationError {
	field := instanceField(leaf.InstanceLocation)
	keyword := leaf.KeywordLocation[strings.LastIndex(leaf.KeywordLocation, "/")+1:]
	switch keyword {
	case "required":
		for _, f := range s.Fields {
			if f.Required {
				if _, ok := parsed[f.Name]; !ok {
					return &ValidationError{Kind: KindMissingField, Field: f.Name}
				}
			}
		}
		return &ValidationError{Kind: KindMissingField, Field: field}
	case "type":
		expected := "value"
		if f := s.field(field); f != nil {
			expected = string(f.Type)
		}
		return &ValidationError{
			Kind:     KindTypeMismatch,
			Field:    field,
			Expected: expected,
			Actual:   jsonTypeName(parsed[field]),
		}
	case "minimum", "maximum":
		return &ValidationError{Kind: KindOutOfRange, Field: field}
	default:
		return nil
	}
}

func leaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		out = append(out, leaves(cause)...)
	}
	return out
}

func kindRank(kind ErrorKind) int {
	switch kind {
	case KindMissingField:
		return 0
	case KindTypeMismatch:
		return 1
	case KindOutOfRange:
		return 2
	default:
		return 3
	}
}

func instanceField(location string) string {
	trimmed := strings.TrimPrefix(location, "/")
	if idx := strings.Index(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func typedValue(t FieldType, v any) any {
	if t != TypeStringList {
		return v
	}
	items, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if str, ok := item.(string); ok {
			out = append(out, str)
		}
	}
	return out
}
