package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type FieldType string

const (
	TypeString     FieldType = "string"
	TypeBool       FieldType = "boolean"
	TypeNumber     FieldType = "number"
	TypeStringList FieldType = "string-list"
)

// SanitizeFunc rewrites a raw parsed value before validation. Sanitizers are
// declared per field, never applied globally.
type SanitizeFunc func(any) any

type Field struct {
	Name     string
	Type     FieldType
	Required bool
	Min      *float64
	Max      *float64
	Sanitize SanitizeFunc
}

// Schema declares the shape a structured completion must satisfy. Compile
// renders it to a JSON Schema document so the compiled form does the type and
// range checking.
type Schema struct {
	ID     string
	Fields []Field

	compiled *jsonschema.Schema
}

func (s *Schema) document() map[string]any {
	props := make(map[string]any, len(s.Fields))
	var required []string
	for _, f := range s.Fields {
		var prop map[string]any
		switch f.Type {
		case TypeString:
			prop = map[string]any{"type": "string"}
		case TypeBool:
			prop = map[string]any{"type": "boolean"}
		case TypeNumber:
			prop = map[string]any{"type": "number"}
			if f.Min != nil {
				prop["minimum"] = *f.Min
			}
			if f.Max != nil {
				prop["maximum"] = *f.Max
			}
		case TypeStringList:
			prop = map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			}
		}
		props[f.Name] = prop
		if f.Required {
			required = append(required, f.Name)
		}
	}
	doc := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

func (s *Schema) Compile() error {
	data, err := json.Marshal(s.document())
	if err != nil {
		return err
	}
	name := s.ID + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return err
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return fmt.Errorf("compile schema %s: %w", s.ID, err)
	}
	s.compiled = compiled
	return nil
}

func (s *Schema) field(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// Registry maps operation names to schemas. Read-only after New.
type Registry struct {
	schemas map[string]*Schema
}

func NewRegistry() (*Registry, error) {
	r := &Registry{schemas: make(map[string]*Schema)}
	for _, s := range defaultSchemas() {
		if err := r.Add(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Add(s *Schema) error {
	if s.compiled == nil {
		if err := s.Compile(); err != nil {
			return err
		}
	}
	r.schemas[s.ID] = s
	return nil
}

// For returns the schema declared for an operation, if any. Operations that
// return free text have none.
func (r *Registry) For(operation string) (*Schema, bool) {
	s, ok := r.schemas[operation]
	return s, ok
}

var nonDigitRe = regexp.MustCompile(`[^\d]`)

// SanitizeNumericString strips all non-digit characters from a numeric-looking
// string and parses the remainder as a number. Non-string values pass through.
func SanitizeNumericString(v any) any {
	str, ok := v.(string)
	if !ok {
		return v
	}
	cleaned := nonDigitRe.ReplaceAllString(str, "")
	if cleaned == "" {
		return v
	}
	num, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return v
	}
	return num
}

func floatPtr(v float64) *float64 {
	return &v
}

func defaultSchemas() []*Schema {
	return []*Schema{
		{
			ID: "jd_extract",
			Fields: []Field{
				{Name: "summary", Type: TypeString, Required: true},
				{Name: "skills", Type: TypeStringList, Required: true},
				{Name: "mustHaves", Type: TypeStringList, Required: true},
			},
		},
		{
			ID: "resume_map",
			Fields: []Field{
				{Name: "matches", Type: TypeStringList, Required: true},
				{Name: "gaps", Type: TypeStringList, Required: true},
				// Opaque model judgment, not computed or audited locally.
				{Name: "successProbability", Type: TypeNumber, Min: floatPtr(0), Max: floatPtr(1)},
			},
		},
		{
			ID: "tailor_resume",
			Fields: []Field{
				{Name: "summary", Type: TypeString, Required: true},
				{Name: "bullets", Type: TypeStringList, Required: true},
			},
		},
		{
			ID: "fraud_detection",
			Fields: []Field{
				{Name: "is_suspicious", Type: TypeBool, Required: true},
				{Name: "reason", Type: TypeString, Required: true},
				{Name: "confidence_score", Type: TypeNumber, Required: true, Min: floatPtr(0), Max: floatPtr(1)},
			},
		},
	}
}
