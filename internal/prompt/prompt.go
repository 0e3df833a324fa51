package prompt

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// MissingFieldError reports a template placeholder with no caller-supplied value.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing field: " + e.Field
}

// Registry holds named prompt templates. Templates use {name} placeholders;
// values are filled verbatim, with no sanitization of caller input.
type Registry struct {
	templates map[string]string
}

func NewRegistry() *Registry {
	templates := make(map[string]string, len(defaults))
	for name, tpl := range defaults {
		templates[name] = tpl
	}
	return &Registry{templates: templates}
}

// LoadOverrides merges templates from a yaml file of name -> template text.
func (r *Registry) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return err
	}
	for name, tpl := range overrides {
		r.templates[name] = tpl
	}
	return nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Render fills the named template from fields. Every placeholder must have a
// value or rendering fails with MissingFieldError; extra fields are ignored.
func (r *Registry) Render(name string, fields map[string]any) (string, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template: %s", name)
	}
	var missing string
	out := placeholderRe.ReplaceAllStringFunc(tpl, func(match string) string {
		key := match[1 : len(match)-1]
		val, ok := fields[key]
		if !ok {
			if missing == "" {
				missing = key
			}
			return match
		}
		return FormatValue(val)
	})
	if missing != "" {
		return "", &MissingFieldError{Field: missing}
	}
	return out, nil
}

// Join is the list-to-text rule applied to sequence-valued fields before
// substitution. Callers replicating rendered output must use the same join.
func Join(values []string) string {
	return strings.Join(values, ", ")
}

func FormatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return Join(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
		return Join(parts)
	default:
		return fmt.Sprint(val)
	}
}
