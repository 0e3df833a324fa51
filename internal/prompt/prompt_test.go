package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderOutreach(t *testing.T) {
	r := NewRegistry()
	out, err := r.Render("outreach", map[string]any{
		"role":          "Engineer",
		"company":       "Acme",
		"jd_summary":    "Backend role building APIs.",
		"matches":       []string{"Python", "SQL"},
		"extra_context": "",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Engineer", "Acme", "Python, SQL"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected rendered prompt to contain %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "{role}") {
		t.Fatalf("placeholder left unfilled:\n%s", out)
	}
}

func TestRenderMissingFieldFails(t *testing.T) {
	r := NewRegistry()
	_, err := r.Render("jd_extract", map[string]any{})
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if missing.Field != "jd_text" {
		t.Fatalf("expected missing jd_text, got %s", missing.Field)
	}
}

func TestRenderIgnoresExtraFields(t *testing.T) {
	r := NewRegistry()
	out, err := r.Render("jd_extract", map[string]any{
		"jd_text": "We need a Go engineer.",
		"unused":  "whatever",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "We need a Go engineer.") {
		t.Fatalf("expected jd text substitution:\n%s", out)
	}
}

func TestRenderKeepsJSONExampleBraces(t *testing.T) {
	r := NewRegistry()
	out, err := r.Render("fraud_detection", map[string]any{"jd_text": "posting"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `"is_suspicious": boolean`) {
		t.Fatalf("expected JSON example to survive rendering:\n%s", out)
	}
}

func TestJoin(t *testing.T) {
	if got := Join([]string{"Python", "SQL", "Docker"}); got != "Python, SQL, Docker" {
		t.Fatalf("join mismatch: %q", got)
	}
	if got := FormatValue([]any{"a", "b"}); got != "a, b" {
		t.Fatalf("format []any mismatch: %q", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	data := []byte("outreach: \"Short note for {role} at {company}.\"\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write overrides: %v", err)
	}

	r := NewRegistry()
	if err := r.LoadOverrides(path); err != nil {
		t.Fatalf("load overrides: %v", err)
	}
	out, err := r.Render("outreach", map[string]any{"role": "SRE", "company": "Initech"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Short note for SRE at Initech." {
		t.Fatalf("expected overridden template, got %q", out)
	}
	if !r.Has("jd_extract") {
		t.Fatalf("override load must keep untouched defaults")
	}
}
