package llm

import (
	"context"
	"strings"
)

// Noop is a deterministic provider for dev mode and tests. It keys canned
// output off recognizable fragments of the rendered prompt.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Name() string  { return "noop" }
func (n *Noop) Model() string { return "noop" }

func (n *Noop) Complete(_ context.Context, prompt string, mode Mode) (string, error) {
	lower := strings.ToLower(prompt)
	if mode == ModeJSON {
		switch {
		case strings.Contains(lower, "fraud detection expert"):
			return `{"is_suspicious": false, "reason": "no red flags found", "confidence_score": 0.1}`, nil
		case strings.Contains(lower, "must-have requirements"):
			return `{"summary": "Placeholder summary.", "skills": ["Go", "SQL"], "mustHaves": ["3+ years experience"]}`, nil
		case strings.Contains(lower, "rewrite a 2-3 line summary"):
			return `{"summary": "Placeholder resume summary.", "bullets": ["Did a thing", "Did another thing", "Shipped it"]}`, nil
		default:
			return `{"matches": ["Go"], "gaps": ["Kubernetes"]}`, nil
		}
	}
	if strings.Contains(lower, "screening questions") {
		return "What interests you about this role?\nWalk me through your background.\nWhat is your notice period?", nil
	}
	return "Hello! This is a canned completion from the noop provider.", nil
}
