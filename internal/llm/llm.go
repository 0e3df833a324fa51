package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Mode is the response-format hint sent with a completion request. Providers
// forward it to the remote model; no local enforcement of JSON validity
// happens here.
type Mode string

const (
	ModeText Mode = "text"
	ModeJSON Mode = "json_object"
)

// Provider wraps one remote completion endpoint. Implementations make exactly
// one outbound call per Complete invocation: no retries, no backoff.
type Provider interface {
	Complete(ctx context.Context, prompt string, mode Mode) (string, error)
	Name() string
	Model() string
}

var (
	// ErrConnection: the completion service could not be reached.
	ErrConnection = errors.New("completion service unreachable")
	// ErrRateLimit: the service signaled quota exhaustion or backoff.
	ErrRateLimit = errors.New("completion service rate limited")
)

// StatusError is any other non-2xx response from the completion service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion service returned status %d", e.Code)
}

func classifyStatus(code int, body string) error {
	if code == 429 {
		return fmt.Errorf("%w: status %d", ErrRateLimit, code)
	}
	return &StatusError{Code: code, Body: body}
}

// CleanJSON strips markdown code fences some models wrap around JSON output.
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}
