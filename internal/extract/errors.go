package extract

import (
	"errors"

	"applyboost/internal/llm"
	"applyboost/internal/prompt"
	"applyboost/internal/schema"
)

type Kind string

const (
	KindUnknownOperation  Kind = "unknown_operation"
	KindMissingField      Kind = "missing_field"
	KindGatewayConnection Kind = "gateway_connection"
	KindGatewayRateLimit  Kind = "gateway_rate_limit"
	KindSchemaValidation  Kind = "schema_validation"
	KindGatewayGeneric    Kind = "gateway_generic"
)

// Error is the single caller-facing failure type. Every internal failure is
// folded into exactly one Kind at the service boundary; nothing is swallowed.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func classify(err error) *Error {
	var missing *prompt.MissingFieldError
	if errors.As(err, &missing) {
		return &Error{Kind: KindMissingField, Message: missing.Error(), Err: err}
	}
	var invalid *schema.ValidationError
	if errors.As(err, &invalid) {
		return &Error{Kind: KindSchemaValidation, Message: invalid.Error(), Err: err}
	}
	if errors.Is(err, llm.ErrRateLimit) {
		return &Error{Kind: KindGatewayRateLimit, Message: "completion service rate limited, try again later", Err: err}
	}
	if errors.Is(err, llm.ErrConnection) {
		return &Error{Kind: KindGatewayConnection, Message: "completion call failed", Err: err}
	}
	return &Error{Kind: KindGatewayGeneric, Message: "completion call failed", Err: err}
}
