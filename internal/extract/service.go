package extract

import (
	"context"
	"log"
	"strings"

	"applyboost/internal/llm"
	"applyboost/internal/memory"
	"applyboost/internal/prompt"
	"applyboost/internal/schema"
)

// TurnSaver persists a conversation turn after a successful completion. The
// app wires either a direct memory-store saver or a queue-backed one.
type TurnSaver interface {
	SaveTurn(ctx context.Context, content string) error
}

// Service is the orchestrator: look the operation up, render its prompt, make
// one completion call, validate structured output, classify any failure.
// Stateless between calls; safe for concurrent use.
type Service struct {
	prompts     *prompt.Registry
	schemas     *schema.Registry
	gateway     llm.Provider
	memory      memory.Store
	searchLimit int
	turns       TurnSaver

	ops   map[string]Operation
	order []string
}

func NewService(prompts *prompt.Registry, schemas *schema.Registry, gateway llm.Provider, mem memory.Store, searchLimit int, turns TurnSaver) *Service {
	s := &Service{
		prompts:     prompts,
		schemas:     schemas,
		gateway:     gateway,
		memory:      mem,
		searchLimit: searchLimit,
		turns:       turns,
		ops:         make(map[string]Operation),
	}
	for _, op := range DefaultOperations() {
		s.ops[op.Name] = op
		s.order = append(s.order, op.Name)
	}
	return s
}

// Operations returns the registered operations in declaration order, for
// route wiring.
func (s *Service) Operations() []Operation {
	out := make([]Operation, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.ops[name])
	}
	return out
}

// Run executes one operation against the caller's input payload. It makes at
// most one completion call and returns either the final value (validated
// mapping, processed lines, or raw text) or a classified *Error.
func (s *Service) Run(ctx context.Context, name string, input map[string]any) (any, error) {
	op, ok := s.ops[name]
	if !ok {
		return nil, &Error{Kind: KindUnknownOperation, Message: "unknown operation: " + name}
	}

	fields := bindInputs(op, input)
	if op.Memory {
		fields["memory_context"] = s.memoryContext(ctx, input)
	}

	rendered, err := s.prompts.Render(op.Template, fields)
	if err != nil {
		return nil, classify(err)
	}

	mode := llm.ModeText
	var target *schema.Schema
	if op.SchemaID != "" {
		target, ok = s.schemas.For(op.SchemaID)
		if !ok {
			return nil, &Error{Kind: KindUnknownOperation, Message: "no schema registered for operation: " + name}
		}
		mode = llm.ModeJSON
	}

	raw, err := s.gateway.Complete(ctx, rendered, mode)
	if err != nil {
		return nil, classify(err)
	}

	if target != nil {
		result, err := target.Validate(llm.CleanJSON(raw))
		if err != nil {
			return nil, classify(err)
		}
		return result, nil
	}

	if op.Memory {
		s.saveTurn(ctx, input, raw)
	}
	if op.Post == PostSplitLines {
		return splitLines(raw), nil
	}
	return raw, nil
}

// memoryContext searches the memory store for context relevant to the user
// message. Store failures degrade to an empty result set: absent context must
// never block answering.
func (s *Service) memoryContext(ctx context.Context, input map[string]any) string {
	if s.memory == nil {
		return "(none)"
	}
	query, _ := input["message"].(string)
	if query == "" {
		return "(none)"
	}
	items, err := s.memory.Search(ctx, query, s.searchLimit)
	if err != nil {
		log.Printf("memory search degraded to empty: %v", err)
		return "(none)"
	}
	if len(items) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Service) saveTurn(ctx context.Context, input map[string]any, reply string) {
	if s.turns == nil {
		return
	}
	message, _ := input["message"].(string)
	content := "user: " + message + "\nassistant: " + reply
	if err := s.turns.SaveTurn(ctx, content); err != nil {
		log.Printf("conversation turn save failed: %v", err)
	}
}

func bindInputs(op Operation, input map[string]any) map[string]any {
	fields := make(map[string]any, len(op.Inputs))
	for _, in := range op.Inputs {
		v, ok := input[in.BodyKey]
		if !ok || v == nil {
			if in.Optional {
				fields[in.Field] = ""
			}
			continue
		}
		fields[in.Field] = v
	}
	return fields
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
