package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// Gemini uses the Google GenAI SDK. The client is built on first use so the
// zero-argument constructor matches the other providers.
type Gemini struct {
	APIKey  string
	ModelID string

	once    sync.Once
	client  *genai.Client
	initErr error
}

func NewGemini(apiKey, model string) *Gemini {
	if model == "" {
		model = "gemini-1.5-flash-latest"
	}
	return &Gemini{APIKey: apiKey, ModelID: model}
}

func (g *Gemini) Name() string  { return "gemini" }
func (g *Gemini) Model() string { return g.ModelID }

func (g *Gemini) Complete(ctx context.Context, prompt string, mode Mode) (string, error) {
	g.once.Do(func() {
		g.client, g.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	if g.initErr != nil {
		return "", fmt.Errorf("%w: %v", ErrConnection, g.initErr)
	}

	var cfg *genai.GenerateContentConfig
	if mode == ModeJSON {
		cfg = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.ModelID, genai.Text(prompt), cfg)
	if err != nil {
		return "", classifyGenAIError(err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("completion response is empty")
	}
	return text, nil
}

func classifyGenAIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("%w: %v", ErrConnection, err)
}
