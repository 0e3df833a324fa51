package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Store is the external long-term memory service: durable save and semantic
// search of free-text content. It is the only persistence this system touches.
type Store interface {
	Save(ctx context.Context, content string, tags []string) (string, error)
	Search(ctx context.Context, query string, limit int) ([]Item, error)
	Name() string
}

type Item struct {
	Content string
	Score   float64
}

var (
	ErrConnection = errors.New("memory service unreachable")
	ErrRateLimit  = errors.New("memory service rate limited")
)

type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("memory service returned status %d", e.Code)
}

// Supermemory is the hosted memory service client.
type Supermemory struct {
	BaseURL      string
	APIKey       string
	ContainerTag string
	Client       *http.Client
}

func NewSupermemory(baseURL, apiKey, containerTag string) *Supermemory {
	if baseURL == "" {
		baseURL = "https://api.supermemory.ai"
	}
	return &Supermemory{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		ContainerTag: containerTag,
		Client:       &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *Supermemory) Name() string { return "supermemory" }

func (s *Supermemory) Save(ctx context.Context, content string, tags []string) (string, error) {
	containerTags := tags
	if s.ContainerTag != "" {
		containerTags = append([]string{s.ContainerTag}, tags...)
	}
	body := map[string]any{
		"content":       content,
		"containerTags": containerTags,
	}
	var decoded struct {
		ID string `json:"id"`
	}
	if err := s.post(ctx, "/v3/memories", body, &decoded); err != nil {
		return "", err
	}
	return decoded.ID, nil
}

func (s *Supermemory) Search(ctx context.Context, query string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 5
	}
	body := map[string]any{
		"q":     query,
		"limit": limit,
	}
	var decoded struct {
		Results []struct {
			Memory string  `json:"memory"`
			Score  float64 `json:"score"`
		} `json:"results"`
	}
	if err := s.post(ctx, "/v3/search", body, &decoded); err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		out = append(out, Item{Content: r.Memory, Score: r.Score})
	}
	return out, nil
}

func (s *Supermemory) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == 429 {
		return fmt.Errorf("%w: status 429", ErrRateLimit)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return err
		}
	}
	return nil
}
