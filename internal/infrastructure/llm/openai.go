package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ArxivDigest/internal/config"
	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/ports"
)

// OpenAI implements ports.Summarizer over the chat completions API.
type OpenAI struct {
	endpoint   string
	model      string
	apiKey     string
	maxTokens  int
	prompt     Prompt
	httpClient *http.Client
}

var _ ports.Summarizer = (*OpenAI)(nil)

// NewOpenAI builds a client from configuration.
func NewOpenAI(cfg config.ProviderConfig, prompt Prompt, httpClient *http.Client) *OpenAI {
	return &OpenAI{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		maxTokens:  cfg.MaxTokens,
		prompt:     prompt,
		httpClient: httpClient,
	}
}

// Name labels the rendered summary.
func (c *OpenAI) Name() string { return "openai" }

// Summarize sends one user message and parses the JSON reply.
func (c *OpenAI) Summarize(ctx context.Context, title, abstract string) (domain.Enrichment, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return domain.Enrichment{}, fmt.Errorf("openai: %w", ErrMisconfigured)
	}

	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": c.prompt.Build(title, abstract)},
		},
		"temperature": 0.2,
	}
	if c.maxTokens > 0 {
		payload["max_tokens"] = c.maxTokens
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Enrichment{}, fmt.Errorf("marshal openai payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Enrichment{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Enrichment{}, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Enrichment{}, fmt.Errorf("openai error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Enrichment{}, fmt.Errorf("decode openai response: %w", err)
	}
	if len(out.Choices) == 0 {
		return domain.Enrichment{}, ErrEmptyResponse
	}

	return parseEnrichment(c.Name(), out.Choices[0].Message.Content)
}
