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

const anthropicVersion = "2023-06-01"

// Anthropic implements ports.Summarizer over the Messages API.
type Anthropic struct {
	name       string
	endpoint   string
	model      string
	apiKey     string
	maxTokens  int
	prompt     Prompt
	httpClient *http.Client
}

var _ ports.Summarizer = (*Anthropic)(nil)

// NewAnthropic builds a client labelled with name ("anthropic" or "claude").
func NewAnthropic(name string, cfg config.ProviderConfig, prompt Prompt, httpClient *http.Client) *Anthropic {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 600
	}
	return &Anthropic{
		name:       name,
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		maxTokens:  maxTokens,
		prompt:     prompt,
		httpClient: httpClient,
	}
}

func (c *Anthropic) Name() string { return c.name }

// Summarize posts a single user turn and concatenates the text blocks of the reply.
func (c *Anthropic) Summarize(ctx context.Context, title, abstract string) (domain.Enrichment, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return domain.Enrichment{}, fmt.Errorf("anthropic: %w", ErrMisconfigured)
	}

	body, err := json.Marshal(map[string]any{
		"model":      c.model,
		"max_tokens": c.maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": c.prompt.Build(title, abstract)},
		},
	})
	if err != nil {
		return domain.Enrichment{}, fmt.Errorf("marshal anthropic payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Enrichment{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Enrichment{}, fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Enrichment{}, fmt.Errorf("anthropic error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var out struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Enrichment{}, fmt.Errorf("decode anthropic response: %w", err)
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return parseEnrichment(c.name, text.String())
}
