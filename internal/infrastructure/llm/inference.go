package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"ArxivDigest/internal/config"
	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/ports"
)

// Inference talks to a self-hosted summarization service exposing POST /summarize.
type Inference struct {
	endpoint string
	apiKey   string
	language string
	http     *http.Client
}

var _ ports.Summarizer = (*Inference)(nil)

// NewInference creates a reusable HTTP client.
func NewInference(cfg config.InferenceConfig, prompt Prompt, httpClient *http.Client) *Inference {
	return &Inference{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		language: prompt.Language,
		http:     httpClient,
	}
}

func (c *Inference) Name() string { return "inference" }

// Summarize sends title and abstract and expects {"summary","title"} back.
func (c *Inference) Summarize(ctx context.Context, title, abstract string) (domain.Enrichment, error) {
	if c.endpoint == "" {
		return domain.Enrichment{}, fmt.Errorf("inference: %w", ErrMisconfigured)
	}

	payload := map[string]any{
		"title":    title,
		"abstract": abstract,
		"language": c.language,
	}

	var resp enrichmentPayload
	if err := c.post(ctx, "/summarize", payload, &resp); err != nil {
		return domain.Enrichment{}, err
	}

	out := domain.Enrichment{
		Provider:        c.Name(),
		Summary:         strings.TrimSpace(resp.Summary),
		TranslatedTitle: strings.TrimSpace(resp.Title),
	}
	if out.Empty() {
		return domain.Enrichment{}, ErrEmptyResponse
	}
	return out, nil
}

func (c *Inference) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
