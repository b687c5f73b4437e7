package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"ArxivDigest/internal/config"
	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/ports"
)

// Gemini implements ports.Summarizer with the Google GenAI SDK.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int
	prompt    Prompt
}

var _ ports.Summarizer = (*Gemini)(nil)

// NewGemini creates the SDK client. cfg.Endpoint, when set, overrides the API base URL.
func NewGemini(ctx context.Context, cfg config.ProviderConfig, prompt Prompt) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w: api key is required", ErrMisconfigured)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Endpoint != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Gemini{client: client, model: model, maxTokens: cfg.MaxTokens, prompt: prompt}, nil
}

func (g *Gemini) Name() string { return "gemini" }

// Summarize asks for a JSON reply and parses it.
func (g *Gemini) Summarize(ctx context.Context, title, abstract string) (domain.Enrichment, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.2),
		ResponseMIMEType: "application/json",
	}
	if g.maxTokens > 0 {
		genCfg.MaxOutputTokens = int32(g.maxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(g.prompt.Build(title, abstract)), genCfg)
	if err != nil {
		return domain.Enrichment{}, fmt.Errorf("gemini generate: %w", err)
	}

	return parseEnrichment(g.Name(), resp.Text())
}
