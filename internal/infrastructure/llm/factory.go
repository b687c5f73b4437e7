package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ArxivDigest/internal/config"
	"ArxivDigest/internal/ports"
)

// ErrUnknownProvider is returned for a provider name with no implementation.
var ErrUnknownProvider = errors.New("unknown summary provider")

// Providers lists the names accepted by New.
var Providers = []string{"anthropic", "claude", "gemini", "inference", "openai"}

// New selects the summarizer named by cfg.Provider.
func New(ctx context.Context, cfg config.SummaryConfig) (ports.Summarizer, error) {
	prompt := Prompt{Language: cfg.Language, Focus: cfg.Focus}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch name := strings.ToLower(strings.TrimSpace(cfg.Provider)); name {
	case "openai":
		return NewOpenAI(cfg.OpenAI, prompt, httpClient), nil
	case "anthropic", "claude":
		return NewAnthropic(name, cfg.Anthropic, prompt, httpClient), nil
	case "gemini":
		g, err := NewGemini(ctx, cfg.Gemini, prompt)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "inference":
		return NewInference(cfg.Inference, prompt, httpClient), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
