// Package llm provides Summarizer implementations for hosted and self-hosted models.
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ArxivDigest/internal/domain"
)

var (
	// ErrEmptyResponse is returned when a provider answers without usable text.
	ErrEmptyResponse = errors.New("empty model response")
	// ErrMisconfigured is returned when a provider lacks its key, endpoint or model.
	ErrMisconfigured = errors.New("summarizer misconfigured")
)

const (
	defaultLanguage = "Chinese"
	defaultFocus    = "electronic structure theory, quantum chemistry, condensed matter physics, or quantum information"
)

// Prompt holds the knobs shared by every provider.
type Prompt struct {
	Language string
	Focus    string
}

// Build renders the single request asking for both the summary and the translated title.
func (p Prompt) Build(title, abstract string) string {
	language := strings.TrimSpace(p.Language)
	if language == "" {
		language = defaultLanguage
	}
	focus := strings.TrimSpace(p.Focus)
	if focus == "" {
		focus = defaultFocus
	}

	var b strings.Builder
	b.WriteString("Summarize this arXiv paper in 2-3 concise sentences, covering:\n")
	b.WriteString("1. The central scientific problem and the main contribution of the work.\n")
	b.WriteString("2. The core theoretical framework, computational method, or experimental approach used.\n")
	fmt.Fprintf(&b, "3. The relevance or potential impact for %s.\n\n", focus)
	fmt.Fprintf(&b, "Also translate the title into accurate, domain-appropriate %s.\n\n", language)
	fmt.Fprintf(&b, "Title: %s\n\nAbstract: %s\n\n", strings.TrimSpace(title), strings.TrimSpace(abstract))
	fmt.Fprintf(&b, "Write both fields in %s. Reply with a single JSON object and nothing else:\n", language)
	b.WriteString(`{"summary": "<summary>", "title": "<translated title>"}`)
	return b.String()
}

type enrichmentPayload struct {
	Summary string `json:"summary"`
	Title   string `json:"title"`
}

// parseEnrichment extracts the JSON object from a model reply. Models often wrap JSON
// in code fences or prose, so the outermost braces are located first. A reply that is
// not JSON at all is taken as a bare summary.
func parseEnrichment(provider, text string) (domain.Enrichment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Enrichment{}, ErrEmptyResponse
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		var payload enrichmentPayload
		if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err == nil {
			out := domain.Enrichment{
				Provider:        provider,
				Summary:         strings.TrimSpace(payload.Summary),
				TranslatedTitle: strings.TrimSpace(payload.Title),
			}
			if out.Empty() {
				return domain.Enrichment{}, ErrEmptyResponse
			}
			return out, nil
		}
	}

	return domain.Enrichment{Provider: provider, Summary: text}, nil
}
