package report

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"ArxivDigest/internal/arxivid"
	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/ports"
)

// AuthorSeparator joins the author list of a block.
const AuthorSeparator = ", "

// quoteEscaper neutralises characters that Obsidian-flavoured markdown would interpret
// inside a callout: comments, wiki links, tags and highlights.
var quoteEscaper = strings.NewReplacer(
	"\r\n", "\n> ",
	"\n", "\n> ",
	"%", `\%`,
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"==", `\=\=`,
)

// RenderedBlock is the self-contained markdown of one record.
type RenderedBlock struct {
	ID       string
	Markdown string
}

// Renderer formats records, optionally enriched by a summarizer.
type Renderer struct {
	summarizer ports.Summarizer
	timeout    time.Duration
	logger     *slog.Logger
}

// NewRenderer builds a renderer. A nil summarizer disables enrichment.
func NewRenderer(summarizer ports.Summarizer, timeout time.Duration, logger *slog.Logger) *Renderer {
	return &Renderer{summarizer: summarizer, timeout: timeout, logger: logger}
}

// Render produces the block for one record. Enrichment failures are logged and the
// block falls back to its plain form.
func (r *Renderer) Render(ctx context.Context, record domain.Record) RenderedBlock {
	return RenderedBlock{ID: record.ID, Markdown: FormatBlock(record, r.enrich(ctx, record))}
}

func (r *Renderer) enrich(ctx context.Context, record domain.Record) *domain.Enrichment {
	if r.summarizer == nil {
		return nil
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	enrichment, err := r.summarizer.Summarize(ctx, record.Title, record.Abstract)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("enrichment failed", "id", record.ID, "provider", r.summarizer.Name(), "error", err)
		}
		return nil
	}
	if enrichment.Empty() {
		return nil
	}
	if enrichment.Provider == "" {
		enrichment.Provider = r.summarizer.Name()
	}
	return &enrichment
}

// FormatBlock renders a record. With a nil enrichment the output only depends on the record.
func FormatBlock(record domain.Record, enrichment *domain.Enrichment) string {
	var b strings.Builder

	b.WriteString("\n### " + record.ID + "\n\n")
	b.WriteString("Links:\n\n")
	b.WriteString("- [ ] [" + record.ID + "](" + arxivid.AbsURL(record.ID) + ")\n\n")
	b.WriteString("Title:  " + oneLine(record.Title) + "\n\n")
	if enrichment != nil && enrichment.TranslatedTitle != "" {
		b.WriteString("Translated title:  " + oneLine(enrichment.TranslatedTitle) + "\n\n")
	}
	b.WriteString("Authors:  " + strings.Join(record.Authors, AuthorSeparator) + "\n\n")
	if enrichment != nil {
		b.WriteString("> [!quote]- AI Summary (" + enrichment.Provider + "):\n")
		b.WriteString("> " + quoteEscaper.Replace(strings.TrimSpace(enrichment.Summary)) + "\n\n")
	}
	b.WriteString("> [!quote]- Abstract\n")
	b.WriteString("> " + quoteEscaper.Replace(strings.TrimSpace(record.Abstract)) + "\n\n")

	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
