package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"ArxivDigest/internal/arxivid"
	"ArxivDigest/internal/domain"
)

const (
	arxivBaseURL     = "https://arxiv.org"
	defaultUserAgent = "ArxivDigest/1.0"
	defaultPageSize  = 200
	// maxPages caps pagination for a single day.
	maxPages = 25
)

// Options configures the HTTP side shared by all strategies.
type Options struct {
	Client    *http.Client
	Limiter   *rate.Limiter
	UserAgent string
	PageSize  int
	// BaseURL replaces the strategy's public endpoint (tests, mirrors).
	BaseURL string
	Logger  *slog.Logger
}

// fetcher performs paced GET requests on behalf of a strategy.
type fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	pageSize  int
	logger    *slog.Logger
}

func newFetcher(opts Options) fetcher {
	f := fetcher{
		client:    opts.Client,
		limiter:   opts.Limiter,
		userAgent: opts.UserAgent,
		pageSize:  opts.PageSize,
		logger:    opts.Logger,
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: 30 * time.Second}
	}
	if f.userAgent == "" {
		f.userAgent = defaultUserAgent
	}
	if f.pageSize <= 0 {
		f.pageSize = defaultPageSize
	}
	return f
}

func (f fetcher) get(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	f.debug("fetch page", "url", pageURL)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	return resp.Body, nil
}

// fetchDocument returns nil for a missing page, which strategies treat as an empty day.
func (f fetcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := f.get(ctx, pageURL)
	if err != nil || body == nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func (f fetcher) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

// collector de-duplicates records by canonical id while keeping encounter order.
type collector struct {
	records []domain.Record
	seen    map[string]struct{}
}

func newCollector() *collector {
	return &collector{records: make([]domain.Record, 0), seen: map[string]struct{}{}}
}

func (c *collector) add(rec domain.Record) bool {
	if rec.ID == "" {
		return false
	}
	if _, ok := c.seen[rec.ID]; ok {
		return false
	}
	c.seen[rec.ID] = struct{}{}
	c.records = append(c.records, rec)
	return true
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func trimLabel(s, label string) string {
	s = cleanText(s)
	s = strings.TrimPrefix(s, label)
	return strings.TrimSpace(s)
}

func authorsFrom(sel *goquery.Selection) []string {
	authors := make([]string, 0, sel.Length())
	sel.Each(func(_ int, a *goquery.Selection) {
		if name := cleanText(a.Text()); name != "" {
			authors = append(authors, name)
		}
	})
	return authors
}

// externalFromLink builds an external reference from a DOI resolver link.
func externalFromLink(label, href string) *domain.ExternalRef {
	label = cleanText(label)
	doi := arxivid.CleanDOI(label)
	if doi == "" {
		doi = arxivid.CleanDOI(href)
	}
	if doi == "" && href == "" {
		return nil
	}
	if doi != "" {
		label = doi
	}
	return &domain.ExternalRef{Label: label, Locator: href}
}
