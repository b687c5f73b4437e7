package parser

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ArxivDigest/internal/arxivid"
	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/scanner"
)

// CatchupScanner reads the arXiv catch-up listing of one archive and day.
type CatchupScanner struct {
	fetcher
	baseURL string
}

var _ scanner.Scanner = (*CatchupScanner)(nil)

// NewCatchupScanner wires the shared fetch options.
func NewCatchupScanner(opts Options) *CatchupScanner {
	base := opts.BaseURL
	if base == "" {
		base = arxivBaseURL
	}
	return &CatchupScanner{fetcher: newFetcher(opts), baseURL: strings.TrimSuffix(base, "/")}
}

// Name identifies the strategy inside the registry.
func (c *CatchupScanner) Name() string {
	return "catchup"
}

// Scan fetches the catch-up page and returns every listed entry.
func (c *CatchupScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Record, error) {
	pageURL, err := catchupURL(c.baseURL, req.Category.Archive, req.Day.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	doc, err := c.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", req.Category.Name, err)
	}
	if doc == nil {
		return []domain.Record{}, nil
	}

	out := newCollector()
	doc.Find("dl > dt").Each(func(_ int, dt *goquery.Selection) {
		if rec, ok := parseListingEntry(dt, dt.NextFiltered("dd")); ok {
			out.add(rec)
		}
	})

	c.debug("catchup parsed", "category", req.Category.Name, "records", len(out.records))
	return out.records, nil
}

func catchupURL(base, archive, date string) (string, error) {
	parsed, err := url.Parse(base + "/catchup/" + url.PathEscape(archive) + "/" + date)
	if err != nil {
		return "", fmt.Errorf("invalid catchup url: %w", err)
	}
	query := parsed.Query()
	query.Set("abs", "True")
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// parseListingEntry reads a dt/dd pair of a list or catch-up page.
func parseListingEntry(dt, dd *goquery.Selection) (domain.Record, bool) {
	link := dt.Find("a[href*=\"/abs/\"]").First()
	id := arxivid.Canonical(link.Text())
	if id == "" {
		if href, ok := link.Attr("href"); ok {
			id = arxivid.Canonical(href)
		}
	}
	if id == "" {
		return domain.Record{}, false
	}

	abstract := dd.Find("p.mathjax").First()
	if abstract.Length() == 0 {
		abstract = dd.Find(".mathjax").Not(".list-title").Not(".list-comments").First()
	}

	rec := domain.Record{
		ID:       id,
		Title:    trimLabel(dd.Find(".list-title").First().Text(), "Title:"),
		Authors:  authorsFrom(dd.Find(".list-authors a")),
		Abstract: trimLabel(abstract.Text(), "Abstract:"),
	}

	doi := dd.Find("a[href*=\"doi.org/\"]").First()
	if doi.Length() > 0 {
		href, _ := doi.Attr("href")
		rec.External = externalFromLink(doi.Text(), href)
	}

	return rec, true
}
