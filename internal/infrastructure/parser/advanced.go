package parser

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ArxivDigest/internal/arxivid"
	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/scanner"
)

// AdvancedSearchScanner queries the advanced search form for submissions of one day.
type AdvancedSearchScanner struct {
	fetcher
	baseURL string
}

var _ scanner.Scanner = (*AdvancedSearchScanner)(nil)

// NewAdvancedSearchScanner wires the shared fetch options.
func NewAdvancedSearchScanner(opts Options) *AdvancedSearchScanner {
	base := opts.BaseURL
	if base == "" {
		base = arxivBaseURL
	}
	return &AdvancedSearchScanner{fetcher: newFetcher(opts), baseURL: strings.TrimSuffix(base, "/")}
}

// Name identifies the strategy inside the registry.
func (a *AdvancedSearchScanner) Name() string {
	return "advance"
}

// Scan pages through the search results submitted within [day, day+1).
func (a *AdvancedSearchScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Record, error) {
	out := newCollector()

	for page := 0; page < maxPages; page++ {
		pageURL, err := advancedSearchURL(a.baseURL, req, page*a.pageSize, a.pageSize)
		if err != nil {
			return nil, err
		}

		doc, err := a.fetchDocument(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", req.Category.Name, err)
		}
		if doc == nil {
			break
		}

		results := doc.Find("li.arxiv-result")
		results.Each(func(_ int, res *goquery.Selection) {
			if rec, ok := parseSearchResult(res); ok {
				out.add(rec)
			}
		})

		if results.Length() < a.pageSize {
			break
		}
	}

	a.debug("advanced search parsed", "category", req.Category.Name, "records", len(out.records))
	return out.records, nil
}

func advancedSearchURL(base string, req scanner.Request, start, size int) (string, error) {
	parsed, err := url.Parse(base + "/search/advanced")
	if err != nil {
		return "", fmt.Errorf("invalid search url: %w", err)
	}

	group := req.Category.Group
	if group == "" {
		group = "physics"
	}

	q := url.Values{}
	q.Set("advanced", "")
	q.Set("terms-0-term", "")
	q.Set("terms-0-operator", "AND")
	q.Set("terms-0-field", "title")
	q.Set("classification-"+group, "y")
	if group == "physics" {
		q.Set("classification-physics_archives", req.Category.SearchArchive)
	}
	q.Set("classification-include_cross_list", "include")
	q.Set("date-filter_by", "date_range")
	q.Set("date-year", "")
	q.Set("date-from_date", req.Day.Format("2006-01-02"))
	q.Set("date-to_date", req.Day.AddDate(0, 0, 1).Format("2006-01-02"))
	q.Set("date-date_type", "submitted_date")
	q.Set("abstracts", "show")
	q.Set("size", strconv.Itoa(size))
	q.Set("order", "submitted_date")
	if start > 0 {
		q.Set("start", strconv.Itoa(start))
	}
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

func parseSearchResult(res *goquery.Selection) (domain.Record, bool) {
	link := res.Find(".list-title a").First()
	id := arxivid.Canonical(link.Text())
	if id == "" {
		if href, ok := link.Attr("href"); ok {
			id = arxivid.Canonical(href)
		}
	}
	if id == "" {
		return domain.Record{}, false
	}

	full := res.Find(".abstract-full").First().Clone()
	full.Find("a").Remove()
	abstract := cleanText(full.Text())
	if abstract == "" {
		abstract = trimLabel(res.Find(".abstract").First().Text(), "Abstract:")
	}

	rec := domain.Record{
		ID:       id,
		Title:    cleanText(res.Find("p.title").First().Text()),
		Authors:  authorsFrom(res.Find(".authors a")),
		Abstract: abstract,
	}

	res.Find(".tag").EachWithBreak(func(_ int, tag *goquery.Selection) bool {
		if tag.Find(".fa-external-link").Length() == 0 {
			return true
		}
		href, _ := tag.Find("a[href]").First().Attr("href")
		if href == "" {
			href, _ = tag.Closest("a[href]").Attr("href")
		}
		rec.External = externalFromLink(tag.Text(), href)
		return rec.External == nil
	})

	return rec, true
}
