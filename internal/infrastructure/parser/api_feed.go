package parser

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"

	"ArxivDigest/internal/arxivid"
	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/scanner"
)

const arxivAPIURL = "http://export.arxiv.org/api/query"

// APIFeedScanner reads submissions of one day from the arXiv Atom API.
type APIFeedScanner struct {
	fetcher
	endpoint string
	parser   *gofeed.Parser
}

var _ scanner.Scanner = (*APIFeedScanner)(nil)

// NewAPIFeedScanner wires the shared fetch options.
func NewAPIFeedScanner(opts Options) *APIFeedScanner {
	endpoint := opts.BaseURL
	if endpoint == "" {
		endpoint = arxivAPIURL
	}
	return &APIFeedScanner{fetcher: newFetcher(opts), endpoint: endpoint, parser: gofeed.NewParser()}
}

// Name identifies the strategy inside the registry.
func (a *APIFeedScanner) Name() string {
	return "api"
}

// Scan pages through the Atom feed for the day's submission window.
func (a *APIFeedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Record, error) {
	out := newCollector()

	for page := 0; page < maxPages; page++ {
		feedURL, err := apiQueryURL(a.endpoint, req, page*a.pageSize, a.pageSize)
		if err != nil {
			return nil, err
		}

		body, err := a.get(ctx, feedURL)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", req.Category.Name, err)
		}
		if body == nil {
			break
		}

		feed, err := a.parser.Parse(body)
		body.Close()
		if err != nil {
			return nil, fmt.Errorf("category %s: parse feed: %w", req.Category.Name, err)
		}

		for _, item := range feed.Items {
			if rec, ok := recordFromItem(item); ok {
				out.add(rec)
			}
		}

		if len(feed.Items) < a.pageSize {
			break
		}
	}

	a.debug("api feed parsed", "category", req.Category.Name, "records", len(out.records))
	return out.records, nil
}

func apiQueryURL(endpoint string, req scanner.Request, start, size int) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid api url: %w", err)
	}

	from := req.Day.Format("20060102") + "0000"
	to := req.Day.Format("20060102") + "2359"

	q := url.Values{}
	q.Set("search_query", fmt.Sprintf("cat:%s AND submittedDate:[%s TO %s]", req.Category.Archive, from, to))
	q.Set("start", strconv.Itoa(start))
	q.Set("max_results", strconv.Itoa(size))
	q.Set("sortBy", "submittedDate")
	q.Set("sortOrder", "ascending")
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

func recordFromItem(item *gofeed.Item) (domain.Record, bool) {
	id := arxivid.Canonical(item.GUID)
	if id == "" {
		id = arxivid.Canonical(item.Link)
	}
	if id == "" {
		return domain.Record{}, false
	}

	authors := make([]string, 0, len(item.Authors))
	for _, person := range item.Authors {
		if person != nil && strings.TrimSpace(person.Name) != "" {
			authors = append(authors, cleanText(person.Name))
		}
	}

	rec := domain.Record{
		ID:       id,
		Title:    cleanText(item.Title),
		Authors:  authors,
		Abstract: cleanText(item.Description),
	}

	if dois := item.Extensions["arxiv"]["doi"]; len(dois) > 0 {
		doi := arxivid.CleanDOI(dois[0].Value)
		if doi != "" {
			rec.External = &domain.ExternalRef{Label: doi, Locator: "https://doi.org/" + doi}
		}
	}

	return rec, true
}
