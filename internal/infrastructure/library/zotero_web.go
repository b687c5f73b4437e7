package library

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/ports"
)

const (
	zoteroPageSize   = 100
	zoteroAPIVersion = "3"
)

// indexedFields are the item fields held in the in-memory index.
var indexedFields = []string{"DOI", "url", "archiveID"}

// WebOptions configures a ZoteroWeb client.
type WebOptions struct {
	Endpoint    string
	LibraryType string
	LibraryID   string
	APIKey      string
	// RateLimit is the request budget per second while paging the library.
	RateLimit float64
	Client    *http.Client
	Logger    *slog.Logger
}

// ZoteroWeb reads a library through the Zotero Web API (or the desktop local API).
// The whole library is loaded on first use and then served from memory, so a daily
// run makes one paged sweep instead of a request per record.
type ZoteroWeb struct {
	opts    WebOptions
	client  *http.Client
	limiter *rate.Limiter

	once    sync.Once
	loadErr error
	index   map[string]map[string][]domain.LibraryEntry
}

var _ ports.LibraryClient = (*ZoteroWeb)(nil)

type zoteroItem struct {
	Key  string `json:"key"`
	Data struct {
		Key       string `json:"key"`
		ItemType  string `json:"itemType"`
		Title     string `json:"title"`
		DOI       string `json:"DOI"`
		URL       string `json:"url"`
		ArchiveID string `json:"archiveID"`
	} `json:"data"`
}

// NewZoteroWeb constructs a client. No request is made until the first Lookup.
func NewZoteroWeb(opts WebOptions) (*ZoteroWeb, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("zotero endpoint is empty")
	}
	if opts.LibraryID == "" {
		return nil, fmt.Errorf("zotero library id is empty")
	}
	if opts.LibraryType == "" {
		opts.LibraryType = "users"
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	return &ZoteroWeb{
		opts:    opts,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// Lookup answers from the in-memory index, loading it first if needed.
func (z *ZoteroWeb) Lookup(ctx context.Context, field, value string) domain.LookupResult {
	z.once.Do(func() {
		z.loadErr = z.load(ctx)
	})
	if z.loadErr != nil {
		return domain.Unavailable(z.loadErr)
	}

	byValue, ok := z.index[strings.ToLower(field)]
	if !ok {
		return domain.Found(nil)
	}
	return domain.Found(byValue[normalize(value)])
}

func (z *ZoteroWeb) load(ctx context.Context) error {
	index := make(map[string]map[string][]domain.LibraryEntry, len(indexedFields))
	for _, f := range indexedFields {
		index[strings.ToLower(f)] = make(map[string][]domain.LibraryEntry)
	}

	total := 0
	for start := 0; ; start += zoteroPageSize {
		items, err := z.fetchPage(ctx, start)
		if err != nil {
			return err
		}
		for _, item := range items {
			entry := domain.LibraryEntry{
				Key:      item.Key,
				Title:    item.Data.Title,
				ItemType: item.Data.ItemType,
				DOI:      item.Data.DOI,
			}
			if entry.Key == "" {
				entry.Key = item.Data.Key
			}
			add(index, "DOI", item.Data.DOI, entry)
			add(index, "url", item.Data.URL, entry)
			add(index, "archiveID", item.Data.ArchiveID, entry)
		}
		total += len(items)
		if len(items) < zoteroPageSize {
			break
		}
	}

	z.index = index
	if z.opts.Logger != nil {
		z.opts.Logger.Info("zotero library loaded", "items", total)
	}
	return nil
}

func (z *ZoteroWeb) fetchPage(ctx context.Context, start int) ([]zoteroItem, error) {
	if err := z.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/%s/items",
		strings.TrimRight(z.opts.Endpoint, "/"),
		url.PathEscape(z.opts.LibraryType),
		url.PathEscape(z.opts.LibraryID),
	)
	params := url.Values{}
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(zoteroPageSize))
	params.Set("start", strconv.Itoa(start))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build zotero request: %w", err)
	}
	req.Header.Set("Zotero-API-Version", zoteroAPIVersion)
	if z.opts.APIKey != "" {
		req.Header.Set("Zotero-API-Key", z.opts.APIKey)
	}

	resp, err := z.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zotero request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("zotero status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var items []zoteroItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode zotero items: %w", err)
	}
	return items, nil
}

func add(index map[string]map[string][]domain.LibraryEntry, field, value string, entry domain.LibraryEntry) {
	key := normalize(value)
	if key == "" {
		return
	}
	f := strings.ToLower(field)
	index[f][key] = append(index[f][key], entry)
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
