package library

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"ArxivDigest/internal/domain"
)

func zoteroServer(t *testing.T, total int, calls *int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Path != "/users/42/items" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Zotero-API-Key") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, "[")
		for i := start; i < total && i < start+limit; i++ {
			if i > start {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"key":"K%03d","data":{"itemType":"preprint","title":"Item %d","DOI":"10.48550/arXiv.2511.%05d"}}`, i, i, i)
		}
		fmt.Fprint(w, "]")
	}))
}

func TestZoteroWebLoadsOnceAndIndexes(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := zoteroServer(t, 150, &calls)
	defer srv.Close()

	z, err := NewZoteroWeb(WebOptions{
		Endpoint:  srv.URL,
		LibraryID: "42",
		APIKey:    "secret",
		Client:    srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewZoteroWeb: %v", err)
	}

	ctx := context.Background()
	res := z.Lookup(ctx, "DOI", "10.48550/ARXIV.2511.00120")
	if res.Status != domain.LookupFound {
		t.Fatalf("status = %v, err %v", res.Status, res.Err)
	}
	if len(res.Entries) != 1 || res.Entries[0].Key != "K120" || res.Entries[0].Title != "Item 120" {
		t.Fatalf("unexpected entries %+v", res.Entries)
	}

	if res := z.Lookup(ctx, "DOI", "10.48550/arXiv.2511.99999"); res.Status != domain.LookupNotFound {
		t.Fatalf("expected not found, got %v", res.Status)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 page requests, got %d", got)
	}
}

func TestZoteroWebFailureIsUnavailable(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := zoteroServer(t, 3, &calls)
	defer srv.Close()

	z, err := NewZoteroWeb(WebOptions{Endpoint: srv.URL, LibraryID: "42", APIKey: "wrong", Client: srv.Client()})
	if err != nil {
		t.Fatalf("NewZoteroWeb: %v", err)
	}

	for i := 0; i < 2; i++ {
		res := z.Lookup(context.Background(), "DOI", "10.48550/arXiv.2511.00001")
		if res.Status != domain.LookupUnavailable || res.Err == nil {
			t.Fatalf("expected unavailable, got %+v", res)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single load attempt, got %d", got)
	}
}

func TestNewZoteroWebValidates(t *testing.T) {
	t.Parallel()

	if _, err := NewZoteroWeb(WebOptions{LibraryID: "1"}); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
	if _, err := NewZoteroWeb(WebOptions{Endpoint: "http://x"}); err == nil {
		t.Fatal("expected error for empty library id")
	}
}
