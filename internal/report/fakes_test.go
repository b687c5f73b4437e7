package report

import (
	"context"
	"errors"
	"sync"

	"ArxivDigest/internal/domain"
)

type fakeLibrary struct {
	mu          sync.Mutex
	entries     map[string][]domain.LibraryEntry
	unavailable bool
	calls       []string
}

func (f *fakeLibrary) Lookup(_ context.Context, field, value string) domain.LookupResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, field+"="+value)
	if f.unavailable {
		return domain.Unavailable(errors.New("library offline"))
	}
	return domain.Found(f.entries[value])
}

type fakeSummarizer struct {
	err   error
	out   domain.Enrichment
	calls int
}

func (f *fakeSummarizer) Name() string { return "fake" }

func (f *fakeSummarizer) Summarize(_ context.Context, title, _ string) (domain.Enrichment, error) {
	f.calls++
	if f.err != nil {
		return domain.Enrichment{}, f.err
	}
	return f.out, nil
}

func record(id string) domain.Record {
	return domain.Record{
		ID:       id,
		Title:    "Title of " + id,
		Authors:  []string{"Ada Lovelace", "Alan Turing"},
		Abstract: "Abstract of " + id,
	}
}
