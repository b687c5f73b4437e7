package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/logging"
	"ArxivDigest/internal/report"
)

type fakeSource struct {
	mu      sync.Mutex
	records map[string][]domain.Record // keyed by YYYY-MM-DD
	err     error
	calls   []string
}

func (f *fakeSource) FetchDay(_ context.Context, category domain.Category, day time.Time) ([]domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, category.Name+"/"+day.Format("2006-01-02"))
	if f.err != nil {
		return nil, f.err
	}
	return f.records[day.Format("2006-01-02")], nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	ops     []string
	loadErr error
	saveErr error
	// onLoad runs outside the lock before each Load; n counts loads from 1.
	onLoad func(n int)
	loads  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string][]byte)}
}

func (s *fakeStore) Path(day domain.Day) string {
	return day.Category.Name + "/" + day.Date.Format("2006/01/02") + ".md"
}

func (s *fakeStore) Load(_ context.Context, day domain.Day) ([]byte, bool, error) {
	s.mu.Lock()
	s.loads++
	n, hook := s.loads, s.onLoad
	s.ops = append(s.ops, "load "+s.Path(day))
	s.mu.Unlock()

	if hook != nil {
		hook(n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, false, s.loadErr
	}
	content, ok := s.files[s.Path(day)]
	return content, ok, nil
}

func (s *fakeStore) Save(_ context.Context, day domain.Day, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, "save "+s.Path(day))
	if s.saveErr != nil {
		return s.saveErr
	}
	s.files[s.Path(day)] = append([]byte(nil), content...)
	return nil
}

func (s *fakeStore) get(day domain.Day) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.files[s.Path(day)])
}

type fakeLibrary struct {
	known map[string]bool
}

func (f *fakeLibrary) Lookup(_ context.Context, _ string, value string) domain.LookupResult {
	if f.known[value] {
		return domain.Found([]domain.LibraryEntry{{Key: "K-" + value, DOI: value}})
	}
	return domain.Found(nil)
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *fakeNotifier) PublishDigest(_ context.Context, digest string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, digest)
	return n.err
}

var errFetch = errors.New("arxiv down")

func rec(id string) domain.Record {
	return domain.Record{
		ID:       id,
		Title:    "Title of " + id,
		Authors:  []string{"A. Author", "B. Author"},
		Abstract: "Abstract of " + id + ".",
	}
}

func quantPh() domain.Category {
	return domain.Category{Name: "quant-ph", Archive: "quant-ph"}
}

func dayOf(y int, m time.Month, d int) domain.Day {
	return domain.Day{Category: quantPh(), Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

type harness struct {
	source   *fakeSource
	store    *fakeStore
	notifier *fakeNotifier
	pipeline *Pipeline
}

func newHarness(library *fakeLibrary) *harness {
	return newHarnessWithLogger(library, logging.Discard())
}

func newHarnessWithLogger(library *fakeLibrary, logger *slog.Logger) *harness {
	h := &harness{
		source:   &fakeSource{records: make(map[string][]domain.Record)},
		store:    newFakeStore(),
		notifier: &fakeNotifier{},
	}
	h.pipeline = NewPipeline(PipelineDeps{
		Source:      h.source,
		Partitioner: report.NewPartitioner(report.NewMatcher(library, logger), report.NewRenderer(nil, 0, logger), logger),
		Store:       h.store,
		Notifier:    h.notifier,
		Logger:      logger,
	})
	return h
}
