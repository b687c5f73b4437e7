package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/logging"
	"ArxivDigest/internal/ports"
	"ArxivDigest/internal/report"
)

// PipelineDeps wires all driven adapters into the day orchestrator.
type PipelineDeps struct {
	Source      ports.ListingSource
	Partitioner *report.Partitioner
	Store       ports.ReportStore
	Notifier    ports.Notifier
	Logger      *slog.Logger
}

// Pipeline runs one category-day from fetch to persisted report.
type Pipeline struct {
	source      ports.ListingSource
	partitioner *report.Partitioner
	store       ports.ReportStore
	notifier    ports.Notifier
	logger      *slog.Logger
	locks       *pathLocks
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:      deps.Source,
		partitioner: deps.Partitioner,
		store:       deps.Store,
		notifier:    deps.Notifier,
		logger:      deps.Logger,
		locks:       newPathLocks(),
	}
}

// ProcessDay fetches the day's listings, reconciles them with the library, and replaces
// the day's report. single marks an invocation that targeted this one day, which makes
// an empty day visible in the logs.
//
// Fetch failures and empty days end without touching the report. Errors are returned
// only when the report could not be written.
func (p *Pipeline) ProcessDay(ctx context.Context, day domain.Day, single bool) (domain.DayResult, error) {
	result := domain.DayResult{Day: day, Outcome: domain.OutcomeEmpty, Path: p.store.Path(day)}
	log := p.dayLogger(day)

	records, err := p.source.FetchDay(ctx, day.Category, day.Date)
	if err != nil {
		log.Warn("fetch unavailable, treating day as empty", "error", err)
		return result, nil
	}
	if len(records) == 0 {
		if single {
			log.Info("no records listed, nothing written")
		} else {
			log.Debug("no records listed, nothing written")
		}
		return result, nil
	}
	log.Debug("fetched", "records", len(records))

	unlock := p.locks.lock(result.Path)
	defer unlock()

	// The prior report must be read before it is replaced below.
	prior := p.loadPrior(ctx, day, log)
	if prior != nil {
		log.Debug("match ready", "prior_ids", len(prior.IDs))
	} else {
		log.Debug("match ready", "prior_ids", "none")
	}

	part := p.partitioner.Split(ctx, records)
	log.Debug("partitioned", "collected", len(part.Collected), "not_collected", len(part.NotCollected))
	if part.Len() == 0 {
		log.Warn("no usable record ids, nothing written", "fetched", len(records))
		return result, nil
	}

	fresh := report.Novelty(prior, part)
	log.Debug("novelty computed", "new", len(fresh))

	content := report.Compose(report.DayMeta{
		Category: day.Category.Name,
		Date:     day.DateString(),
		Total:    part.Len(),
	}, part, fresh)

	if err := p.store.Save(ctx, day, []byte(content)); err != nil {
		return result, fmt.Errorf("persist %s: %w", day, err)
	}

	result.Outcome = domain.OutcomePersisted
	result.Total = part.Len()
	result.Collected = len(part.Collected)
	result.NotCollected = len(part.NotCollected)
	result.New = fresh
	log.Info("report written",
		"path", result.Path,
		"total", result.Total,
		"collected", result.Collected,
		"not_collected", result.NotCollected,
		"new", len(fresh),
	)

	p.notify(ctx, day, fresh, log)
	return result, nil
}

// loadPrior returns nil when no report exists. An unreadable report still counts as a
// prior run and yields an empty state.
func (p *Pipeline) loadPrior(ctx context.Context, day domain.Day, log *slog.Logger) *report.PriorState {
	content, found, err := p.store.Load(ctx, day)
	if err != nil {
		log.Warn("prior report unreadable, comparing against empty state", "error", err)
		return report.NewPriorState(nil)
	}
	if !found {
		return nil
	}
	return report.ParsePrior(content)
}

func (p *Pipeline) notify(ctx context.Context, day domain.Day, fresh []string, log *slog.Logger) {
	if p.notifier == nil || len(fresh) == 0 {
		return
	}
	if err := p.notifier.PublishDigest(ctx, DigestMessage(day, fresh)); err != nil {
		log.Warn("notification failed", "error", err)
	}
}

// DigestMessage is the notification text for newly listed records.
func DigestMessage(day domain.Day, fresh []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d new in %s on %s\n", len(fresh), day.Category.Name, day.DateString())
	for _, id := range fresh {
		b.WriteString(id)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p *Pipeline) dayLogger(day domain.Day) *slog.Logger {
	logger := p.logger
	if logger == nil {
		logger = logging.Discard()
	}
	return logger.With("category", day.Category.Name, "day", day.DateString())
}

// pathLocks serialises read/compose/write per report path.
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPathLocks() *pathLocks {
	return &pathLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *pathLocks) lock(path string) func() {
	l.mu.Lock()
	m, ok := l.locks[path]
	if !ok {
		m = &sync.Mutex{}
		l.locks[path] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
