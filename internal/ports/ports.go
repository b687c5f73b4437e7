package ports

import (
	"context"
	"time"

	"ArxivDigest/internal/domain"
)

// ListingSource pulls the records listed for a category on a given day.
// A day with no listings yields an empty slice, not an error.
type ListingSource interface {
	FetchDay(ctx context.Context, category domain.Category, day time.Time) ([]domain.Record, error)
}

// LibraryClient answers field/value queries against the personal reference library.
// Failures are reported through domain.LookupUnavailable, never as a panic or error.
type LibraryClient interface {
	Lookup(ctx context.Context, field, value string) domain.LookupResult
}

// Summarizer produces a summary and translated title for one record in a single call.
type Summarizer interface {
	Name() string
	Summarize(ctx context.Context, title, abstract string) (domain.Enrichment, error)
}

// ReportStore reads and replaces the persisted report of one day.
type ReportStore interface {
	Path(day domain.Day) string
	// Load returns found=false when no report exists yet.
	Load(ctx context.Context, day domain.Day) (content []byte, found bool, err error)
	// Save must replace the report atomically: readers see the old or the new file, never a partial one.
	Save(ctx context.Context, day domain.Day, content []byte) error
}

// Notifier announces newly listed records to an outbound channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when the daily job executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
