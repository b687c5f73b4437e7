// Package report reconciles a day's listings against the reference library and
// composes the markdown digest persisted for that day.
package report

import (
	"context"
	"log/slog"

	"ArxivDigest/internal/arxivid"
	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/ports"
)

// DOIField is the library field both lookup tiers query.
const DOIField = "DOI"

// Matcher decides whether a record is already archived. It queries the registry DOI
// first and falls back to the record's external reference.
type Matcher struct {
	library ports.LibraryClient
	logger  *slog.Logger
}

// NewMatcher wires a library client; a nil client behaves as permanently unavailable.
func NewMatcher(library ports.LibraryClient, logger *slog.Logger) *Matcher {
	return &Matcher{library: library, logger: logger}
}

// Match runs the two-tier lookup for one record. Library faults degrade to "not found".
func (m *Matcher) Match(ctx context.Context, record domain.Record) domain.LibraryMatch {
	primary := arxivid.RegistryID(record.ID)
	if res := m.lookup(ctx, record.ID, primary); res.Status == domain.LookupFound {
		return domain.LibraryMatch{Matched: true, Entries: res.Entries, Key: primary}
	}

	if !record.HasExternal() {
		return domain.LibraryMatch{}
	}

	secondary := externalKey(record.External)
	if secondary == "" {
		return domain.LibraryMatch{}
	}
	if res := m.lookup(ctx, record.ID, secondary); res.Status == domain.LookupFound {
		return domain.LibraryMatch{Matched: true, Entries: res.Entries, Key: secondary}
	}

	return domain.LibraryMatch{}
}

func (m *Matcher) lookup(ctx context.Context, id, value string) domain.LookupResult {
	if m.library == nil {
		return domain.Unavailable(nil)
	}

	res := m.library.Lookup(ctx, DOIField, value)
	switch res.Status {
	case domain.LookupUnavailable:
		m.debug("library unavailable", "id", id, "value", value, "error", res.Err)
	case domain.LookupFound:
		m.debug("library match", "id", id, "value", value, "entries", len(res.Entries))
	}
	return res
}

// externalKey prefers the DOI printed as the label and falls back to the one in the link.
func externalKey(ref *domain.ExternalRef) string {
	if doi := arxivid.CleanDOI(ref.Label); doi != "" {
		return doi
	}
	if doi := arxivid.CleanDOI(ref.Locator); doi != "" {
		return doi
	}
	if ref.Label != "" {
		return ref.Label
	}
	return ref.Locator
}

func (m *Matcher) debug(msg string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}
