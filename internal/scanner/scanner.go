package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"ArxivDigest/internal/domain"
)

// ErrUnknownStrategy is returned when no scanner is registered under a name.
var ErrUnknownStrategy = errors.New("fetch strategy is not registered")

// Request carries all parameters required to list one category for one day.
type Request struct {
	Day      time.Time
	Category domain.Category
}

// Scanner captures a single fetch strategy (advanced search, catch-up listing, API feed).
// Every strategy returns canonical ids, de-duplicated, and an empty slice for empty days.
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.Record, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
}

// Names lists registered strategies alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
