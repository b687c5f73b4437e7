package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/ports"
	"ArxivDigest/internal/scanner"
)

// StrategySource implements ListingSource via one registered scanner strategy.
type StrategySource struct {
	strategy scanner.Scanner
	logger   *slog.Logger
}

var _ ports.ListingSource = (*StrategySource)(nil)

// NewStrategySource resolves the configured strategy up front so a typo fails before any
// day is fetched.
func NewStrategySource(reg *scanner.Registry, strategy string, log *slog.Logger) (*StrategySource, error) {
	if reg == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	s, err := reg.Resolve(strategy)
	if err != nil {
		return nil, err
	}
	return &StrategySource{strategy: s, logger: log}, nil
}

// FetchDay lists the category for one day.
func (s *StrategySource) FetchDay(ctx context.Context, category domain.Category, day time.Time) ([]domain.Record, error) {
	s.debug("fetch day", "strategy", s.strategy.Name(), "category", category.Name, "day", day.Format("2006-01-02"))

	records, err := s.strategy.Scan(ctx, scanner.Request{Day: day, Category: category})
	if err != nil {
		return nil, fmt.Errorf("scan %s with %s: %w", category.Name, s.strategy.Name(), err)
	}
	if records == nil {
		records = []domain.Record{}
	}

	s.debug("strategy produced records", "category", category.Name, "count", len(records))
	return records, nil
}

// NewRegistry registers every built-in strategy with shared options.
func NewRegistry(opts Options) *scanner.Registry {
	reg := scanner.NewRegistry()
	reg.Register(NewCatchupScanner(opts))
	reg.Register(NewAdvancedSearchScanner(opts))
	reg.Register(NewAPIFeedScanner(opts))
	return reg
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
