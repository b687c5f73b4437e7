package report

import (
	"context"
	"log/slog"
	"sort"

	"ArxivDigest/internal/domain"
)

// Partition splits a day's records into archived and not-yet-archived blocks.
// The two maps never share a key.
type Partition struct {
	Collected    map[string]RenderedBlock
	NotCollected map[string]RenderedBlock
}

// Len is the number of records in the partition.
func (p Partition) Len() int {
	return len(p.Collected) + len(p.NotCollected)
}

// IDs returns every identifier of the partition in ascending order.
func (p Partition) IDs() []string {
	ids := make([]string, 0, p.Len())
	for id := range p.Collected {
		ids = append(ids, id)
	}
	for id := range p.NotCollected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Partitioner applies the matcher and renderer to each record of a day.
type Partitioner struct {
	matcher  *Matcher
	renderer *Renderer
	logger   *slog.Logger
}

// NewPartitioner wires the matcher and renderer.
func NewPartitioner(matcher *Matcher, renderer *Renderer, logger *slog.Logger) *Partitioner {
	return &Partitioner{matcher: matcher, renderer: renderer, logger: logger}
}

// Split processes records sequentially in id order. Records repeating an id already
// seen are dropped.
func (p *Partitioner) Split(ctx context.Context, records []domain.Record) Partition {
	part := Partition{
		Collected:    make(map[string]RenderedBlock),
		NotCollected: make(map[string]RenderedBlock),
	}

	ordered := make([]domain.Record, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	for _, record := range ordered {
		if record.ID == "" {
			continue
		}
		if _, dup := part.Collected[record.ID]; dup {
			continue
		}
		if _, dup := part.NotCollected[record.ID]; dup {
			continue
		}

		match := p.matcher.Match(ctx, record)
		block := p.renderer.Render(ctx, record)
		if match.Matched {
			part.Collected[record.ID] = block
		} else {
			part.NotCollected[record.ID] = block
		}
	}

	if p.logger != nil {
		p.logger.Debug("partitioned records",
			"records", len(records),
			"collected", len(part.Collected),
			"not_collected", len(part.NotCollected))
	}
	return part
}
