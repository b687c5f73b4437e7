package report

import (
	"bufio"
	"bytes"
	"regexp"

	"ArxivDigest/internal/arxivid"
)

var (
	// Record anchors only; other level-three headings a reader adds are ignored.
	anchorLine = regexp.MustCompile(`^###\s+(` + regexp.QuoteMeta(arxivid.Scheme) + `\S+)\s*$`)
	// "- [x] [[#arXiv:2511.01234]]" in the update section.
	doneWikiLine = regexp.MustCompile(`^\s*-\s\[[xX]\]\s+\[\[#([^\]|]+)(?:\|[^\]]*)?\]\]`)
	// "- [x] [arXiv:2511.01234](https://arxiv.org/abs/2511.01234)" in a record block.
	doneLinkLine = regexp.MustCompile(`^\s*-\s\[[xX]\]\s+\[([^\]]+)\]\(`)
)

// PriorState lists the identifiers a previously written report refers to.
// A nil *PriorState means no report existed.
type PriorState struct {
	IDs []string
	set map[string]struct{}
}

// NewPriorState builds a prior state from identifiers in encounter order.
func NewPriorState(ids []string) *PriorState {
	p := &PriorState{IDs: make([]string, 0, len(ids)), set: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		p.add(id)
	}
	return p
}

func (p *PriorState) add(id string) {
	if id == "" {
		return
	}
	if _, ok := p.set[id]; ok {
		return
	}
	p.set[id] = struct{}{}
	p.IDs = append(p.IDs, id)
}

// Contains reports whether the prior report mentioned id.
func (p *PriorState) Contains(id string) bool {
	if p == nil {
		return false
	}
	_, ok := p.set[id]
	return ok
}

// ParsePrior harvests identifiers from a persisted report: record heading anchors and
// checklist entries a reader ticked off. Unrecognised lines are skipped, so a damaged
// file still yields whatever could be salvaged.
func ParsePrior(content []byte) *PriorState {
	state := NewPriorState(nil)

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if m := anchorLine.FindStringSubmatch(line); m != nil {
			state.add(m[1])
			continue
		}
		if m := doneWikiLine.FindStringSubmatch(line); m != nil {
			state.add(m[1])
			continue
		}
		if m := doneLinkLine.FindStringSubmatch(line); m != nil {
			state.add(m[1])
		}
	}
	// A scanner error (oversized line) ends harvesting; ids read so far are kept.
	return state
}
