package report

import (
	"fmt"
	"sort"
	"strings"
)

// DayMeta is the header information of a report.
type DayMeta struct {
	Category string
	Date     string
	// Total is the number of records fetched for the day.
	Total int
}

// Tag is the task tag the report's dataview query selects on.
func (m DayMeta) Tag() string {
	return m.Category + "-" + m.Date
}

// Compose assembles the report: header, dataview preamble, collected and not collected
// blocks in ascending id order, and an update section when fresh is non-empty.
func Compose(meta DayMeta, part Partition, fresh []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s preprint digest\n\n", meta.Date)
	fmt.Fprintf(&b, "There are a total of %d articles today.\n\n", meta.Total)

	b.WriteString("\n---\ntags:\n")
	fmt.Fprintf(&b, "  - #%s\n", meta.Tag())
	b.WriteString("---\n\n\n")
	b.WriteString("```dataview\nTASK\n")
	fmt.Fprintf(&b, "from #%s\n\n", meta.Tag())
	b.WriteString("WHERE completed\n\n```\n\n")

	b.WriteString("## collected\n\n")
	writeBlocks(&b, part.Collected)

	b.WriteString("## not collected\n\n")
	writeBlocks(&b, part.NotCollected)

	if len(fresh) > 0 {
		ids := append([]string(nil), fresh...)
		sort.Strings(ids)
		b.WriteString("## update\n\n")
		for _, id := range ids {
			fmt.Fprintf(&b, "- [ ] [[#%s]]\n", id)
		}
	}

	return b.String()
}

func writeBlocks(b *strings.Builder, blocks map[string]RenderedBlock) {
	ids := make([]string, 0, len(blocks))
	for id := range blocks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		b.WriteString(blocks[id].Markdown)
	}
}
