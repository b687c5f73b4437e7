package report

import "sort"

// Novelty lists identifiers of the partition that the prior report did not mention,
// in ascending order. A first run (nil prior) never reports anything as new.
func Novelty(prior *PriorState, part Partition) []string {
	if prior == nil {
		return nil
	}

	var fresh []string
	for _, id := range part.IDs() {
		if !prior.Contains(id) {
			fresh = append(fresh, id)
		}
	}
	sort.Strings(fresh)
	return fresh
}
