package issue

import "sort"

// Summary counts aggregated issues per severity and per category.
type Summary struct {
	Total      int              `json:"total"`
	BySeverity map[Severity]int `json:"bySeverity"`
	ByCategory map[Category]int `json:"byCategory"`
}

// Aggregate merges issue lists from all producers into one ordered list and
// computes the summary. Ordering: sourceIndex ascending with unlocated
// findings last, then severity (error > warning > suggestion), then category
// and message as final tie-breaks so the result is a total order and repeated
// runs produce byte-identical artifacts. Exact (sourceIndex, category,
// message) triples are deduplicated; the aggregator emits no findings of its
// own.
func Aggregate(lists ...[]Issue) ([]Issue, Summary) {
	var merged []Issue
	seen := map[dedupeKey]struct{}{}
	for _, list := range lists {
		for _, is := range list {
			k := keyOf(is)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, is)
		}
	}

	sort.SliceStable(merged, func(a, b int) bool {
		ia, ib := merged[a], merged[b]
		switch {
		case ia.SourceIndex == nil && ib.SourceIndex != nil:
			return false
		case ia.SourceIndex != nil && ib.SourceIndex == nil:
			return true
		case ia.SourceIndex != nil && ib.SourceIndex != nil && *ia.SourceIndex != *ib.SourceIndex:
			return *ia.SourceIndex < *ib.SourceIndex
		}
		if ia.Severity.rank() != ib.Severity.rank() {
			return ia.Severity.rank() < ib.Severity.rank()
		}
		if ia.Category != ib.Category {
			return ia.Category < ib.Category
		}
		return ia.Message < ib.Message
	})

	sum := Summary{
		Total:      len(merged),
		BySeverity: map[Severity]int{},
		ByCategory: map[Category]int{},
	}
	for _, is := range merged {
		sum.BySeverity[is.Severity]++
		sum.ByCategory[is.Category]++
	}
	return merged, sum
}

type dedupeKey struct {
	located bool
	index   int
	cat     Category
	msg     string
}

func keyOf(is Issue) dedupeKey {
	k := dedupeKey{cat: is.Category, msg: is.Message}
	if is.SourceIndex != nil {
		k.located = true
		k.index = *is.SourceIndex
	}
	return k
}
