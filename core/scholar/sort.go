package scholar

import (
	"fmt"
	"sort"
	"strings"
)

// SortKey selects the primary dimension for ordering relation entries.
type SortKey int

const (
	SortByCitations SortKey = iota
	SortByInfluential
	SortByYear
)

var sortKeyNames = map[SortKey]string{
	SortByCitations:   "citation",
	SortByInfluential: "influential",
	SortByYear:        "year",
}

func (k SortKey) String() string {
	if name, ok := sortKeyNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseSortKey maps a flag value onto a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "citation", "citations":
		return SortByCitations, nil
	case "influential":
		return SortByInfluential, nil
	case "year":
		return SortByYear, nil
	default:
		return 0, fmt.Errorf("unknown sort key %q (want citation, influential, or year)", s)
	}
}

// fallbackOrder is the fixed tiebreaker sequence. Whichever key is chosen
// as primary is evaluated first; the remaining two keep this order.
var fallbackOrder = [...]SortKey{SortByCitations, SortByInfluential, SortByYear}

func comparisonOrder(primary SortKey) []SortKey {
	order := make([]SortKey, 0, len(fallbackOrder))
	order = append(order, primary)
	for _, k := range fallbackOrder {
		if k != primary {
			order = append(order, k)
		}
	}
	return order
}

func sortValue(k SortKey, e RelationEntry) int {
	switch k {
	case SortByInfluential:
		if e.Influential {
			return 1
		}
		return 0
	case SortByYear:
		return e.Paper.Year
	default:
		return e.Paper.Citations
	}
}

// SortEntries orders entries in place, descending on the primary key with
// the remaining keys as tiebreakers. The sort is stable, so repeated calls
// over the same input produce identical orderings.
func SortEntries(entries []RelationEntry, primary SortKey) {
	order := comparisonOrder(primary)
	sort.SliceStable(entries, func(i, j int) bool {
		for _, k := range order {
			a, b := sortValue(k, entries[i]), sortValue(k, entries[j])
			if a != b {
				return a > b
			}
		}
		return false
	})
}

// FilterEntries returns the entries passing the query's influential flag
// and inclusive year window. An unknown year fails any bound that is set.
// The input slice is never mutated.
func FilterEntries(entries []RelationEntry, q RelationQuery) []RelationEntry {
	out := make([]RelationEntry, 0, len(entries))
	for _, e := range entries {
		if q.InfluentialOnly && !e.Influential {
			continue
		}
		if q.SinceYear > 0 && (!e.Paper.HasYear() || e.Paper.Year < q.SinceYear) {
			continue
		}
		if q.UntilYear > 0 && (!e.Paper.HasYear() || e.Paper.Year > q.UntilYear) {
			continue
		}
		out = append(out, e)
	}
	return out
}
