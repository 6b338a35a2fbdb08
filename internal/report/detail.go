package report

import (
	"sort"

	"caixa/internal/core"
)

// DetailMonth returns the entries behind one monthly bucket, sorted by
// cash date descending with undated entries last in their original
// relative order, plus the bucket recomputed from exactly that subset.
//
// Because the bucket comes from feeding the subset through Aggregate, the
// drill-down always equals the month's slice of the full rollup; there is
// no second aggregation implementation to drift from the first.
func DetailMonth(entries []core.LedgerEntry, monthKey string) ([]core.LedgerEntry, MonthlyBucket) {
	var subset []core.LedgerEntry
	for _, e := range entries {
		if key, ok := e.BucketMonth(); ok && key == monthKey {
			subset = append(subset, e)
		}
	}

	sort.SliceStable(subset, func(i, j int) bool {
		a, b := subset[i].CashDate, subset[j].CashDate
		if a.IsZero() || b.IsZero() {
			// Undated sorts after dated; two undated keep input order.
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b.Time)
	})

	bucket, ok := Aggregate(subset)[monthKey]
	if !ok {
		// Unknown month: an empty bucket, not an error.
		bucket = NewMonthlyBucket()
	}
	return subset, bucket
}
