package report

import (
	"sort"

	"caixa/internal/core"
)

// RankEntry is one counterparty's contribution to the income grand total.
type RankEntry struct {
	Counterparty string
	EntryCount   int
	Total        core.Money
	Percent      float64 // share of grand total, one decimal
}

// RankCounterparties groups income entries by counterparty and sorts them
// by total descending, names ascending on ties.
//
// Pending entries count: the ranking answers "who owes or paid us the
// most", so only cancelled entries are left out. Group keys are
// normalized (trimmed, case-folded, diacritics stripped) while the first
// spelling seen is kept for display. Percentages are computed against the
// grand total of the same set, rounded to one decimal; a zero grand total
// yields all-zero percentages.
func RankCounterparties(entries []core.LedgerEntry) ([]RankEntry, core.Money) {
	type group struct {
		display string
		count   int
		cents   int64
	}
	groups := make(map[string]*group)
	order := make([]string, 0)

	var grand int64
	for _, e := range entries {
		if e.Kind != core.Income || e.Status == core.Cancelled {
			continue
		}
		name := e.Counterparty
		if name == "" {
			continue
		}
		key := core.NormalizeText(name)
		g, ok := groups[key]
		if !ok {
			g = &group{display: name}
			groups[key] = g
			order = append(order, key)
		}
		g.count++
		g.cents += e.Amount.Cents
		grand += e.Amount.Cents
	}

	out := make([]RankEntry, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		out = append(out, RankEntry{
			Counterparty: g.display,
			EntryCount:   g.count,
			Total:        core.Money{Cents: g.cents},
			Percent:      percentOf(g.cents, grand),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Counterparty < out[j].Counterparty
	})
	return out, core.Money{Cents: grand}
}

// percentOf computes part/whole as a percentage rounded half-up to one
// decimal, in integer arithmetic.
func percentOf(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	tenths := (part*1000 + whole/2) / whole
	return float64(tenths) / 10
}
