package report

import (
	"math/rand"
	"reflect"
	"testing"

	"caixa/internal/core"
)

// randomEntries produces a messy but deterministic snapshot: mixed kinds,
// statuses, months, missing cash dates and unknown institutions.
func randomEntries(rng *rand.Rand, n int) []core.LedgerEntry {
	kinds := []core.Kind{core.Income, core.Expense}
	statuses := []core.Status{core.Paid, core.Pending, core.Cancelled}
	methods := core.PaymentMethods()
	insts := append(core.Institutions(), core.Institution("mystery"), "")
	owners := append(core.Ownerships(), "")

	out := make([]core.LedgerEntry, 0, n)
	for i := 0; i < n; i++ {
		e := core.LedgerEntry{
			CompetenceDate: core.NewDate(2024, rng.Intn(6)+1, rng.Intn(28)+1),
			Kind:           kinds[rng.Intn(len(kinds))],
			Category:       []string{"Services", "Products", "Rent"}[rng.Intn(3)],
			Description:    "entry",
			Counterparty:   []string{"Ana", "Bruno", "Carla"}[rng.Intn(3)],
			PaymentMethod:  methods[rng.Intn(len(methods))],
			Institution:    insts[rng.Intn(len(insts))],
			Ownership:      owners[rng.Intn(len(owners))],
			Amount:         core.Money{Cents: rng.Int63n(100000) + 1},
			Status:         statuses[rng.Intn(len(statuses))],
		}
		if e.Status == core.Paid && rng.Intn(4) > 0 {
			e.CashDate = core.NewDate(2024, rng.Intn(6)+1, rng.Intn(28)+1)
		}
		out = append(out, e)
	}
	return out
}

// Drill-down consistency: for every month present in the full rollup, the
// bucket recomputed from the month's own entries must equal the full
// rollup's bucket for that month.
func TestDetailMonthMatchesAggregate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 25; round++ {
		entries := randomEntries(rng, 200)
		full := Aggregate(entries)
		for _, key := range MonthKeys(full) {
			_, bucket := DetailMonth(entries, key)
			if !reflect.DeepEqual(bucket, full[key]) {
				t.Fatalf("round %d month %s: detail bucket diverges\ndetail: %+v\nfull:   %+v",
					round, key, bucket, full[key])
			}
		}
	}
}

func TestDetailMonthSorting(t *testing.T) {
	mk := func(day int, desc string) core.LedgerEntry {
		e := core.LedgerEntry{
			CompetenceDate: core.NewDate(2024, 3, 1),
			Kind:           core.Income,
			Description:    desc,
			Amount:         core.Money{Cents: 100},
			Status:         core.Paid,
		}
		if day > 0 {
			e.CashDate = core.NewDate(2024, 3, day)
		}
		return e
	}
	entries := []core.LedgerEntry{
		mk(0, "undated-a"),
		mk(10, "mid"),
		mk(0, "undated-b"),
		mk(25, "late"),
		mk(2, "early"),
	}

	sorted, _ := DetailMonth(entries, "2024-03")
	var got []string
	for _, e := range sorted {
		got = append(got, e.Description)
	}
	want := []string{"late", "mid", "early", "undated-a", "undated-b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sorted order = %v, want %v", got, want)
	}
}

func TestDetailMonthUnknownKey(t *testing.T) {
	entries := []core.LedgerEntry{entry()}
	sorted, bucket := DetailMonth(entries, "1999-01")
	if len(sorted) != 0 {
		t.Fatalf("expected no entries, got %d", len(sorted))
	}
	if bucket.IncomePaid.Cents != 0 || bucket.ByPaymentMethod == nil {
		t.Fatalf("expected an initialized empty bucket, got %+v", bucket)
	}
}
