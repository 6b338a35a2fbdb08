package report

import (
	"math"
	"testing"

	"caixa/internal/core"
)

func TestRankCounterparties(t *testing.T) {
	entries := []core.LedgerEntry{
		entry(func(e *core.LedgerEntry) { e.Counterparty = "José"; e.Amount = core.Money{Cents: 50000} }),
		entry(func(e *core.LedgerEntry) { e.Counterparty = " jose "; e.Amount = core.Money{Cents: 25000} }),
		entry(func(e *core.LedgerEntry) {
			e.Counterparty = "Bruno"
			e.Status = core.Pending
			e.CashDate = core.Date{}
			e.Amount = core.Money{Cents: 20000}
		}),
		entry(func(e *core.LedgerEntry) { e.Counterparty = "Carla"; e.Status = core.Cancelled }),
		entry(func(e *core.LedgerEntry) { e.Kind = core.Expense; e.Counterparty = "Supplier" }),
	}

	ranking, grand := RankCounterparties(entries)
	if grand.Cents != 95000 {
		t.Fatalf("grand total = %d, want 95000", grand.Cents)
	}
	if len(ranking) != 2 {
		t.Fatalf("got %d rank entries, want 2: %+v", len(ranking), ranking)
	}
	if ranking[0].Counterparty != "José" || ranking[0].Total.Cents != 75000 || ranking[0].EntryCount != 2 {
		t.Errorf("accent-insensitive grouping failed: %+v", ranking[0])
	}
	if ranking[1].Counterparty != "Bruno" || ranking[1].Total.Cents != 20000 {
		t.Errorf("pending income should rank: %+v", ranking[1])
	}

	var percentSum float64
	for _, r := range ranking {
		percentSum += r.Percent
	}
	if math.Abs(percentSum-100.0) > 0.1 {
		t.Errorf("percent sum = %.1f, want 100.0 ±0.1", percentSum)
	}
}

func TestRankCounterpartiesTies(t *testing.T) {
	entries := []core.LedgerEntry{
		entry(func(e *core.LedgerEntry) { e.Counterparty = "Zara" }),
		entry(func(e *core.LedgerEntry) { e.Counterparty = "Alba" }),
	}
	ranking, _ := RankCounterparties(entries)
	if ranking[0].Counterparty != "Alba" || ranking[1].Counterparty != "Zara" {
		t.Fatalf("equal totals must order by name: %+v", ranking)
	}
}

func TestRankCounterpartiesZeroGrandTotal(t *testing.T) {
	entries := []core.LedgerEntry{
		entry(func(e *core.LedgerEntry) { e.Kind = core.Expense }),
	}
	ranking, grand := RankCounterparties(entries)
	if grand.Cents != 0 || len(ranking) != 0 {
		t.Fatalf("expected empty ranking, got grand=%d ranking=%+v", grand.Cents, ranking)
	}

	// Zero-amount income still ranks, with zero percentages.
	zero := []core.LedgerEntry{
		entry(func(e *core.LedgerEntry) { e.Amount = core.Money{} }),
	}
	ranking, grand = RankCounterparties(zero)
	if grand.Cents != 0 {
		t.Fatalf("grand = %d, want 0", grand.Cents)
	}
	for _, r := range ranking {
		if r.Percent != 0 {
			t.Fatalf("percent = %v with zero grand total", r.Percent)
		}
	}
}
