package report

import (
	"reflect"
	"testing"

	"caixa/internal/core"
)

func entry(mutate ...func(*core.LedgerEntry)) core.LedgerEntry {
	e := core.LedgerEntry{
		CompetenceDate: core.NewDate(2024, 1, 5),
		CashDate:       core.NewDate(2024, 1, 8),
		Kind:           core.Income,
		Category:       "Services",
		Description:    "service",
		Counterparty:   "Ana",
		PaymentMethod:  core.Pix,
		Institution:    core.Nubank,
		Ownership:      core.Individual,
		Amount:         core.Money{Cents: 30000},
		Status:         core.Paid,
	}
	for _, m := range mutate {
		m(&e)
	}
	return e
}

func TestAggregateScenario(t *testing.T) {
	entries := []core.LedgerEntry{
		entry(), // paid income 300, Pix, Nubank/Individual
		entry(func(e *core.LedgerEntry) {
			e.Status = core.Pending
			e.CashDate = core.Date{}
			e.Amount = core.Money{Cents: 70000}
		}),
		entry(func(e *core.LedgerEntry) {
			e.Kind = core.Expense
			e.Category = "Supplies"
			e.Amount = core.Money{Cents: 20000}
		}),
	}

	buckets := Aggregate(entries)
	b, ok := buckets["2024-01"]
	if !ok {
		t.Fatalf("missing 2024-01 bucket, got keys %v", MonthKeys(buckets))
	}
	if b.IncomePaid.Cents != 30000 {
		t.Errorf("IncomePaid = %d, want 30000", b.IncomePaid.Cents)
	}
	if b.IncomePending.Cents != 70000 {
		t.Errorf("IncomePending = %d, want 70000", b.IncomePending.Cents)
	}
	if b.ExpensePaid.Cents != 20000 {
		t.Errorf("ExpensePaid = %d, want 20000", b.ExpensePaid.Cents)
	}
	if b.ResultCash.Cents != 10000 {
		t.Errorf("ResultCash = %d, want 10000", b.ResultCash.Cents)
	}
	if got := b.ByPaymentMethod[core.Pix].Cents; got != 30000 {
		t.Errorf("ByPaymentMethod[pix] = %d, want 30000", got)
	}
	key := InstitutionOwnership{Institution: core.Nubank, Ownership: core.Individual}
	if got := b.ByInstitutionOwnership[key].Cents; got != 30000 {
		t.Errorf("ByInstitutionOwnership[nubank/individual] = %d, want 30000", got)
	}
}

func TestAggregateExclusions(t *testing.T) {
	entries := []core.LedgerEntry{
		entry(func(e *core.LedgerEntry) { e.Status = core.Cancelled }),
		entry(func(e *core.LedgerEntry) { e.Institution = "" }), // no institution: counted, not broken down
		entry(func(e *core.LedgerEntry) { e.Institution = "some bank nobody knows" }),
	}
	buckets := Aggregate(entries)
	b := buckets["2024-01"]

	if b.IncomePaid.Cents != 60000 {
		t.Errorf("IncomePaid = %d, want 60000 (cancelled excluded)", b.IncomePaid.Cents)
	}
	var instSum int64
	for _, m := range b.ByInstitutionOwnership {
		instSum += m.Cents
	}
	if instSum != 0 {
		t.Errorf("institution breakdown sum = %d, want 0", instSum)
	}
	var methodSum int64
	for _, m := range b.ByPaymentMethod {
		methodSum += m.Cents
	}
	if methodSum != b.IncomePaid.Cents {
		t.Errorf("sum(ByPaymentMethod) = %d, want IncomePaid %d", methodSum, b.IncomePaid.Cents)
	}
}

func TestAggregateBucketsByGoverningDate(t *testing.T) {
	entries := []core.LedgerEntry{
		// Settled in February although attributed to January.
		entry(func(e *core.LedgerEntry) { e.CashDate = core.NewDate(2024, 2, 2) }),
		// Pending: no cash date, competence month governs.
		entry(func(e *core.LedgerEntry) {
			e.Status = core.Pending
			e.CashDate = core.Date{}
		}),
	}
	buckets := Aggregate(entries)
	if buckets["2024-02"].IncomePaid.Cents != 30000 {
		t.Errorf("paid entry should land in its cash month")
	}
	if buckets["2024-01"].IncomePending.Cents != 30000 {
		t.Errorf("pending entry should land in its competence month")
	}
}

func TestAggregateIdempotent(t *testing.T) {
	entries := []core.LedgerEntry{
		entry(),
		entry(func(e *core.LedgerEntry) { e.Kind = core.Expense }),
		entry(func(e *core.LedgerEntry) { e.Status = core.Pending; e.CashDate = core.Date{} }),
	}
	first := Aggregate(entries)
	second := Aggregate(entries)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two aggregations of the same snapshot differ:\n%v\n%v", first, second)
	}
}

func TestMonthKeysSortedDescending(t *testing.T) {
	buckets := map[string]MonthlyBucket{
		"2023-12": {}, "2024-02": {}, "2024-01": {},
	}
	got := MonthKeys(buckets)
	want := []string{"2024-02", "2024-01", "2023-12"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MonthKeys = %v, want %v", got, want)
	}
}

func TestTopCategories(t *testing.T) {
	b := NewMonthlyBucket()
	b.ByCategory["A"] = core.Money{Cents: 100}
	b.ByCategory["B"] = core.Money{Cents: 300}
	b.ByCategory["C"] = core.Money{Cents: 300}
	b.ByCategory["D"] = core.Money{Cents: 50}

	got := TopCategories(b, 3)
	if len(got) != 3 {
		t.Fatalf("got %d categories, want 3", len(got))
	}
	if got[0].Name != "B" || got[1].Name != "C" || got[2].Name != "A" {
		t.Fatalf("unexpected order: %v", got)
	}
}
