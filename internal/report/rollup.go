// Package report computes the monthly rollups, drill-downs, rankings and
// listings over an in-memory entry snapshot. Every function is a pure
// transform of its input slice: the caller fetches a consistent snapshot
// from the store and may share it read-only across goroutines.
package report

import (
	"sort"

	"caixa/internal/core"
)

// InstitutionOwnership is the composite breakdown key (e.g. Nubank held
// personally vs. by the business).
type InstitutionOwnership struct {
	Institution core.Institution
	Ownership   core.Ownership
}

func (k InstitutionOwnership) String() string {
	return string(k.Institution) + "_" + string(k.Ownership)
}

// MonthlyBucket aggregates one YYYY-MM month. Buckets are rebuilt whole,
// never mutated in place.
type MonthlyBucket struct {
	IncomePaid    core.Money
	IncomePending core.Money
	ExpensePaid   core.Money
	ResultCash    core.Money // IncomePaid - ExpensePaid

	ByPaymentMethod        map[core.PaymentMethod]core.Money
	ByInstitutionOwnership map[InstitutionOwnership]core.Money
	ByCategory             map[string]core.Money
}

func NewMonthlyBucket() MonthlyBucket {
	return MonthlyBucket{
		ByPaymentMethod:        make(map[core.PaymentMethod]core.Money),
		ByInstitutionOwnership: make(map[InstitutionOwnership]core.Money),
		ByCategory:             make(map[string]core.Money),
	}
}

// Aggregate buckets entries by month and computes every derived total in
// a single pass. The same function serves the full recompute (all months)
// and the single-month recompute (caller filters the slice first), which
// is what keeps list and detail totals consistent by construction.
//
// Per entry: paid income feeds IncomePaid plus the payment-method and
// category breakdowns, and the institution×ownership breakdown when both
// dimensions are within the fixed sets; pending income feeds
// IncomePending only; paid expense feeds ExpensePaid; cancelled entries
// are skipped entirely. ResultCash is derived after the pass rather than
// accumulated, so it cannot drift from its operands.
func Aggregate(entries []core.LedgerEntry) map[string]MonthlyBucket {
	buckets := make(map[string]MonthlyBucket)
	for _, e := range entries {
		key, ok := e.BucketMonth()
		if !ok {
			continue
		}
		b, ok := buckets[key]
		if !ok {
			b = NewMonthlyBucket()
		}
		accumulate(&b, e)
		buckets[key] = b
	}
	for key, b := range buckets {
		b.ResultCash = core.Money{Cents: b.IncomePaid.Cents - b.ExpensePaid.Cents}
		buckets[key] = b
	}
	return buckets
}

func accumulate(b *MonthlyBucket, e core.LedgerEntry) {
	amount := e.Amount.Cents
	switch {
	case e.Kind == core.Income && e.Status == core.Paid:
		b.IncomePaid.Cents += amount
		if e.PaymentMethod.Valid() {
			m := b.ByPaymentMethod[e.PaymentMethod]
			m.Cents += amount
			b.ByPaymentMethod[e.PaymentMethod] = m
		}
		if e.Institution.Valid() && e.Ownership.Valid() {
			k := InstitutionOwnership{Institution: e.Institution, Ownership: e.Ownership}
			m := b.ByInstitutionOwnership[k]
			m.Cents += amount
			b.ByInstitutionOwnership[k] = m
		}
		if e.Category != "" {
			m := b.ByCategory[e.Category]
			m.Cents += amount
			b.ByCategory[e.Category] = m
		}
	case e.Kind == core.Income && e.Status == core.Pending:
		b.IncomePending.Cents += amount
	case e.Kind == core.Expense && e.Status == core.Paid:
		b.ExpensePaid.Cents += amount
	}
}

// MonthKeys returns the bucket keys sorted descending (newest first);
// YYYY-MM sorts lexicographically.
func MonthKeys(buckets map[string]MonthlyBucket) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}

// TopCategories returns the n largest category totals of a bucket,
// largest first, names breaking ties.
func TopCategories(b MonthlyBucket, n int) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(b.ByCategory))
	for name, amount := range b.ByCategory {
		out = append(out, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CategoryAmount pairs a category name with its aggregated amount.
type CategoryAmount struct {
	Name   string
	Amount core.Money
}
