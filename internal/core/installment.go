package core

import (
	"fmt"
)

const (
	MinInstallments = 2
	MaxInstallments = 120
)

// ExpandInstallments splits one entry into count linked entries.
//
// The per-installment value is the two-decimal floor of total/count; the
// last installment absorbs the remainder so the batch sums to the
// original amount to the cent. Entry i keeps the request's dates advanced
// by i-1 calendar months (day clamped for shorter months) and carries
// Installment{i, count}. Counts of 0 or 1 mean "no installments" and are
// the caller's business, not this function's; they are rejected along
// with anything above MaxInstallments. Nothing is produced on error: a
// batch is created whole or not at all.
func ExpandInstallments(base LedgerEntry, count int) ([]LedgerEntry, error) {
	if count < MinInstallments || count > MaxInstallments {
		return nil, fmt.Errorf("%w: count %d outside [%d, %d]",
			ErrInvalidInstallment, count, MinInstallments, MaxInstallments)
	}
	if base.Amount.Cents <= 0 {
		return nil, ErrInvalidAmount
	}
	if base.CompetenceDate.IsZero() {
		return nil, ErrMissingDate
	}

	total := base.Amount.Cents
	per := total / int64(count)
	if per == 0 {
		return nil, fmt.Errorf("%w: %s does not split into %d installments",
			ErrInvalidAmount, FormatCents(total), count)
	}
	last := total - per*int64(count-1)

	out := make([]LedgerEntry, 0, count)
	for i := 1; i <= count; i++ {
		e := base
		e.Ref = ""
		e.Installment = &Installment{Index: i, Count: count}
		e.Amount = Money{Cents: per}
		if i == count {
			e.Amount = Money{Cents: last}
		}
		e.CompetenceDate = base.CompetenceDate.AddMonths(i - 1)
		if !base.CashDate.IsZero() {
			e.CashDate = base.CashDate.AddMonths(i - 1)
		}
		out = append(out, e)
	}
	return out, nil
}
