package core

import (
	"math/rand"
	"testing"
)

func installmentBase(cents int64) LedgerEntry {
	return LedgerEntry{
		CompetenceDate: NewDate(2024, 1, 31),
		Kind:           Income,
		Category:       "Services",
		Description:    "package deal",
		Counterparty:   "Maria",
		Amount:         Money{Cents: cents},
		Status:         Pending,
	}
}

func TestExpandInstallmentsSplit(t *testing.T) {
	got, err := ExpandInstallments(installmentBase(10000), 3)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	wantCents := []int64{3333, 3333, 3334}
	var sum int64
	for i, e := range got {
		if e.Amount.Cents != wantCents[i] {
			t.Errorf("installment %d amount = %d, want %d", i+1, e.Amount.Cents, wantCents[i])
		}
		if e.Installment == nil || e.Installment.Index != i+1 || e.Installment.Count != 3 {
			t.Errorf("installment %d marker = %+v", i+1, e.Installment)
		}
		sum += e.Amount.Cents
	}
	if sum != 10000 {
		t.Fatalf("sum = %d, want 10000", sum)
	}
}

func TestExpandInstallmentsDates(t *testing.T) {
	got, err := ExpandInstallments(installmentBase(20000), 2)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got[0].CompetenceDate.ISO() != "2024-01-31" {
		t.Errorf("first keeps base date, got %s", got[0].CompetenceDate.ISO())
	}
	if got[1].CompetenceDate.ISO() != "2024-02-29" {
		t.Errorf("second clamps to leap February, got %s", got[1].CompetenceDate.ISO())
	}
	if !got[1].CashDate.IsZero() {
		t.Errorf("cash date should stay unset when base has none")
	}
}

func TestExpandInstallmentsExactSumProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		total := rng.Int63n(10_000_000) + 200 // at least 2.00
		count := rng.Intn(MaxInstallments-MinInstallments+1) + MinInstallments
		if total < int64(count) {
			total = int64(count) * 100
		}
		got, err := ExpandInstallments(installmentBase(total), count)
		if err != nil {
			t.Fatalf("expand(total=%d, count=%d): %v", total, count, err)
		}
		var sum int64
		for _, e := range got {
			sum += e.Amount.Cents
		}
		if sum != total {
			t.Fatalf("expand(total=%d, count=%d): sum %d", total, count, sum)
		}
		// Remainder sits on the last installment only.
		for j := 0; j < count-1; j++ {
			if got[j].Amount.Cents != got[0].Amount.Cents {
				t.Fatalf("installment %d differs from base share", j+1)
			}
		}
	}
}

func TestExpandInstallmentsRejects(t *testing.T) {
	cases := []struct {
		name  string
		base  LedgerEntry
		count int
	}{
		{"count zero", installmentBase(1000), 0},
		{"count one", installmentBase(1000), 1},
		{"count negative", installmentBase(1000), -3},
		{"count too large", installmentBase(1000), MaxInstallments + 1},
		{"zero amount", installmentBase(0), 2},
		{"no competence date", LedgerEntry{Amount: Money{Cents: 1000}}, 2},
	}
	for _, tc := range cases {
		if got, err := ExpandInstallments(tc.base, tc.count); err == nil {
			t.Errorf("%s: expected error, got %d entries", tc.name, len(got))
		}
	}
}
