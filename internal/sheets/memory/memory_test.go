package memory

import (
	"context"
	"testing"

	"caixa/internal/core"
)

func testEntry() core.LedgerEntry {
	return core.LedgerEntry{
		CompetenceDate: core.NewDate(2024, 1, 10),
		Kind:           core.Income,
		Category:       "Services",
		Description:    "haircut",
		Amount:         core.Money{Cents: 5000},
		Status:         core.Pending,
	}
}

func TestAppendAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	refs, err := s.AppendEntries(ctx, []core.LedgerEntry{testEntry(), testEntry()})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(refs) != 2 || refs[0] == refs[1] {
		t.Fatalf("refs = %v", refs)
	}

	got, err := s.ListEntries(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Ref != refs[0] {
		t.Fatalf("list = %+v", got)
	}
}

func TestAppendBatchIsAtomic(t *testing.T) {
	s := New()
	ctx := context.Background()

	bad := testEntry()
	bad.Amount = core.Money{}
	if _, err := s.AppendEntries(ctx, []core.LedgerEntry{testEntry(), bad}); err == nil {
		t.Fatal("expected validation error")
	}
	got, _ := s.ListEntries(ctx)
	if len(got) != 0 {
		t.Fatalf("failed batch must not leave partial rows, got %d", len(got))
	}
}

func TestUpdateAndDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	refs, _ := s.AppendEntries(ctx, []core.LedgerEntry{testEntry()})

	updated := testEntry()
	updated.Status = core.Paid
	updated.CashDate = core.NewDate(2024, 1, 12)
	if err := s.UpdateEntry(ctx, refs[0], updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.ListEntries(ctx)
	if got[0].Status != core.Paid {
		t.Fatalf("update not applied: %+v", got[0])
	}

	if err := s.DeleteEntry(ctx, refs[0]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = s.ListEntries(ctx)
	if len(got) != 0 {
		t.Fatalf("delete left %d rows", len(got))
	}

	if err := s.DeleteEntry(ctx, "mem:999"); err == nil {
		t.Fatal("expected error deleting unknown ref")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.AppendEntries(ctx, []core.LedgerEntry{testEntry()})

	snap, _ := s.ListEntries(ctx)
	snap[0].Description = "mutated"

	again, _ := s.ListEntries(ctx)
	if again[0].Description != "haircut" {
		t.Fatal("ListEntries must return a copy, not the backing slice")
	}
}
