package services

import (
	"context"
	"errors"
	"testing"

	"caixa/internal/core"
	"caixa/internal/report"
	"caixa/internal/sheets/memory"
)

func serviceEntry() core.LedgerEntry {
	return core.LedgerEntry{
		CompetenceDate: core.NewDate(2024, 7, 3),
		Kind:           core.Income,
		Category:       "Services",
		Description:    "progressiva",
		Counterparty:   "Beatriz",
		Amount:         core.Money{Cents: 25000},
		Status:         core.Paid,
		CashDate:       core.NewDate(2024, 7, 3),
	}
}

func TestCreateEntrySingle(t *testing.T) {
	svc := NewLedgerService(memory.New())
	ctx := context.Background()

	created, err := svc.CreateEntry(ctx, CreateEntryInput{Entry: serviceEntry()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created) != 1 || created[0].Ref == "" {
		t.Fatalf("created = %+v", created)
	}
}

func TestCreateEntryExpandsInstallments(t *testing.T) {
	svc := NewLedgerService(memory.New())
	ctx := context.Background()

	in := CreateEntryInput{Entry: serviceEntry(), Installments: 3}
	in.Entry.Amount = core.Money{Cents: 10000}
	created, err := svc.CreateEntry(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("expanded to %d entries, want 3", len(created))
	}

	var sum int64
	for i, e := range created {
		sum += e.Amount.Cents
		if e.Installment == nil || e.Installment.Index != i+1 || e.Installment.Count != 3 {
			t.Errorf("installment %d: %+v", i, e.Installment)
		}
	}
	if sum != 10000 {
		t.Errorf("installment sum = %d, want 10000", sum)
	}

	page, err := svc.ListEntries(ctx, report.Filters{}, report.Sort{}, 1, 50)
	if err != nil || page.TotalCount != 3 {
		t.Fatalf("listing after create: %+v, %v", page, err)
	}
}

func TestCreateEntryRejectsUnknownCategory(t *testing.T) {
	svc := NewLedgerService(memory.New())

	bad := serviceEntry()
	bad.Category = "Jet fuel"
	if _, err := svc.CreateEntry(context.Background(), CreateEntryInput{Entry: bad}); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("err = %v, want ErrUnknownCategory", err)
	}

	// Kind mismatch: "Rent" is an expense category.
	crossed := serviceEntry()
	crossed.Category = "Rent"
	if _, err := svc.CreateEntry(context.Background(), CreateEntryInput{Entry: crossed}); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("err = %v, want ErrUnknownCategory for kind mismatch", err)
	}
}

func TestMonthlySummaryAndDetailAgree(t *testing.T) {
	svc := NewLedgerService(memory.New())
	ctx := context.Background()

	if _, err := svc.CreateEntry(ctx, CreateEntryInput{Entry: serviceEntry()}); err != nil {
		t.Fatalf("create: %v", err)
	}
	expense := serviceEntry()
	expense.Kind = core.Expense
	expense.Category = "Supplies"
	expense.Amount = core.Money{Cents: 7000}
	if _, err := svc.CreateEntry(ctx, CreateEntryInput{Entry: expense}); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	keys, buckets, err := svc.MonthlySummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(keys) != 1 || keys[0] != "2024-07" {
		t.Fatalf("month keys = %v", keys)
	}
	if buckets["2024-07"].ResultCash.Cents != 18000 {
		t.Fatalf("result cash = %d", buckets["2024-07"].ResultCash.Cents)
	}

	items, bucket, err := svc.MonthDetail(ctx, "2024-07")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("detail items = %d", len(items))
	}
	if bucket.ResultCash != buckets["2024-07"].ResultCash {
		t.Fatal("detail bucket must equal the summary bucket")
	}

	if _, _, err := svc.MonthDetail(ctx, "07/2024"); err == nil {
		t.Fatal("malformed month key must be rejected")
	}
}

func TestClientRegistration(t *testing.T) {
	svc := NewLedgerService(memory.New())
	ctx := context.Background()

	first, err := svc.CreateClient(ctx, core.Client{Name: "José Silva", Phone: "11988887777"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if first.ID != "CLI-0001" || first.RegisteredAt == "" {
		t.Fatalf("minted client = %+v", first)
	}

	second, err := svc.CreateClient(ctx, core.Client{Name: "Ana", Phone: "1190000"})
	if err != nil {
		t.Fatalf("create second client: %v", err)
	}
	if second.ID != "CLI-0002" {
		t.Fatalf("second ID = %q", second.ID)
	}

	hits, err := svc.SearchClients(ctx, "jose")
	if err != nil || len(hits) != 1 || hits[0].ID != "CLI-0001" {
		t.Fatalf("accent-insensitive client search: %+v, %v", hits, err)
	}

	if _, err := svc.CreateClient(ctx, core.Client{Name: "No Phone"}); err == nil {
		t.Fatal("client without phone must be rejected")
	}
}

func TestCategoriesByKind(t *testing.T) {
	svc := NewLedgerService(memory.New())

	cats, err := svc.Categories(context.Background(), core.Expense)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	for _, c := range cats {
		if c.Kind != core.Expense {
			t.Fatalf("kind filter leaked: %+v", c)
		}
	}
	if len(cats) == 0 {
		t.Fatal("no expense categories seeded")
	}
}
