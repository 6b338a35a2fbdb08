package services

import (
	"context"
	"errors"
	"testing"

	"caixa/internal/core"
	"caixa/internal/sheets/memory"
)

func TestGlobalSearch(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	e := serviceEntry()
	e.Description = "Coloração completa"
	if _, err := store.AppendEntries(ctx, []core.LedgerEntry{e}); err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	if _, err := store.AppendClient(ctx, core.Client{Name: "Carla Colorado", Phone: "119"}); err != nil {
		t.Fatalf("seed client: %v", err)
	}

	svc := NewSearchService(store)
	hits, err := svc.Search(ctx, "colora")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	tables := map[string]int{}
	for _, h := range hits {
		tables[h.Table]++
	}
	if tables["entries"] != 1 || tables["clients"] != 1 {
		t.Fatalf("hits by table = %v", tables)
	}
}

func TestSearchRejectsShortQuery(t *testing.T) {
	svc := NewSearchService(memory.New())
	if _, err := svc.Search(context.Background(), " a "); !errors.Is(err, ErrShortQuery) {
		t.Fatalf("err = %v, want ErrShortQuery", err)
	}
}

func TestSearchCapsResultsPerTable(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	var batch []core.LedgerEntry
	for i := 0; i < 30; i++ {
		e := serviceEntry()
		e.Description = "mechas platinadas"
		batch = append(batch, e)
	}
	if _, err := store.AppendEntries(ctx, batch); err != nil {
		t.Fatalf("seed: %v", err)
	}

	hits, err := NewSearchService(store).Search(ctx, "mechas")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != maxHitsPerBucket {
		t.Fatalf("got %d hits, want cap of %d", len(hits), maxHitsPerBucket)
	}
}
