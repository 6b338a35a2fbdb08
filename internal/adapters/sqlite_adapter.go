// Package adapters composes the SQLite repository and the sync service
// into the store surface the rest of the application consumes.
package adapters

import (
	"context"

	"caixa/internal/core"
	"caixa/internal/services"
	"caixa/internal/sheets"
	"caixa/internal/storage"
)

// SQLiteAdapter routes writes through the sync service, so every mutation
// also lands on the mirror queue, and reads straight to the repository.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.EntrySyncService
}

var _ sheets.Store = (*SQLiteAdapter)(nil)

func NewSQLiteAdapter(st *storage.SQLiteRepository, service *services.EntrySyncService) *SQLiteAdapter {
	return &SQLiteAdapter{storage: st, service: service}
}

func (a *SQLiteAdapter) ListEntries(ctx context.Context) ([]core.LedgerEntry, error) {
	return a.storage.ListEntries(ctx)
}

func (a *SQLiteAdapter) AppendEntries(ctx context.Context, entries []core.LedgerEntry) ([]string, error) {
	return a.service.CreateEntries(ctx, entries)
}

func (a *SQLiteAdapter) UpdateEntry(ctx context.Context, ref string, e core.LedgerEntry) error {
	return a.service.UpdateEntry(ctx, ref, e)
}

func (a *SQLiteAdapter) DeleteEntry(ctx context.Context, ref string) error {
	return a.service.DeleteEntry(ctx, ref)
}

func (a *SQLiteAdapter) ListClients(ctx context.Context) ([]core.Client, error) {
	return a.storage.ListClients(ctx)
}

func (a *SQLiteAdapter) AppendClient(ctx context.Context, c core.Client) (string, error) {
	return a.storage.AppendClient(ctx, c)
}

func (a *SQLiteAdapter) ListCategories(ctx context.Context) ([]core.Category, error) {
	return a.storage.ListCategories(ctx)
}
