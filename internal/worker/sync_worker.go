// Package worker mirrors the SQLite source of truth to the spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"caixa/internal/amqp"
	"caixa/internal/core"
	"caixa/internal/sheets"
	"caixa/internal/storage"
)

// mirror is the remote surface the worker writes to.
type mirror interface {
	sheets.EntryWriter
	sheets.EntryUpdater
	sheets.EntryDeleter
}

type SyncWorker struct {
	storage   *storage.SQLiteRepository
	mirror    mirror
	batchSize int
}

func NewSyncWorker(st *storage.SQLiteRepository, m mirror, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{storage: st, mirror: m, batchSize: batchSize}
}

// HandleSyncMessage processes one queued mirror operation.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID, "op", msg.Op)

	switch msg.Op {
	case amqp.OpUpsert:
		return w.mirrorEntry(ctx, msg.ID)
	case amqp.OpDelete:
		return w.mirrorDelete(ctx, msg)
	default:
		// Drop instead of requeue: a bad op will never become valid.
		slog.WarnContext(ctx, "Dropping sync message with unknown op", "op", msg.Op)
		return nil
	}
}

// mirrorEntry pushes the current row to the spreadsheet. First sync
// appends and records the remote row reference; later syncs update it.
func (w *SyncWorker) mirrorEntry(ctx context.Context, id int64) error {
	entry, sheetRef, err := w.storage.GetEntry(ctx, id)
	if errors.Is(err, storage.ErrEntryNotFound) {
		// Deleted locally before the worker got here; nothing to mirror.
		slog.WarnContext(ctx, "Entry vanished before sync, dropping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}

	if sheetRef == "" {
		refs, err := w.mirror.AppendEntries(ctx, []core.LedgerEntry{entry})
		if err != nil {
			w.markError(ctx, id)
			return fmt.Errorf("append to sheets: %w", err)
		}
		if len(refs) == 1 {
			if err := w.storage.SetSheetRef(ctx, id, refs[0]); err != nil {
				slog.ErrorContext(ctx, "Failed to record sheet ref", "id", id, "error", err)
			}
		}
	} else {
		if err := w.mirror.UpdateEntry(ctx, sheetRef, entry); err != nil {
			w.markError(ctx, id)
			return fmt.Errorf("update sheets row: %w", err)
		}
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// The mirror write landed; only the flag is stale.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Entry mirrored", "id", id, "sheet_ref", sheetRef)
	return nil
}

func (w *SyncWorker) mirrorDelete(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	if msg.SheetRef == "" {
		slog.InfoContext(ctx, "Entry was never mirrored, nothing to delete", "id", msg.ID)
		return nil
	}
	if err := w.mirror.DeleteEntry(ctx, msg.SheetRef); err != nil {
		return fmt.Errorf("delete sheets row: %w", err)
	}
	slog.InfoContext(ctx, "Mirror row deleted", "id", msg.ID, "sheet_ref", msg.SheetRef)
	return nil
}

// ProcessPending re-mirrors rows whose queue messages were lost. Entries
// sync independently, a few at a time.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncEntries(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, p := range pending {
		p := p
		g.Go(func() error {
			if err := w.mirrorEntry(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to sync entry", "id", p.ID, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// StartupSyncCheck drains the pending backlog once at worker start, so a
// worker outage does not leave rows unmirrored forever.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncEntries(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending entries for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending entries found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending entries on startup, processing...",
		"count", len(pending))

	var synced, failed int
	for _, p := range pending {
		if err := w.mirrorEntry(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry during startup",
				"id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending), "synced", synced, "errors", failed)
	return nil
}

func (w *SyncWorker) markError(ctx context.Context, id int64) {
	if err := w.storage.MarkSyncError(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", err)
	}
}
