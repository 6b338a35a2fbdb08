// Package services orchestrates ledger operations over the store ports.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"caixa/internal/amqp"
	"caixa/internal/core"
	"caixa/internal/storage"
)

// EntrySyncService pairs the SQLite write path with the mirror queue:
// every local write lands first, then a sync message goes out. A failed
// publish never fails the request; the pending-sync sweep picks the row
// up later.
type EntrySyncService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewEntrySyncService(st *storage.SQLiteRepository, amqpClient *amqp.Client) *EntrySyncService {
	return &EntrySyncService{storage: st, amqpClient: amqpClient}
}

func (s *EntrySyncService) CreateEntries(ctx context.Context, entries []core.LedgerEntry) ([]string, error) {
	refs, err := s.storage.AppendEntries(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("save entries: %w", err)
	}

	for _, ref := range refs {
		id, err := strconv.ParseInt(ref, 10, 64)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to parse entry ID", "ref", ref, "error", err)
			continue
		}
		s.publishUpsert(ctx, id)
	}
	return refs, nil
}

func (s *EntrySyncService) UpdateEntry(ctx context.Context, ref string, e core.LedgerEntry) error {
	if err := s.storage.UpdateEntry(ctx, ref, e); err != nil {
		return err
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		s.publishUpsert(ctx, id)
	}
	return nil
}

func (s *EntrySyncService) DeleteEntry(ctx context.Context, ref string) error {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed entry reference %q", ref)
	}

	// The remote row reference must be read before the local row goes.
	sheetRef, err := s.storage.SheetRef(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteEntry(ctx, ref); err != nil {
		return err
	}

	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	if err := s.amqpClient.PublishEntryDelete(ctx, id, sheetRef); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message", "id", id, "error", err)
	}
	return nil
}

func (s *EntrySyncService) publishUpsert(ctx context.Context, id int64) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return
	}
	if err := s.amqpClient.PublishEntryUpsert(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}
}

func (s *EntrySyncService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close entry sync service: %v", errs)
	}
	return nil
}
