package sheets

import (
	"context"

	"caixa/internal/core"
)

// Ports for outbound tabular stores. The engine never talks to a store
// directly; it works on snapshots fetched through these interfaces.
type (
	EntryReader interface {
		// ListEntries returns a full snapshot of the entries table.
		ListEntries(ctx context.Context) ([]core.LedgerEntry, error)
	}

	EntryWriter interface {
		// AppendEntries appends the batch atomically: all rows or none.
		// Returns one row reference per appended entry, in order.
		AppendEntries(ctx context.Context, entries []core.LedgerEntry) ([]string, error)
	}

	EntryUpdater interface {
		// UpdateEntry overwrites the columns of the row identified by ref.
		UpdateEntry(ctx context.Context, ref string, e core.LedgerEntry) error
	}

	EntryDeleter interface {
		DeleteEntry(ctx context.Context, ref string) error
	}

	ClientReader interface {
		ListClients(ctx context.Context) ([]core.Client, error)
	}

	ClientWriter interface {
		AppendClient(ctx context.Context, c core.Client) (string, error)
	}

	CategoryReader interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
	}
)

// Store is the full surface a data backend provides.
type Store interface {
	EntryReader
	EntryWriter
	EntryUpdater
	EntryDeleter
	ClientReader
	ClientWriter
	CategoryReader
}
