// Package storage is the SQLite write-through store. It is the source of
// truth for the sqlite backend; a worker mirrors its rows to the
// spreadsheet asynchronously using the sync columns kept here.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"caixa/internal/core"

	_ "modernc.org/sqlite"
)

var ErrEntryNotFound = errors.New("entry not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const entryColumns = `id, competence_date, cash_date, kind, category, description,
	counterparty, payment_method, institution, ownership,
	installment_index, installment_count, amount_cents, status, notes, receivable_month`

func scanEntry(row interface{ Scan(...any) error }) (core.LedgerEntry, error) {
	var (
		id                       int64
		competence, cash         string
		kind, category, desc     string
		counterparty, method     string
		institution, ownership   string
		instIndex, instCount     int
		amountCents              int64
		status, notes, recvMonth string
	)
	err := row.Scan(&id, &competence, &cash, &kind, &category, &desc,
		&counterparty, &method, &institution, &ownership,
		&instIndex, &instCount, &amountCents, &status, &notes, &recvMonth)
	if err != nil {
		return core.LedgerEntry{}, err
	}

	e := core.LedgerEntry{
		Ref:             strconv.FormatInt(id, 10),
		CompetenceDate:  core.ParseDate(competence),
		CashDate:        core.ParseDate(cash),
		Kind:            core.Kind(kind),
		Category:        category,
		Description:     desc,
		Counterparty:    counterparty,
		PaymentMethod:   core.PaymentMethod(method),
		Institution:     core.Institution(institution),
		Ownership:       core.Ownership(ownership),
		Amount:          core.Money{Cents: amountCents},
		Status:          core.Status(status),
		Notes:           notes,
		ReceivableMonth: recvMonth,
	}
	if instCount > 0 {
		e.Installment = &core.Installment{Index: instIndex, Count: instCount}
	}
	return e, nil
}

// ListEntries implements sheets.EntryReader.
func (r *SQLiteRepository) ListEntries(ctx context.Context) ([]core.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []core.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AppendEntries implements sheets.EntryWriter. The batch is inserted in
// one transaction: all rows or none.
func (r *SQLiteRepository) AppendEntries(ctx context.Context, entries []core.LedgerEntry) ([]string, error) {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}
	if len(entries) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	refs := make([]string, 0, len(entries))
	for _, e := range entries {
		instIndex, instCount := 0, 0
		if e.Installment != nil {
			instIndex, instCount = e.Installment.Index, e.Installment.Count
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO entries (
				competence_date, cash_date, kind, category, description,
				counterparty, payment_method, institution, ownership,
				installment_index, installment_count, amount_cents, status,
				notes, receivable_month
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.CompetenceDate.ISO(), e.CashDate.ISO(), string(e.Kind), e.Category,
			e.Description, e.Counterparty, string(e.PaymentMethod),
			string(e.Institution), string(e.Ownership),
			instIndex, instCount, e.Amount.Cents, string(e.Status),
			e.Notes, e.ReceivableMonth)
		if err != nil {
			return nil, fmt.Errorf("insert entry: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		refs = append(refs, strconv.FormatInt(id, 10))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit entries: %w", err)
	}

	slog.InfoContext(ctx, "Entries saved to SQLite", "count", len(entries), "first_id", refs[0])
	return refs, nil
}

// UpdateEntry implements sheets.EntryUpdater. The row goes back to
// unsynced so the worker re-mirrors it.
func (r *SQLiteRepository) UpdateEntry(ctx context.Context, ref string, e core.LedgerEntry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	id, err := parseRef(ref)
	if err != nil {
		return err
	}

	instIndex, instCount := 0, 0
	if e.Installment != nil {
		instIndex, instCount = e.Installment.Index, e.Installment.Count
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries SET
			competence_date = ?, cash_date = ?, kind = ?, category = ?,
			description = ?, counterparty = ?, payment_method = ?,
			institution = ?, ownership = ?, installment_index = ?,
			installment_count = ?, amount_cents = ?, status = ?, notes = ?,
			receivable_month = ?, synced = 0, sync_error = 0,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		e.CompetenceDate.ISO(), e.CashDate.ISO(), string(e.Kind), e.Category,
		e.Description, e.Counterparty, string(e.PaymentMethod),
		string(e.Institution), string(e.Ownership), instIndex, instCount,
		e.Amount.Cents, string(e.Status), e.Notes, e.ReceivableMonth, id)
	if err != nil {
		return fmt.Errorf("update entry %s: %w", ref, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update entry %s: %w", ref, ErrEntryNotFound)
	}
	return nil
}

// DeleteEntry implements sheets.EntryDeleter.
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, ref string) error {
	id, err := parseRef(ref)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", ref, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete entry %s: %w", ref, ErrEntryNotFound)
	}
	return nil
}

// GetEntry loads one entry plus its remote sheet reference, used by the
// sync worker to decide between append and update on the mirror.
func (r *SQLiteRepository) GetEntry(ctx context.Context, id int64) (core.LedgerEntry, string, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.LedgerEntry{}, "", ErrEntryNotFound
	}
	if err != nil {
		return core.LedgerEntry{}, "", fmt.Errorf("get entry %d: %w", id, err)
	}

	sheetRef, err := r.SheetRef(ctx, id)
	if err != nil {
		return core.LedgerEntry{}, "", err
	}
	return e, sheetRef, nil
}

// SheetRef returns the mirror row reference recorded for an entry, or ""
// if the entry was never mirrored.
func (r *SQLiteRepository) SheetRef(ctx context.Context, id int64) (string, error) {
	var ref string
	err := r.db.QueryRowContext(ctx,
		`SELECT sheet_ref FROM entries WHERE id = ?`, id).Scan(&ref)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrEntryNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get sheet ref %d: %w", id, err)
	}
	return ref, nil
}

func (r *SQLiteRepository) SetSheetRef(ctx context.Context, id int64, sheetRef string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE entries SET sheet_ref = ? WHERE id = ?`, sheetRef, id)
	if err != nil {
		return fmt.Errorf("set sheet ref %d: %w", id, err)
	}
	return nil
}

// PendingSyncEntry is the minimal row shape the sync queue needs.
type PendingSyncEntry struct {
	ID        int64
	CreatedAt time.Time
}

func (r *SQLiteRepository) GetPendingSyncEntries(ctx context.Context, limit int) ([]PendingSyncEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at FROM entries
		WHERE synced = 0 AND sync_error = 0
		ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync entries: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncEntry
	for rows.Next() {
		var p PendingSyncEntry
		if err := rows.Scan(&p.ID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending entry: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE entries SET synced = 1, sync_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	slog.InfoContext(ctx, "Entry marked as synced", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE entries SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	slog.WarnContext(ctx, "Entry marked with sync error", "id", id)
	return nil
}

// ListClients implements sheets.ClientReader.
func (r *SQLiteRepository) ListClients(ctx context.Context) ([]core.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT client_id, name, phone, email, birth_date, city, district,
			registered_at, profession, preferences, source, notes
		FROM clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []core.Client
	for rows.Next() {
		var c core.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.BirthDate,
			&c.City, &c.District, &c.RegisteredAt, &c.Profession,
			&c.Preferences, &c.Source, &c.Notes); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// AppendClient implements sheets.ClientWriter.
func (r *SQLiteRepository) AppendClient(ctx context.Context, c core.Client) (string, error) {
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (
			client_id, name, phone, email, birth_date, city, district,
			registered_at, profession, preferences, source, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Phone, c.Email, c.BirthDate, c.City, c.District,
		c.RegisteredAt, c.Profession, c.Preferences, c.Source, c.Notes)
	if err != nil {
		return "", fmt.Errorf("insert client: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}
	slog.InfoContext(ctx, "Client saved to SQLite", "id", id, "name", c.Name)
	return strconv.FormatInt(id, 10), nil
}

// ListCategories implements sheets.CategoryReader.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT kind, name, active FROM categories ORDER BY kind, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		var active int
		if err := rows.Scan(&c.Kind, &c.Name, &active); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Active = active != 0
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func parseRef(ref string) (int64, error) {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("malformed entry reference %q", ref)
	}
	return id, nil
}
