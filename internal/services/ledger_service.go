package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"caixa/internal/core"
	"caixa/internal/report"
	"caixa/internal/sheets"
)

var (
	ErrUnknownCategory = errors.New("unknown or inactive category for kind")
)

// LedgerService runs every ledger operation against whichever store the
// backend factory produced. Reports always work on a fresh snapshot; the
// store is the single source of truth.
type LedgerService struct {
	store sheets.Store
}

func NewLedgerService(store sheets.Store) *LedgerService {
	return &LedgerService{store: store}
}

// CreateEntryInput is one create request. Installments above 1 expand the
// entry into that many rows before persisting.
type CreateEntryInput struct {
	Entry        core.LedgerEntry
	Installments int
}

// CreateEntry validates, optionally expands installments, and appends the
// resulting batch atomically. Returns the persisted entries with their
// assigned row references.
func (s *LedgerService) CreateEntry(ctx context.Context, in CreateEntryInput) ([]core.LedgerEntry, error) {
	if err := in.Entry.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.Entry); err != nil {
		return nil, err
	}

	batch := []core.LedgerEntry{in.Entry}
	if in.Installments > 1 {
		expanded, err := core.ExpandInstallments(in.Entry, in.Installments)
		if err != nil {
			return nil, err
		}
		batch = expanded
	}

	refs, err := s.store.AppendEntries(ctx, batch)
	if err != nil {
		return nil, err
	}
	for i := range batch {
		if i < len(refs) {
			batch[i].Ref = refs[i]
		}
	}

	slog.InfoContext(ctx, "Entries created",
		"count", len(batch),
		"kind", in.Entry.Kind,
		"amount", in.Entry.Amount.String())
	return batch, nil
}

func (s *LedgerService) UpdateEntry(ctx context.Context, ref string, e core.LedgerEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.checkCategory(ctx, e); err != nil {
		return err
	}
	return s.store.UpdateEntry(ctx, ref, e)
}

func (s *LedgerService) DeleteEntry(ctx context.Context, ref string) error {
	return s.store.DeleteEntry(ctx, ref)
}

// ListEntries returns one page of the filtered, sorted ledger.
func (s *LedgerService) ListEntries(ctx context.Context, f report.Filters, sort report.Sort, page, pageSize int) (report.Page, error) {
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return report.Page{}, fmt.Errorf("list entries: %w", err)
	}
	return report.List(entries, f, sort, page, pageSize), nil
}

// MonthlySummary rolls the whole ledger up into per-month buckets,
// returning the month keys newest first alongside the buckets.
func (s *LedgerService) MonthlySummary(ctx context.Context) ([]string, map[string]report.MonthlyBucket, error) {
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list entries: %w", err)
	}
	buckets := report.Aggregate(entries)
	return report.MonthKeys(buckets), buckets, nil
}

// MonthDetail drills into one month: its entries plus the bucket
// recomputed from exactly those entries.
func (s *LedgerService) MonthDetail(ctx context.Context, monthKey string) ([]core.LedgerEntry, report.MonthlyBucket, error) {
	if !core.ValidMonthKey(monthKey) {
		return nil, report.MonthlyBucket{}, fmt.Errorf("malformed month key %q", monthKey)
	}
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return nil, report.MonthlyBucket{}, fmt.Errorf("list entries: %w", err)
	}
	items, bucket := report.DetailMonth(entries, monthKey)
	return items, bucket, nil
}

// RankClients ranks income counterparties by total received.
func (s *LedgerService) RankClients(ctx context.Context) ([]report.RankEntry, core.Money, error) {
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return nil, core.Money{}, fmt.Errorf("list entries: %w", err)
	}
	ranking, grand := report.RankCounterparties(entries)
	return ranking, grand, nil
}

// Categories returns the registry, optionally narrowed to one kind.
// Inactive categories are included so the caller can gray them out.
func (s *LedgerService) Categories(ctx context.Context, kind core.Kind) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if kind == "" {
		return cats, nil
	}
	filtered := cats[:0]
	for _, c := range cats {
		if c.Kind == kind {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// CreateClient registers a counterparty, minting an ID and stamping the
// registration date when the caller left them blank.
func (s *LedgerService) CreateClient(ctx context.Context, c core.Client) (core.Client, error) {
	if err := c.Validate(); err != nil {
		return core.Client{}, err
	}
	if strings.TrimSpace(c.ID) == "" {
		id, err := s.GenerateClientID(ctx)
		if err != nil {
			return core.Client{}, err
		}
		c.ID = id
	}
	if strings.TrimSpace(c.RegisteredAt) == "" {
		c.RegisteredAt = time.Now().UTC().Format("2006-01-02")
	}

	if _, err := s.store.AppendClient(ctx, c); err != nil {
		return core.Client{}, err
	}
	slog.InfoContext(ctx, "Client registered", "client_id", c.ID, "name", c.Name)
	return c, nil
}

// GenerateClientID mints the next sequential registry ID ("CLI-0042").
func (s *LedgerService) GenerateClientID(ctx context.Context) (string, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return "", fmt.Errorf("list clients: %w", err)
	}
	max := 0
	for _, c := range clients {
		numStr, ok := strings.CutPrefix(c.ID, "CLI-")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(numStr); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("CLI-%04d", max+1), nil
}

// SearchClients matches the query against client names and phones,
// accent and case insensitively, capped at 20 results.
func (s *LedgerService) SearchClients(ctx context.Context, query string) ([]core.Client, error) {
	q := core.NormalizeText(query)
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	const maxResults = 20
	var out []core.Client
	for _, c := range clients {
		if q != "" &&
			!strings.Contains(core.NormalizeText(c.Name), q) &&
			!strings.Contains(c.Phone, strings.TrimSpace(query)) {
			continue
		}
		out = append(out, c)
		if len(out) == maxResults {
			break
		}
	}
	return out, nil
}

// checkCategory requires the entry's category to exist and be active for
// the entry's kind. Matching ignores case and accents, same as the rest
// of the text handling.
func (s *LedgerService) checkCategory(ctx context.Context, e core.LedgerEntry) error {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	want := core.NormalizeText(e.Category)
	for _, c := range cats {
		if c.Active && c.Kind == e.Kind && core.NormalizeText(c.Name) == want {
			return nil
		}
	}
	return fmt.Errorf("%w: %s/%s", ErrUnknownCategory, e.Kind, e.Category)
}
