// Package memory is an in-process tabular store used by tests and the
// "memory" backend. Row references are "mem:N" with N stable for the
// lifetime of the store.
package memory

import (
	"context"
	"fmt"
	"sync"

	"caixa/internal/core"
	"caixa/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	nextRef int
	entries []core.LedgerEntry
	clients []core.Client
	cats    []core.Category
}

var _ sheets.Store = (*Store)(nil)

func New() *Store {
	return &Store{nextRef: 1, cats: defaultCategories()}
}

// NewWithCategories replaces the seeded category registry.
func NewWithCategories(cats []core.Category) *Store {
	return &Store{nextRef: 1, cats: cats}
}

func defaultCategories() []core.Category {
	return []core.Category{
		{Kind: core.Income, Name: "Services", Active: true},
		{Kind: core.Income, Name: "Products", Active: true},
		{Kind: core.Expense, Name: "Supplies", Active: true},
		{Kind: core.Expense, Name: "Rent", Active: true},
	}
}

func (s *Store) ListEntries(_ context.Context) ([]core.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.LedgerEntry(nil), s.entries...), nil
}

func (s *Store) AppendEntries(_ context.Context, entries []core.LedgerEntry) ([]string, error) {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			// Nothing appended: the batch commits whole or not at all.
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	refs := make([]string, 0, len(entries))
	for _, e := range entries {
		e.Ref = fmt.Sprintf("mem:%d", s.nextRef)
		s.nextRef++
		s.entries = append(s.entries, e)
		refs = append(refs, e.Ref)
	}
	return refs, nil
}

func (s *Store) UpdateEntry(_ context.Context, ref string, e core.LedgerEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].Ref == ref {
			e.Ref = ref
			s.entries[i] = e
			return nil
		}
	}
	return fmt.Errorf("entry %s not found", ref)
}

func (s *Store) DeleteEntry(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].Ref == ref {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("entry %s not found", ref)
}

func (s *Store) ListClients(_ context.Context) ([]core.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Client(nil), s.clients...), nil
}

func (s *Store) AppendClient(_ context.Context, c core.Client) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := fmt.Sprintf("mem:%d", s.nextRef)
	s.nextRef++
	s.clients = append(s.clients, c)
	return ref, nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.cats...), nil
}
