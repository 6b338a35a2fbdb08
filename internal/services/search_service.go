package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"caixa/internal/core"
	"caixa/internal/sheets"
)

var ErrShortQuery = errors.New("query must have at least 2 characters")

const maxHitsPerBucket = 20

// SearchHit is one match in the global search, tagged with the table it
// came from.
type SearchHit struct {
	Table   string            `json:"table"`
	Ref     string            `json:"ref,omitempty"`
	Summary string            `json:"summary"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// SearchService fans one query out across every table. The buckets are
// isolated: a table that fails to load logs a warning and contributes
// nothing, instead of sinking the whole search.
type SearchService struct {
	store sheets.Store
}

func NewSearchService(store sheets.Store) *SearchService {
	return &SearchService{store: store}
}

// Search matches the normalized query as a substring against entries,
// clients and categories concurrently, capping each table at 20 hits.
func (s *SearchService) Search(ctx context.Context, query string) ([]SearchHit, error) {
	q := core.NormalizeText(query)
	if len([]rune(q)) < 2 {
		return nil, ErrShortQuery
	}

	var entryHits, clientHits, catHits []SearchHit

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, err := s.store.ListEntries(ctx)
		if err != nil {
			slog.WarnContext(ctx, "Search skipping entries table", "error", err)
			return nil
		}
		entryHits = matchEntries(entries, q)
		return nil
	})
	g.Go(func() error {
		clients, err := s.store.ListClients(ctx)
		if err != nil {
			slog.WarnContext(ctx, "Search skipping clients table", "error", err)
			return nil
		}
		clientHits = matchClients(clients, q)
		return nil
	})
	g.Go(func() error {
		cats, err := s.store.ListCategories(ctx)
		if err != nil {
			slog.WarnContext(ctx, "Search skipping categories table", "error", err)
			return nil
		}
		catHits = matchCategories(cats, q)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(entryHits)+len(clientHits)+len(catHits))
	hits = append(hits, entryHits...)
	hits = append(hits, clientHits...)
	hits = append(hits, catHits...)
	return hits, nil
}

func matchEntries(entries []core.LedgerEntry, q string) []SearchHit {
	var hits []SearchHit
	for _, e := range entries {
		hay := core.NormalizeText(e.Description) + " " +
			core.NormalizeText(e.Counterparty) + " " +
			core.NormalizeText(e.Category) + " " +
			core.NormalizeText(e.Notes)
		if !strings.Contains(hay, q) {
			continue
		}
		hits = append(hits, SearchHit{
			Table:   "entries",
			Ref:     e.Ref,
			Summary: e.Description,
			Fields: map[string]string{
				"competence_date": e.CompetenceDate.ISO(),
				"kind":            string(e.Kind),
				"category":        e.Category,
				"counterparty":    e.Counterparty,
				"amount":          e.Amount.String(),
				"status":          string(e.Status),
			},
		})
		if len(hits) == maxHitsPerBucket {
			break
		}
	}
	return hits
}

func matchClients(clients []core.Client, q string) []SearchHit {
	var hits []SearchHit
	for _, c := range clients {
		hay := core.NormalizeText(c.Name) + " " +
			c.Phone + " " +
			core.NormalizeText(c.Email) + " " +
			core.NormalizeText(c.City)
		if !strings.Contains(hay, q) {
			continue
		}
		hits = append(hits, SearchHit{
			Table:   "clients",
			Ref:     c.ID,
			Summary: c.Name,
			Fields: map[string]string{
				"phone": c.Phone,
				"email": c.Email,
				"city":  c.City,
			},
		})
		if len(hits) == maxHitsPerBucket {
			break
		}
	}
	return hits
}

func matchCategories(cats []core.Category, q string) []SearchHit {
	var hits []SearchHit
	for _, c := range cats {
		if !strings.Contains(core.NormalizeText(c.Name), q) {
			continue
		}
		hits = append(hits, SearchHit{
			Table:   "categories",
			Summary: c.Name,
			Fields: map[string]string{
				"kind":   string(c.Kind),
				"active": strconv.FormatBool(c.Active),
			},
		})
		if len(hits) == maxHitsPerBucket {
			break
		}
	}
	return hits
}
