package report

import (
	"sort"
	"strings"

	"caixa/internal/core"
)

const (
	ByCompetenceDate DateField = "competence"
	ByCashDate       DateField = "cash"
)

// DateField selects which date a range filter applies to.
type DateField string

// Filters are conjunctive: an entry must satisfy every set field. Zero
// values mean "no constraint".
type Filters struct {
	DateField     DateField // defaults to competence
	From, To      core.Date // inclusive
	Kind          core.Kind
	Status        core.Status
	Category      string
	PaymentMethod core.PaymentMethod
	Institution   core.Institution
	Ownership     core.Ownership
	Query         string // substring over description + counterparty, accent/case-insensitive
}

// Sort orders a listing. Column names follow the row schema; unknown
// columns fall back to the default competence-descending order.
type Sort struct {
	Column     string
	Descending bool
}

// Page is one stable page of a filtered listing.
type Page struct {
	Items      []core.LedgerEntry
	TotalCount int
	TotalPages int
	Number     int // the served page after clamping
}

// Match reports whether the entry passes every set filter.
func (f Filters) Match(e core.LedgerEntry) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Category != "" && !strings.EqualFold(e.Category, f.Category) {
		return false
	}
	if f.PaymentMethod != "" && e.PaymentMethod != f.PaymentMethod {
		return false
	}
	if f.Institution != "" && e.Institution != f.Institution {
		return false
	}
	if f.Ownership != "" && e.Ownership != f.Ownership {
		return false
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		d := e.CompetenceDate
		if f.DateField == ByCashDate {
			d = e.CashDate
		}
		if d.IsZero() {
			return false
		}
		if !f.From.IsZero() && d.Before(f.From.Time) {
			return false
		}
		if !f.To.IsZero() && d.After(f.To.Time) {
			return false
		}
	}
	if q := core.NormalizeText(f.Query); q != "" {
		hay := core.NormalizeText(e.Description) + " " + core.NormalizeText(e.Counterparty)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

// List filters, sorts and pages an entry snapshot. TotalPages is at least
// 1 even for an empty result, and an out-of-range page clamps to the last
// valid page instead of erroring.
func List(entries []core.LedgerEntry, f Filters, s Sort, page, pageSize int) Page {
	matched := make([]core.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			matched = append(matched, e)
		}
	}
	sortEntries(matched, s)

	if pageSize < 1 {
		pageSize = 1
	}
	total := len(matched)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:      matched[start:end],
		TotalCount: total,
		TotalPages: totalPages,
		Number:     page,
	}
}

func sortEntries(entries []core.LedgerEntry, s Sort) {
	less := lessFunc(s.Column)
	if less == nil {
		// Default order: competence date descending.
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].CompetenceDate.After(entries[j].CompetenceDate.Time)
		})
		return
	}
	if s.Descending {
		inner := less
		less = func(a, b core.LedgerEntry) bool { return inner(b, a) }
	}
	sort.SliceStable(entries, func(i, j int) bool { return less(entries[i], entries[j]) })
}

// lessFunc returns the ascending comparator for a sort column: amount
// compares numerically, dates chronologically, strings case-insensitively.
func lessFunc(column string) func(a, b core.LedgerEntry) bool {
	switch column {
	case core.ColAmount:
		return func(a, b core.LedgerEntry) bool { return a.Amount.Cents < b.Amount.Cents }
	case core.ColCompetenceDate:
		return func(a, b core.LedgerEntry) bool { return a.CompetenceDate.Before(b.CompetenceDate.Time) }
	case core.ColCashDate:
		return func(a, b core.LedgerEntry) bool { return a.CashDate.Before(b.CashDate.Time) }
	case core.ColDescription:
		return stringLess(func(e core.LedgerEntry) string { return e.Description })
	case core.ColCounterparty:
		return stringLess(func(e core.LedgerEntry) string { return e.Counterparty })
	case core.ColCategory:
		return stringLess(func(e core.LedgerEntry) string { return e.Category })
	case core.ColStatus:
		return stringLess(func(e core.LedgerEntry) string { return string(e.Status) })
	case core.ColKind:
		return stringLess(func(e core.LedgerEntry) string { return string(e.Kind) })
	default:
		return nil
	}
}

func stringLess(get func(core.LedgerEntry) string) func(a, b core.LedgerEntry) bool {
	return func(a, b core.LedgerEntry) bool {
		return strings.ToLower(get(a)) < strings.ToLower(get(b))
	}
}
