package core

import (
	"strconv"
	"strings"
)

// Column names of the entries table/tab. Every store speaks this schema.
const (
	ColCompetenceDate  = "competence_date"
	ColCashDate        = "cash_date"
	ColKind            = "kind"
	ColCategory        = "category"
	ColDescription     = "description"
	ColCounterparty    = "counterparty"
	ColPaymentMethod   = "payment_method"
	ColInstitution     = "institution"
	ColOwnership       = "ownership"
	ColInstallment     = "installment"
	ColAmount          = "amount"
	ColStatus          = "status"
	ColNotes           = "notes"
	ColReceivableMonth = "receivable_month"
)

// EntryColumns is the canonical column order for row-oriented stores.
func EntryColumns() []string {
	return []string{
		ColCompetenceDate, ColCashDate, ColKind, ColCategory, ColDescription,
		ColCounterparty, ColPaymentMethod, ColInstitution, ColOwnership,
		ColInstallment, ColAmount, ColStatus, ColNotes, ColReceivableMonth,
	}
}

// EntryFromRow converts one raw column-name->value row into a typed
// LedgerEntry. This is the single seam where loosely typed store rows
// become typed values: dates and amounts go through the lenient
// normalizers, enum cells are case-folded, and unknown enum values are
// kept as-is so the aggregator can decide what to exclude.
func EntryFromRow(ref string, row map[string]string) LedgerEntry {
	inst := parseInstallmentCell(row[ColInstallment])
	return LedgerEntry{
		Ref:             ref,
		CompetenceDate:  ParseDate(row[ColCompetenceDate]),
		CashDate:        ParseDate(row[ColCashDate]),
		Kind:            Kind(foldEnum(row[ColKind])),
		Category:        strings.TrimSpace(row[ColCategory]),
		Description:     strings.TrimSpace(row[ColDescription]),
		Counterparty:    strings.TrimSpace(row[ColCounterparty]),
		PaymentMethod:   PaymentMethod(foldEnum(row[ColPaymentMethod])),
		Institution:     Institution(foldEnum(row[ColInstitution])),
		Ownership:       Ownership(foldEnum(row[ColOwnership])),
		Installment:     inst,
		Amount:          ParseAmount(row[ColAmount]),
		Status:          Status(foldEnum(row[ColStatus])),
		Notes:           strings.TrimSpace(row[ColNotes]),
		ReceivableMonth: strings.TrimSpace(row[ColReceivableMonth]),
	}
}

// ToRow converts the entry back into the row shape stores persist.
func (e LedgerEntry) ToRow() map[string]string {
	row := map[string]string{
		ColCompetenceDate:  e.CompetenceDate.ISO(),
		ColCashDate:        e.CashDate.ISO(),
		ColKind:            string(e.Kind),
		ColCategory:        e.Category,
		ColDescription:     e.Description,
		ColCounterparty:    e.Counterparty,
		ColPaymentMethod:   string(e.PaymentMethod),
		ColInstitution:     string(e.Institution),
		ColOwnership:       string(e.Ownership),
		ColAmount:          e.Amount.String(),
		ColStatus:          string(e.Status),
		ColNotes:           e.Notes,
		ColReceivableMonth: e.ReceivableMonth,
	}
	if e.Installment != nil {
		row[ColInstallment] = strconv.Itoa(e.Installment.Index) + "/" + strconv.Itoa(e.Installment.Count)
	} else {
		row[ColInstallment] = ""
	}
	return row
}

func foldEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// parseInstallmentCell reads "3/12" style cells; anything else means the
// entry is not part of an installment batch.
func parseInstallmentCell(s string) *Installment {
	s = strings.TrimSpace(s)
	idx := strings.IndexByte(s, '/')
	if idx <= 0 || idx == len(s)-1 {
		return nil
	}
	i, err1 := strconv.Atoi(strings.TrimSpace(s[:idx]))
	n, err2 := strconv.Atoi(strings.TrimSpace(s[idx+1:]))
	if err1 != nil || err2 != nil {
		return nil
	}
	ins := Installment{Index: i, Count: n}
	if ins.Validate() != nil {
		return nil
	}
	return &ins
}
