package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"caixa/internal/core"
	"caixa/internal/report"
	"caixa/internal/services"
)

// Error codes carried in the envelope.
const (
	codeBadRequest    = "BAD_REQUEST"
	codeUnauthorized  = "UNAUTHORIZED"
	codeValidation    = "VALIDATION_ERROR"
	codeNotFound      = "NOT_FOUND"
	codeUnknownAction = "UNKNOWN_ACTION"
	codeInternal      = "INTERNAL_ERROR"
)

// Response is the single envelope every action answers with. Only the
// fields an action fills appear on the wire.
type Response struct {
	OK         bool        `json:"ok"`
	Message    string      `json:"message,omitempty"`
	Code       string      `json:"code,omitempty"`
	Token      string      `json:"token,omitempty"`
	ID         string      `json:"id,omitempty"`
	Total      string      `json:"total,omitempty"`
	Items      any         `json:"items,omitempty"`
	Results    any         `json:"results,omitempty"`
	Ranking    any         `json:"ranking,omitempty"`
	Months     any         `json:"months,omitempty"`
	Bucket     any         `json:"bucket,omitempty"`
	Client     any         `json:"client,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalCount int `json:"totalCount"`
}

type EntryDTO struct {
	Ref             string `json:"ref"`
	CompetenceDate  string `json:"competence_date"`
	CashDate        string `json:"cash_date,omitempty"`
	Kind            string `json:"kind"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	Counterparty    string `json:"counterparty,omitempty"`
	PaymentMethod   string `json:"payment_method,omitempty"`
	Institution     string `json:"institution,omitempty"`
	Ownership       string `json:"ownership,omitempty"`
	Installment     string `json:"installment,omitempty"`
	Amount          string `json:"amount"`
	Status          string `json:"status"`
	Notes           string `json:"notes,omitempty"`
	ReceivableMonth string `json:"receivable_month,omitempty"`
}

func entryDTO(e core.LedgerEntry) EntryDTO {
	dto := EntryDTO{
		Ref:             e.Ref,
		CompetenceDate:  e.CompetenceDate.ISO(),
		CashDate:        e.CashDate.ISO(),
		Kind:            string(e.Kind),
		Category:        e.Category,
		Description:     e.Description,
		Counterparty:    e.Counterparty,
		PaymentMethod:   string(e.PaymentMethod),
		Institution:     string(e.Institution),
		Ownership:       string(e.Ownership),
		Amount:          e.Amount.String(),
		Status:          string(e.Status),
		Notes:           e.Notes,
		ReceivableMonth: e.ReceivableMonth,
	}
	if e.Installment != nil {
		dto.Installment = strconv.Itoa(e.Installment.Index) + "/" + strconv.Itoa(e.Installment.Count)
	}
	return dto
}

func entryDTOs(entries []core.LedgerEntry) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryDTO(e))
	}
	return out
}

type BucketDTO struct {
	IncomePaid             string            `json:"income_paid"`
	IncomePending          string            `json:"income_pending"`
	ExpensePaid            string            `json:"expense_paid"`
	ResultCash             string            `json:"result_cash"`
	ByPaymentMethod        map[string]string `json:"by_payment_method,omitempty"`
	ByInstitutionOwnership map[string]string `json:"by_institution_ownership,omitempty"`
	ByCategory             map[string]string `json:"by_category,omitempty"`
	TopCategories          []TopCategoryDTO  `json:"top_categories,omitempty"`
}

// TopCategoryDTO keeps the largest categories ordered; the by_category
// map carries the full breakdown but no order.
type TopCategoryDTO struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

const topCategoryCount = 5

func bucketDTO(b report.MonthlyBucket) BucketDTO {
	dto := BucketDTO{
		IncomePaid:    b.IncomePaid.String(),
		IncomePending: b.IncomePending.String(),
		ExpensePaid:   b.ExpensePaid.String(),
		ResultCash:    b.ResultCash.String(),
	}
	if len(b.ByPaymentMethod) > 0 {
		dto.ByPaymentMethod = make(map[string]string, len(b.ByPaymentMethod))
		for k, v := range b.ByPaymentMethod {
			dto.ByPaymentMethod[string(k)] = v.String()
		}
	}
	if len(b.ByInstitutionOwnership) > 0 {
		dto.ByInstitutionOwnership = make(map[string]string, len(b.ByInstitutionOwnership))
		for k, v := range b.ByInstitutionOwnership {
			dto.ByInstitutionOwnership[k.String()] = v.String()
		}
	}
	if len(b.ByCategory) > 0 {
		dto.ByCategory = make(map[string]string, len(b.ByCategory))
		for k, v := range b.ByCategory {
			dto.ByCategory[k] = v.String()
		}
		for _, c := range report.TopCategories(b, topCategoryCount) {
			dto.TopCategories = append(dto.TopCategories, TopCategoryDTO{
				Name:   c.Name,
				Amount: c.Amount.String(),
			})
		}
	}
	return dto
}

type MonthDTO struct {
	Month  string    `json:"month"`
	Bucket BucketDTO `json:"bucket"`
}

type RankDTO struct {
	Counterparty string  `json:"counterparty"`
	EntryCount   int     `json:"entry_count"`
	Total        string  `json:"total"`
	Percent      float64 `json:"percent"`
}

func rankDTOs(ranking []report.RankEntry) []RankDTO {
	out := make([]RankDTO, 0, len(ranking))
	for _, r := range ranking {
		out = append(out, RankDTO{
			Counterparty: r.Counterparty,
			EntryCount:   r.EntryCount,
			Total:        r.Total.String(),
			Percent:      r.Percent,
		})
	}
	return out
}

type ClientDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
	BirthDate    string `json:"birth_date,omitempty"`
	City         string `json:"city,omitempty"`
	District     string `json:"district,omitempty"`
	RegisteredAt string `json:"registered_at,omitempty"`
	Profession   string `json:"profession,omitempty"`
	Preferences  string `json:"preferences,omitempty"`
	Source       string `json:"source,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func clientDTO(c core.Client) ClientDTO {
	return ClientDTO{
		ID:           c.ID,
		Name:         c.Name,
		Phone:        c.Phone,
		Email:        c.Email,
		BirthDate:    c.BirthDate,
		City:         c.City,
		District:     c.District,
		RegisteredAt: c.RegisteredAt,
		Profession:   c.Profession,
		Preferences:  c.Preferences,
		Source:       c.Source,
		Notes:        c.Notes,
	}
}

func clientDTOs(clients []core.Client) []ClientDTO {
	out := make([]ClientDTO, 0, len(clients))
	for _, c := range clients {
		out = append(out, clientDTO(c))
	}
	return out
}

type CategoryDTO struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func categoryDTOs(cats []core.Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryDTO{Kind: string(c.Kind), Name: c.Name, Active: c.Active})
	}
	return out
}

type SearchHitDTO = services.SearchHit

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeOK(w http.ResponseWriter, resp Response) {
	resp.OK = true
	writeJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Response{OK: false, Code: code, Message: message})
}
