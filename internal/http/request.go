package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"caixa/internal/core"
	"caixa/internal/report"
)

// ActionRequest is the dispatch envelope: one action name plus whatever
// that action needs. POST carries it as a JSON body; GET maps query
// parameters onto the same shape so reports are linkable.
type ActionRequest struct {
	Action  string            `json:"action"`
	Token   string            `json:"token,omitempty"`
	Ref     string            `json:"ref,omitempty"`
	Month   string            `json:"month,omitempty"`
	Query   string            `json:"q,omitempty"`
	Page    int               `json:"page,omitempty"`
	Limit   int               `json:"limit,omitempty"`
	Payload map[string]any    `json:"payload,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
	Sort    *SortParams       `json:"sort,omitempty"`
}

type SortParams struct {
	Column     string `json:"column"`
	Descending bool   `json:"descending"`
}

const maxBodyBytes = 1 << 20

var filterKeys = []string{
	"kind", "status", "category", "payment_method",
	"institution", "ownership", "from", "to", "date_field", "query",
}

func parseRequest(r *http.Request) (ActionRequest, error) {
	if r.Method == http.MethodPost {
		var req ActionRequest
		dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			return ActionRequest{}, fmt.Errorf("malformed JSON body: %w", err)
		}
		if req.Token == "" {
			req.Token = bearerToken(r)
		}
		return req, nil
	}

	q := r.URL.Query()
	req := ActionRequest{
		Action: q.Get("action"),
		Token:  q.Get("token"),
		Ref:    q.Get("ref"),
		Month:  q.Get("month"),
		Query:  q.Get("q"),
	}
	if req.Token == "" {
		req.Token = bearerToken(r)
	}
	if v := q.Get("page"); v != "" {
		req.Page, _ = strconv.Atoi(v)
	}
	if v := q.Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}
	for _, key := range filterKeys {
		if v := q.Get(key); v != "" {
			if req.Filters == nil {
				req.Filters = make(map[string]string)
			}
			req.Filters[key] = v
		}
	}
	if col := q.Get("sort"); col != "" {
		req.Sort = &SortParams{Column: col, Descending: q.Get("order") == "desc"}
	}
	return req, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(tok)
	}
	return ""
}

// reportFilters converts the loose filter map to typed report filters.
// Unknown keys are ignored; unparseable dates end up zero (no constraint).
func (req ActionRequest) reportFilters() report.Filters {
	f := report.Filters{
		Kind:          core.Kind(strings.ToLower(req.Filters["kind"])),
		Status:        core.Status(strings.ToLower(req.Filters["status"])),
		Category:      req.Filters["category"],
		PaymentMethod: core.PaymentMethod(strings.ToLower(req.Filters["payment_method"])),
		Institution:   core.Institution(strings.ToLower(req.Filters["institution"])),
		Ownership:     core.Ownership(strings.ToLower(req.Filters["ownership"])),
		From:          core.ParseDate(req.Filters["from"]),
		To:            core.ParseDate(req.Filters["to"]),
		Query:         req.Filters["query"],
	}
	if req.Filters["date_field"] == "cash" {
		f.DateField = report.ByCashDate
	}
	return f
}

func (req ActionRequest) reportSort() report.Sort {
	if req.Sort == nil {
		return report.Sort{}
	}
	return report.Sort{Column: req.Sort.Column, Descending: req.Sort.Descending}
}

func (req ActionRequest) pageParams() (page, limit int) {
	page, limit = req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return page, limit
}

// entryFromPayload builds a typed entry from the loose payload map, plus
// the requested installment count (0 when absent). Values go through the
// same row seam the stores use, so "80", 80 and "R$ 80,00" all work.
func (req ActionRequest) entryFromPayload() (core.LedgerEntry, int) {
	row := make(map[string]string, len(req.Payload))
	for k, v := range req.Payload {
		row[k] = payloadString(v)
	}
	entry := core.EntryFromRow("", row)

	installments := 0
	if v, ok := req.Payload["installments"]; ok {
		installments, _ = strconv.Atoi(payloadString(v))
	}
	return entry, installments
}

func (req ActionRequest) clientFromPayload() core.Client {
	get := func(k string) string { return payloadString(req.Payload[k]) }
	return core.Client{
		ID:           get("id"),
		Name:         get("name"),
		Phone:        get("phone"),
		Email:        get("email"),
		BirthDate:    get("birth_date"),
		City:         get("city"),
		District:     get("district"),
		RegisteredAt: get("registered_at"),
		Profession:   get("profession"),
		Preferences:  get("preferences"),
		Source:       get("source"),
		Notes:        get("notes"),
	}
}

func payloadString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
