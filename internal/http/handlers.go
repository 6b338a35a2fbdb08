package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"caixa/internal/auth"
	"caixa/internal/core"
	applog "caixa/internal/log"
	"caixa/internal/services"
)

// publicActions may run without a token.
var publicActions = map[string]bool{
	"auth.login":    true,
	"auth.validate": true,
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "missing action")
		return
	}

	logger := applog.FromContext(r.Context())
	logger.InfoContext(r.Context(), "Dispatching action", applog.FieldAction, req.Action)

	if !publicActions[req.Action] {
		if err := s.auth.Validate(req.Token); err != nil {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid or expired token")
			return
		}
	}

	ctx := r.Context()
	switch req.Action {
	case "auth.login":
		s.handleLogin(w, req)
	case "auth.validate":
		s.handleValidate(w, req)
	case "auth.logout":
		s.auth.Invalidate(req.Token)
		writeOK(w, Response{Message: "logged out"})

	case "entries.list":
		page, limit := req.pageParams()
		result, err := s.ledger.ListEntries(ctx, req.reportFilters(), req.reportSort(), page, limit)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeOK(w, Response{
			Items: entryDTOs(result.Items),
			Pagination: &Pagination{
				Page:       result.Number,
				PageSize:   limit,
				TotalPages: result.TotalPages,
				TotalCount: result.TotalCount,
			},
		})

	case "entries.create":
		entry, installments := req.entryFromPayload()
		created, err := s.ledger.CreateEntry(ctx, services.CreateEntryInput{
			Entry:        entry,
			Installments: installments,
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeOK(w, Response{Items: entryDTOs(created), Message: "created"})

	case "entries.update":
		if req.Ref == "" {
			writeError(w, http.StatusBadRequest, codeBadRequest, "missing ref")
			return
		}
		entry, _ := req.entryFromPayload()
		if err := s.ledger.UpdateEntry(ctx, req.Ref, entry); err != nil {
			s.fail(w, r, err)
			return
		}
		writeOK(w, Response{Message: "updated"})

	case "entries.delete":
		if req.Ref == "" {
			writeError(w, http.StatusBadRequest, codeBadRequest, "missing ref")
			return
		}
		if err := s.ledger.DeleteEntry(ctx, req.Ref); err != nil {
			s.fail(w, r, err)
			return
		}
		writeOK(w, Response{Message: "deleted"})

	case "summary.months":
		keys, buckets, err := s.ledger.MonthlySummary(ctx)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		months := make([]MonthDTO, 0, len(keys))
		for _, key := range keys {
			months = append(months, MonthDTO{Month: key, Bucket: bucketDTO(buckets[key])})
		}
		writeOK(w, Response{Months: months})

	case "summary.detail":
		items, bucket, err := s.ledger.MonthDetail(ctx, req.Month)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		b := bucketDTO(bucket)
		writeOK(w, Response{Items: entryDTOs(items), Bucket: &b})

	case "ranking.clients":
		ranking, grand, err := s.ledger.RankClients(ctx)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeOK(w, Response{Ranking: rankDTOs(ranking), Total: grand.String()})

	case "clients.create":
		created, err := s.ledger.CreateClient(ctx, req.clientFromPayload())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		c := clientDTO(created)
		writeOK(w, Response{Client: &c, ID: created.ID, Message: "registered"})

	case "clients.search":
		clients, err := s.ledger.SearchClients(ctx, req.Query)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeOK(w, Response{Items: clientDTOs(clients)})

	case "clients.generateID":
		id, err := s.ledger.GenerateClientID(ctx)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeOK(w, Response{ID: id})

	case "categories.list":
		kind := kindFromRequest(req)
		cats, err := s.ledger.Categories(ctx, kind)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeOK(w, Response{Items: categoryDTOs(cats)})

	case "search.global":
		hits, err := s.search.Search(ctx, req.Query)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeOK(w, Response{Results: hits})

	default:
		writeError(w, http.StatusNotFound, codeUnknownAction, "unknown action: "+req.Action)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, req ActionRequest) {
	password := payloadString(req.Payload["password"])
	token, err := s.auth.Login(password)
	if err != nil {
		// Flat delay so response timing says nothing about the password.
		time.Sleep(300 * time.Millisecond)
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid password")
		return
	}
	writeOK(w, Response{Token: token})
}

func (s *Server) handleValidate(w http.ResponseWriter, req ActionRequest) {
	if err := s.auth.Validate(req.Token); err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid or expired token")
		return
	}
	writeOK(w, Response{Message: "valid"})
}

// fail maps service errors onto envelope codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger := applog.FromContext(r.Context())

	switch {
	case errors.Is(err, services.ErrUnknownCategory),
		errors.Is(err, services.ErrShortQuery),
		isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
	case strings.Contains(err.Error(), "malformed"):
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
	case strings.Contains(err.Error(), "not found"):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Action failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrEmptyDescription, core.ErrInvalidKind, core.ErrInvalidStatus,
		core.ErrInvalidAmount, core.ErrInvalidInstallment, core.ErrMissingDate,
		auth.ErrBadCredentials,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return strings.Contains(err.Error(), "validation failed") ||
		strings.Contains(err.Error(), "too long")
}

func kindFromRequest(req ActionRequest) core.Kind {
	k := strings.ToLower(req.Filters["kind"])
	if k == "" {
		k = strings.ToLower(payloadString(req.Payload["kind"]))
	}
	return core.Kind(k)
}
