// Package http serves the action-dispatch API: every operation goes
// through POST /api (or GET /api for linkable reports) as a single
// {action, ...} envelope.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"caixa/internal/auth"
	applog "caixa/internal/log"
	"caixa/internal/services"
	"caixa/internal/sheets"
)

const sessionSweepInterval = time.Hour

type Server struct {
	httpServer *http.Server
	ledger     *services.LedgerService
	search     *services.SearchService
	auth       *auth.Manager
	logger     *applog.Logger

	stopSweep chan struct{}
}

func NewServer(addr string, store sheets.Store, authMgr *auth.Manager, logger *applog.Logger) *Server {
	s := &Server{
		ledger:    services.NewLedgerService(store),
		search:    services.NewSearchService(store),
		auth:      authMgr,
		logger:    logger.WithComponent(applog.ComponentHTTP),
		stopSweep: make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(applog.Middleware(s.logger))
	r.Use(s.recoverer)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Post("/api", s.handleAction)
	r.Get("/api", s.handleAction)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	go s.sweepSessions()
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopSweep)
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) sweepSessions() {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopSweep:
			return
		case <-ticker.C:
			if removed := s.auth.CleanupExpired(); removed > 0 {
				s.logger.Info("Expired sessions removed", "count", removed)
			}
		}
	}
}

// recoverer turns panics into the same JSON envelope every other error
// uses; the default chi recoverer answers text/plain.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.ErrorContext(r.Context(), "Panic in handler",
					"panic", rec,
					applog.FieldPath, r.URL.Path)
				writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "HTTP request completed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, ww.Status(),
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldRequestID, chimiddleware.GetReqID(r.Context()),
			applog.FieldClientIP, r.RemoteAddr)
	})
}
