// Package api exposes the console over a small JSON HTTP surface for the
// management UI.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"tablero/internal/console"
	"tablero/internal/schedule"
	"tablero/internal/store"
)

// Rules carries the per-deployment validation policy.
type Rules struct {
	MinDuration    int
	MaxSlotsPerDay int
}

// Server serves the console API.
type Server struct {
	console  *console.Console
	store    *store.Store
	rules    Rules
	messages schedule.Messages
	apiKey   string
	logger   *zerolog.Logger
	server   *http.Server
}

// NewServer wires the routes. An empty apiKey disables auth (local use).
func NewServer(addr, apiKey string, c *console.Console, st *store.Store, rules Rules, logger *zerolog.Logger) *Server {
	s := &Server{
		console:  c,
		store:    st,
		rules:    rules,
		messages: schedule.DefaultMessages(),
		apiKey:   apiKey,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/branches", s.requireKey(s.handleBranches))
	mux.HandleFunc("/api/branches/enable", s.requireKey(s.handleEnable))
	mux.HandleFunc("/api/branches/disable-all", s.requireKey(s.handleDisableAll))
	mux.HandleFunc("/api/branches/export", s.requireKey(s.handleExport))
	mux.HandleFunc("/api/branches/", s.requireKey(s.handleBranchSettings))

	s.server = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Handler returns the routed handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// ListenAndServe runs the server until it is shut down.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) requireKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("X-API-Key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
