// Package api provides the HTTP API for browsing stored simulation runs.
// GET endpoints are public (read-only observation).
// Mutating endpoints require a bearer token.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/agro-ecosim/internal/ecosystem"
	"github.com/talgya/agro-ecosim/internal/persistence"
	"github.com/talgya/agro-ecosim/internal/runner"
	"github.com/talgya/agro-ecosim/internal/scenario"
)

const (
	maxSimulateYears = 200
	maxBodyBytes     = 64 << 10
	defaultRunLimit  = 50
)

// Server serves stored runs over HTTP.
type Server struct {
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for mutating endpoints. Empty = disabled.

	// Simulate requests allowed per client per hour. Zero uses the default.
	SimulateLimit int
}

// Handler builds the request router.
func (s *Server) Handler() http.Handler {
	limit := s.SimulateLimit
	if limit <= 0 {
		limit = 60
	}
	simulateLimiter := NewRateLimiter(limit, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/scenarios", s.handleScenarios)
	mux.HandleFunc("/api/v1/params", s.handleParams)
	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	mux.HandleFunc("/api/v1/runs/", s.adminOnly(s.handleRunRoutes))

	// On-demand simulation (saving the result needs the admin token).
	mux.HandleFunc("/api/v1/simulate", RateLimitMiddleware(simulateLimiter, s.handleSimulate))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine and returns the server
// so the caller can shut it down.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set AGROSIM_CORS_ORIGINS to a comma-separated list of extra origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("AGROSIM_CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return s.AdminKey != "" && strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires bearer token auth on mutating requests.
// GET requests pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no AGROSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	runs, err := s.DB.ListRuns(1)
	if err != nil {
		serverError(w, err)
		return
	}
	lastBatch, _ := s.DB.GetMeta("last_batch")

	status := map[string]any{
		"name":          "agrosim",
		"seasons":       len(ecosystem.Seasons),
		"default_years": runner.DefaultYears,
		"has_runs":      len(runs) > 0,
		"last_batch":    lastBatch,
		"admin_enabled": s.AdminKey != "",
	}
	writeJSON(w, status)
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, scenario.Builtin())
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, ecosystem.DefaultParams)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := defaultRunLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.DB.ListRuns(limit)
	if err != nil {
		serverError(w, err)
		return
	}
	if runs == nil {
		runs = []persistence.Run{}
	}
	writeJSON(w, runs)
}

// handleRunRoutes dispatches /api/v1/runs/:id[/history|/annual|/events|/series/:field].
func (s *Server) handleRunRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/runs/"), "/")
	parts := strings.Split(path, "/")
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if r.Method == http.MethodDelete && len(parts) == 1 {
		if err := s.DB.DeleteRun(id); err != nil {
			dbError(w, err)
			return
		}
		slog.Info("run deleted", "run", id)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch {
	case len(parts) == 1:
		s.handleRunDetail(w, id)
	case len(parts) == 2 && parts[1] == "history":
		s.handleHistory(w, id, false)
	case len(parts) == 2 && parts[1] == "annual":
		s.handleHistory(w, id, true)
	case len(parts) == 2 && parts[1] == "events":
		s.handleEvents(w, id)
	case len(parts) == 3 && parts[1] == "series":
		s.handleSeries(w, id, parts[2])
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleRunDetail(w http.ResponseWriter, id string) {
	run, err := s.DB.GetRun(id)
	if err != nil {
		dbError(w, err)
		return
	}
	sc, err := run.Scenario()
	if err != nil {
		serverError(w, err)
		return
	}
	eval, err := s.DB.LoadEvaluation(id)
	if err != nil {
		dbError(w, err)
		return
	}

	writeJSON(w, map[string]any{
		"run":        run,
		"scenario":   sc,
		"evaluation": eval,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, id string, annual bool) {
	h, err := s.DB.LoadHistory(id)
	if err != nil {
		dbError(w, err)
		return
	}
	if annual {
		h = h.Annual()
	}
	writeJSON(w, h)
}

func (s *Server) handleEvents(w http.ResponseWriter, id string) {
	if _, err := s.DB.GetRun(id); err != nil {
		dbError(w, err)
		return
	}
	events, err := s.DB.LoadEvents(id)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, events)
}

func (s *Server) handleSeries(w http.ResponseWriter, id, name string) {
	field, ok := ecosystem.ParseField(name)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown field %q", name), http.StatusBadRequest)
		return
	}
	h, err := s.DB.LoadHistory(id)
	if err != nil {
		dbError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"field":  field.String(),
		"values": h.Series(field),
	})
}

// handleSimulate runs a scenario posted as a JSON or YAML object and returns
// its evaluation and history. ?save=true stores it and needs the admin token.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	years := runner.DefaultYears
	if v := r.URL.Query().Get("years"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxSimulateYears {
			http.Error(w, fmt.Sprintf("years must be between 1 and %d", maxSimulateYears), http.StatusBadRequest)
			return
		}
		years = n
	}
	save := r.URL.Query().Get("save") == "true"
	if save && !s.checkBearerToken(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	sc, err := scenario.ParseRecord(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := runner.RunOne(r.Context(), sc, runner.Options{Years: years})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out := map[string]any{
		"scenario":   res.Scenario,
		"years":      res.Years,
		"evaluation": res.Evaluation,
		"history":    res.History,
	}
	if save {
		id, err := s.DB.SaveRun(res)
		if err != nil {
			serverError(w, err)
			return
		}
		out["run_id"] = id
	}
	writeJSON(w, out)
}

func dbError(w http.ResponseWriter, err error) {
	if errors.Is(err, persistence.ErrRunNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	serverError(w, err)
}

func serverError(w http.ResponseWriter, err error) {
	slog.Error("request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
