/*
Package api
File: handlers.go
Description:
    HTTP handlers for the REST API.
    Action endpoints decode a JSON body into an Intent, run it through
    the engine and answer with the intent's value plus the fresh view.
    Engine errors become status codes:

    - insufficient resources  402
    - precondition not met    403
    - unknown entity          404
    - malformed request       400
    - anything else           500
*/

package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/everforgeworks/study-ascension/internal/game"
)

// Config tunes the transport layer.
type Config struct {
	RatePerSecond float64 // intents per second per client address
	Burst         int
}

// Server exposes one engine over HTTP and WebSocket.
type Server struct {
	engine   *game.Engine
	hub      *Hub
	limiters *ipLimiters
	logger   *slog.Logger
}

type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
	Intent string `json:"intent,omitempty"`
}

// NewServer wires the engine and hub together.
func NewServer(engine *game.Engine, hub *Hub, cfg Config, logger *slog.Logger) *Server {
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 40
	}
	return &Server{
		engine:   engine,
		hub:      hub,
		limiters: newIPLimiters(cfg.RatePerSecond, cfg.Burst),
		logger:   logger,
	}
}

// Routes returns the full handler tree, rate limited and CORS enabled.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Read endpoints
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.HandleFunc("GET /api/save", s.handleExport)

	// Action endpoints
	mux.HandleFunc("POST /api/click", s.handleIntent(IntentClick))
	mux.HandleFunc("POST /api/buy", s.handleIntent(IntentBuy))
	mux.HandleFunc("POST /api/automation/toggle", s.handleIntent(IntentToggleAutomation))
	mux.HandleFunc("POST /api/features/unlock", s.handleIntent(IntentUnlockFeature))
	mux.HandleFunc("POST /api/skills/level", s.handleIntent(IntentLevelSkill))
	mux.HandleFunc("POST /api/skills/reset", s.handleIntent(IntentResetSkills))
	mux.HandleFunc("POST /api/reset", s.handleIntent(IntentReset))
	mux.HandleFunc("POST /api/quests/claim", s.handleIntent(IntentClaimQuest))
	mux.HandleFunc("POST /api/settings", s.handleIntent(IntentSettings))

	// Real-time endpoint
	mux.HandleFunc("GET /ws", s.serveWs)

	return corsMiddleware(s.limiters.middleware(mux))
}

// handleState returns the current client view.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.View())
}

// handleCatalog returns the active balance data.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Catalog())
}

// handleExport downloads the current save blob.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	blob, err := s.engine.Snapshot()
	if err != nil {
		s.logger.Error("export save", "err", err)
		http.Error(w, "Save unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="save.json"`)
	w.Write(blob)
}

// handleIntent builds the handler for one action endpoint. An empty body
// is allowed for intents that take no arguments.
func (s *Server) handleIntent(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var in Intent
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
			return
		}
		in.Type = kind

		res, err := s.apply(r.Context(), in)
		if err != nil {
			status := statusFor(err)
			if status == http.StatusInternalServerError {
				s.logger.Error("intent failed", "intent", kind, "err", err)
			}
			http.Error(w, err.Error(), status)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// corsMiddleware lets a browser client served from another origin talk to the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
