// Package router assembles the gateway's HTTP surface.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinicflow/internal/board"
	httpmiddleware "github.com/wolfman30/clinicflow/internal/http/middleware"
	"github.com/wolfman30/clinicflow/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	BoardHandler       *board.Handler
	BoardAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Board endpoints behind role-bearing JWT auth
	r.Group(func(authed chi.Router) {
		authed.Use(board.Auth(cfg.BoardAuthSecret))
		authed.Mount("/", cfg.BoardHandler.Routes())
	})

	return r
}
