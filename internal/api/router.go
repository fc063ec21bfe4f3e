package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/scorepad/internal/api/handler"
	"github.com/mcoot/scorepad/internal/api/middleware"
	"github.com/mcoot/scorepad/internal/services/play"
	"github.com/mcoot/scorepad/internal/services/repository"
	"github.com/mcoot/scorepad/internal/services/transfer"
	logmw "github.com/mcoot/scorepad/internal/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Repository     *repository.Repository
	PlayController *play.Controller
	Transfer       *transfer.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	gameHandler := handler.NewGameHandler(cfg.Repository)
	sessionHandler := handler.NewSessionHandler(cfg.Repository)
	playHandler := handler.NewPlayHandler(cfg.PlayController)
	transferHandler := handler.NewTransferHandler(cfg.Transfer)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(logmw.Logging(cfg.Logger))

	// Game routes
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", gameHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/games/{id}", gameHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/games/{id}/sessions", gameHandler.Sessions).Methods(http.MethodGet)

	// Stored session routes
	api.HandleFunc("/sessions", sessionHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", sessionHandler.Delete).Methods(http.MethodDelete)

	// Active session routes
	api.HandleFunc("/games/{id}/play", playHandler.Begin).Methods(http.MethodPost)
	api.HandleFunc("/play", playHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/play/{sid}", playHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/play/{sid}", playHandler.Cancel).Methods(http.MethodDelete)
	api.HandleFunc("/play/{sid}/scores", playHandler.SetScore).Methods(http.MethodPut)
	api.HandleFunc("/play/{sid}/rounds", playHandler.AddRound).Methods(http.MethodPost)
	api.HandleFunc("/play/{sid}/finish", playHandler.Finish).Methods(http.MethodPost)

	// Backup routes
	api.HandleFunc("/export", transferHandler.Export).Methods(http.MethodGet)
	api.HandleFunc("/import", transferHandler.Import).Methods(http.MethodPost)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
