package handler

import (
	"net/http"

	"notes-sync-server/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	Notes     *NoteHandler
	Import    *ImportHandler
	WebSocket *WebSocketHandler
	Health    *HealthHandler
	Metrics   http.Handler

	RateLimitPerMinute int
	AllowedOrigins     string
	AllowedMethods     string
	AllowedHeaders     string
	Logger             logrus.FieldLogger
}

func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware(cfg.Logger))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, cfg.AllowedMethods, cfg.AllowedHeaders))

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RateLimit(cfg.RateLimitPerMinute, cfg.Logger))

	api.HandleFunc("/notes", cfg.Notes.List).Methods("GET", "OPTIONS")
	api.HandleFunc("/notes/refresh", cfg.Notes.Refresh).Methods("POST", "OPTIONS")
	api.HandleFunc("/notes/{id}", cfg.Notes.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/notes/{id}", cfg.Notes.UpdateTitle).Methods("PUT", "OPTIONS")
	api.HandleFunc("/notes/{id}", cfg.Notes.Delete).Methods("DELETE", "OPTIONS")

	api.HandleFunc("/import", cfg.Import.Import).Methods("POST", "OPTIONS")
	api.HandleFunc("/import/status", cfg.Import.Status).Methods("GET", "OPTIONS")

	if cfg.WebSocket != nil {
		r.HandleFunc("/ws", cfg.WebSocket.HandleConnection)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics).Methods("GET")
	}
	r.HandleFunc("/health", cfg.Health.Health).Methods("GET")

	return r
}
