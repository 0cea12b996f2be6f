package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/feedback-api/internal/http/middleware"
	"github.com/wolfman30/feedback-api/internal/messages"
	"github.com/wolfman30/feedback-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	MessagesHandler *messages.Handler
	HealthHandler   http.Handler
	MetricsHandler  http.Handler

	CORSAllowedOrigins     []string
	EnableHTTPSRedirection bool
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Probes are served over plain HTTP even when redirection is on.
	if cfg.HealthHandler != nil {
		r.Method(http.MethodGet, "/health", cfg.HealthHandler)
	}
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	if cfg.MessagesHandler != nil {
		r.Group(func(api chi.Router) {
			if cfg.EnableHTTPSRedirection {
				api.Use(httpmiddleware.HTTPSRedirect)
			}
			if len(cfg.CORSAllowedOrigins) > 0 {
				api.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
			}
			api.Route("/api", cfg.MessagesHandler.Routes)
		})
	}

	return r
}
