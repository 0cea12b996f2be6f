package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/wolfman30/feedback-api/internal/storage"
	"github.com/wolfman30/feedback-api/pkg/logging"
)

const healthTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports database reachability and the applied schema version.
type HealthHandler struct {
	db     pinger
	schema *sql.DB
	logger *logging.Logger
}

// NewHealthHandler creates a health handler. schema may be nil, in which case
// the schema version is not reported.
func NewHealthHandler(db pinger, schema *sql.DB, logger *logging.Logger) *HealthHandler {
	if db == nil {
		panic("handlers: database pinger required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &HealthHandler{db: db, schema: schema, logger: logger}
}

type healthResponse struct {
	Status string `json:"status"`
	*storage.SchemaState
}

// ServeHTTP handles GET /health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health check: database unreachable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
		return
	}

	resp := healthResponse{Status: "ok"}
	if h.schema != nil {
		state, err := storage.SchemaVersion(ctx, h.schema)
		if err != nil {
			h.logger.Warn("health check: schema version unavailable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
			return
		}
		resp.SchemaState = &state
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
