package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/taskpulse-api/internal/api/shared"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// OnlineCounter reports how many recipients hold a live connection.
type OnlineCounter interface {
	Count() int
}

// HealthResponse is the body of the health probe.
type HealthResponse struct {
	Status          string `json:"status"`
	Database        string `json:"database"`
	LiveConnections int    `json:"live_connections"`
}

// HealthHandler reports service health.
type HealthHandler struct {
	db     Pinger
	online OnlineCounter
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler. db and online may be nil.
func NewHealthHandler(db Pinger, online OnlineCounter, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, online: online, logger: logger.With("component", "health")}
}

// ServeHTTP answers 200 when the database is reachable and 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Database: "unconfigured"}
	status := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.WarnContext(r.Context(), "database ping failed", "error", err)
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}
	if h.online != nil {
		resp.LiveConnections = h.online.Count()
	}

	shared.RespondWithJSON(w, r, status, resp)
}
