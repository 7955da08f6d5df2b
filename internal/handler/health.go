package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"inkstand/internal/httputil"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and database reachability
type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health check: database unreachable", "error", err)
		httputil.RespondError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	httputil.RespondOK(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
}
