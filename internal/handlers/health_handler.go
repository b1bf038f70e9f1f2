package handlers

import (
	"context"
	"net/http"
	"time"

	"medicalink-backend/internal/models"

	"go.uber.org/zap"
)

// Pinger is the part of the store the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the service and its database are reachable.
type HealthHandler struct {
	db     Pinger
	logger *zap.Logger
}

func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger.Named("handlers.health")}
}

// HandleHealth handles GET /health.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := models.HealthCheck{
		Status:            "healthy",
		Timestamp:         models.FormatTimestamp(time.Now()),
		DatabaseConnected: true,
	}
	status := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("database ping failed", zap.Error(err))
		resp.Status = "degraded"
		resp.DatabaseConnected = false
		status = http.StatusServiceUnavailable
	}
	RespondWithJSON(w, status, resp)
}
