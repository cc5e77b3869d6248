package handlers

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	BaseHandler
	db *sql.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *sql.DB, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		db:          db,
	}
}

// Health handles GET /health
// @Summary Health check
// @Description Report service liveness and database connectivity
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string "Database unreachable"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.Logger.Error("health check database ping failed", zap.Error(err))
		h.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "degraded",
			"database": "down",
		})
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": "up",
	})
}
