package handlers

import (
	"context"
	"net/http"

	"mandi-backend/internal/health"
	"mandi-backend/pkg/utils"
)

type HealthChecker interface {
	Check(ctx context.Context) health.HealthStatus
}

type HealthHandler struct {
	checker HealthChecker
}

func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// BasicHealth - for Kubernetes liveness probe
func (h *HealthHandler) BasicHealth(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadinessHealth - for Kubernetes readiness probe
func (h *HealthHandler) ReadinessHealth(w http.ResponseWriter, r *http.Request) {
	status := h.checker.Check(r.Context())
	if status.Status == "unhealthy" {
		utils.JSON(w, http.StatusServiceUnavailable, status)
		return
	}
	utils.JSON(w, http.StatusOK, status)
}
