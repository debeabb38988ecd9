package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"eventvote/internal/container"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{
		container: container,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()
	ctx := r.Context()

	status := "healthy"
	checks := map[string]string{}

	if err := h.container.DB.Health(ctx); err != nil {
		logger.WithError(err).Error("Database health check failed")
		checks["database"] = "down"
		status = "degraded"
	} else {
		checks["database"] = "up"
	}

	if h.container.HasRedis() {
		if err := h.container.RedisClient.Health(ctx); err != nil {
			logger.WithError(err).Warn("Redis health check failed")
			checks["redis"] = "down"
			status = "degraded"
		} else {
			checks["redis"] = "up"
		}
	} else {
		checks["redis"] = "disabled"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Service:   "eventvote",
		Checks:    checks,
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.WithError(err).Error("Failed to encode health check response")
	}
}
