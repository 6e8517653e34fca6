package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/health"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/recommend"
)

// HealthHandlers provides health and readiness check endpoints for probes.
type HealthHandlers struct {
	dbChecker    health.Checker
	redisChecker health.Checker
	service      *recommend.Service
}

// HealthHandlersConfig configures the health check handlers. All checkers
// are optional.
type HealthHandlersConfig struct {
	DBChecker    health.Checker
	RedisChecker health.Checker
	Service      *recommend.Service
}

// NewHealthHandlers creates a new health check handler.
func NewHealthHandlers(config HealthHandlersConfig) *HealthHandlers {
	return &HealthHandlers{
		dbChecker:    config.DBChecker,
		redisChecker: config.RedisChecker,
		service:      config.Service,
	}
}

// HealthResponse represents the JSON response for health checks.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Health handles GET /healthz (liveness probe).
// Returns 200 if the process is alive and can serve requests.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Checks:    map[string]string{"runtime": "ok"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, r.Context(), http.StatusOK, response)
}

// Ready handles GET /health (readiness probe).
// Checks the database, Redis and the engine snapshot, returning 503 when
// any critical dependency is unavailable.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	if h.dbChecker != nil {
		if err := h.dbChecker.HealthCheck(ctx); err != nil {
			checks["database"] = "error"
			healthy = false
			slog.WarnContext(ctx, "database health check failed", "error", err)
		} else {
			checks["database"] = "ok"
		}
	}

	// Redis is a cache: degrade, don't fail readiness.
	if h.redisChecker != nil {
		if err := h.redisChecker.HealthCheck(ctx); err != nil {
			checks["redis"] = "degraded"
			slog.WarnContext(ctx, "redis health check failed", "error", err)
		} else {
			checks["redis"] = "ok"
		}
	}

	if h.service != nil {
		if h.service.Ready() {
			checks["engine"] = "ok"
		} else {
			checks["engine"] = "no_snapshot"
			healthy = false
		}
	}

	response := HealthResponse{
		Status:    "ready",
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK
	if !healthy {
		response.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, r.Context(), status, response)
}
