package rest

import (
	"context"
	"net/http"
	"product-filter-service/internal/contextkeys"
	"product-filter-service/internal/core/port"
	"sort"
	"time"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	res := HealthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			contextkeys.LoggerFromContext(ctx).Warn("Health check failed", port.Fields{"check": name, "error": err.Error()})
			res.Status = "degraded"
			res.Checks[name] = "down"
			continue
		}
		res.Checks[name] = "up"
	}

	status := http.StatusOK
	if res.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	RespondWithJSON(w, status, res)
}
