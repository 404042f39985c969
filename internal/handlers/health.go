package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// PingFunc adapts a plain ping function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

type HealthHandler struct {
	checks    map[string]Pinger
	startTime time.Time
	version   string
}

func NewHealthHandler(checks map[string]Pinger, version string) *HealthHandler {
	return &HealthHandler{checks: checks, startTime: time.Now(), version: version}
}

// Handle pings every dependency; any failure turns the response into a 503.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make(map[string]string, len(names))
	status := "healthy"
	for _, name := range names {
		if err := h.checks[name].PingContext(ctx); err != nil {
			deps[name] = "unhealthy: " + err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "healthy"
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	jsonResponse(w, code, HealthResponse{
		Status:       status,
		Version:      h.version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}
