package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
	}
}

// ServeHTTP handles GET /health
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// ReadinessChecker reports whether a dependency is reachable.
type ReadinessChecker interface {
	Ping(ctx context.Context) error
}

// ReadyHandler handles readiness probes by pinging registered dependencies.
type ReadyHandler struct {
	checkers map[string]ReadinessChecker
}

// NewReadyHandler creates a new readiness handler.
func NewReadyHandler() *ReadyHandler {
	return &ReadyHandler{
		checkers: make(map[string]ReadinessChecker),
	}
}

// AddChecker registers a named dependency check. Not safe to call after the
// handler starts serving.
func (h *ReadyHandler) AddChecker(name string, c ReadinessChecker) {
	h.checkers[name] = c
}

// ServeHTTP handles GET /ready
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ready := true
	checks := make(map[string]any, len(h.checkers))
	for name, checker := range h.checkers {
		if err := checker.Ping(ctx); err != nil {
			ready = false
			checks[name] = map[string]any{"ready": false, "error": err.Error()}
			continue
		}
		checks[name] = map[string]any{"ready": true}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"ready":  ready,
		"checks": checks,
	})
}
