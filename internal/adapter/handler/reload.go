package handler

import (
	"errors"
	"net/http"

	"github.com/presencelab/beacon-bridge/internal/infrastructure/config"
	"github.com/presencelab/beacon-bridge/internal/usecase/beacon"
)

// ReloadHandler handles configuration reload requests.
type ReloadHandler struct {
	manager *config.Manager
	logger  beacon.Logger
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(m *config.Manager, logger beacon.Logger) *ReloadHandler {
	return &ReloadHandler{
		manager: m,
		logger:  logger,
	}
}

// ServeHTTP handles POST /-/reload requests.
func (h *ReloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.manager.TryReload(); err != nil {
		if errors.Is(err, config.ErrRequiresRestart) {
			// Static config change, acknowledged but not applied.
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Configuration change requires restart\n"))
			return
		}

		h.logger.Error("manual reload failed", "error", err)
		http.Error(w, "Configuration reload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Configuration reloaded successfully\n"))
}
