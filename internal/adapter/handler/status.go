package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/presencelab/beacon-bridge/internal/domain/entity"
	"github.com/presencelab/beacon-bridge/internal/domain/repository"
	"github.com/presencelab/beacon-bridge/internal/usecase/beacon"
)

// BeaconStatusHandler serves the current beacon state to pollers. Nothing
// clears the record at expiry time, so the effective flag is computed here
// by comparing the stored expiry against the clock.
type BeaconStatusHandler struct {
	store  repository.StoreReader
	logger beacon.Logger
}

// NewBeaconStatusHandler creates a new status handler.
func NewBeaconStatusHandler(store repository.StoreReader, logger beacon.Logger) *BeaconStatusHandler {
	return &BeaconStatusHandler{store: store, logger: logger}
}

// ServeHTTP handles GET /beacon.
func (h *BeaconStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var record entity.BeaconRecord
	err := h.store.Get(r.Context(), repository.PathBeacon, &record)
	if errors.Is(err, repository.ErrNotFound) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"on": false})
		return
	}
	if err != nil {
		h.logger.Error("failed to read beacon", "error", err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"on":          record.EffectiveOn(time.Now()),
		"expiresAt":   record.ExpiresAt,
		"lastMessage": record.LastMessage,
	})
}
