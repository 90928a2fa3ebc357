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

// TestWriteHandler writes a synthetic log entry and beacon record, for
// verifying store connectivity end to end without involving the chat
// platform. Unlike the webhook, it reports store failures to the caller.
type TestWriteHandler struct {
	store  repository.Store
	logger beacon.Logger
}

// NewTestWriteHandler creates a new test-write handler.
func NewTestWriteHandler(store repository.Store, logger beacon.Logger) *TestWriteHandler {
	return &TestWriteHandler{store: store, logger: logger}
}

// ServeHTTP handles any method on /debug/test-write.
func (h *TestWriteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now()
	nowMs := now.UnixMilli()

	last := entity.LastMessage{
		From:       "test-endpoint",
		Body:       "hello",
		ReceivedAt: nowMs,
	}
	record := entity.BeaconRecord{
		On:          true,
		ExpiresAt:   now.Add(15 * time.Second).UnixMilli(),
		LastMessage: last,
	}
	logEntry := entity.LogEntry{
		From:       last.From,
		Body:       last.Body,
		ReceivedAt: nowMs,
	}

	_, pushErr := h.store.Push(ctx, repository.PathLogs, logEntry)
	setErr := h.store.Set(ctx, repository.PathBeacon, record)

	w.Header().Set("Content-Type", "application/json")
	if err := errors.Join(pushErr, setErr); err != nil {
		h.logger.Error("test write failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{"ok": true})
}
