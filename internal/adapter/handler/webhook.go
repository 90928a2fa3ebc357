package handler

import (
	"context"
	"crypto/hmac"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/presencelab/beacon-bridge/internal/usecase/beacon"
)

// secretTokenHeader is the header the chat platform echoes the configured
// shared secret in.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// maxUpdateBytes bounds how much of an inbound payload we buffer. Real
// updates are a few KB.
const maxUpdateBytes = 1 << 20

// TelegramWebhookHandler handles inbound chat-platform webhook deliveries.
//
// Its contract to the sender is "always acknowledge": the 200 response is
// written before any processing happens, so the sender never retries a
// delivery because our store was slow or down. Everything after the
// acknowledgment runs detached and degrades to diagnostics.
type TelegramWebhookHandler struct {
	ingest *beacon.IngestUpdateUseCase
	secret func() string
	logger beacon.Logger

	wg sync.WaitGroup
}

// NewTelegramWebhookHandler creates a new handler. secret is consulted per
// request so config reloads take effect immediately; it may return "" to
// disable the check.
func NewTelegramWebhookHandler(ingest *beacon.IngestUpdateUseCase, secret func() string, logger beacon.Logger) *TelegramWebhookHandler {
	return &TelegramWebhookHandler{
		ingest: ingest,
		secret: secret,
		logger: logger,
	}
}

// ServeHTTP handles POST /webhook/telegram.
func (h *TelegramWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Probes and misdirected requests get a neutral success, never an error.
	if r.Method != http.MethodPost {
		writeOK(w)
		return
	}

	if s := h.secret(); s != "" {
		if !hmac.Equal([]byte(r.Header.Get(secretTokenHeader)), []byte(s)) {
			h.logger.Warn("webhook secret mismatch", "remote_addr", r.RemoteAddr)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	// A read error still gets an acknowledgment: from here on the sender
	// must observe success no matter what.
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUpdateBytes))
	if err != nil {
		h.logger.Warn("failed to read webhook body", "error", err)
		body = nil
	}

	// Acknowledge before any persistence work. Nothing below may write to w.
	writeOK(w)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		// Detached from the request context on purpose: the response is
		// already out, so processing must not be cancelled by the sender
		// hanging up.
		ctx := context.Background()
		defer func() {
			if p := recover(); p != nil {
				h.logger.Error("panic while processing update", "panic", p)
				h.ingest.RecordException(ctx, fmt.Sprint(p))
			}
		}()

		h.ingest.RecordHit(ctx, r.URL.Path, r.Method)

		result, err := h.ingest.Execute(ctx, body)
		if err != nil {
			h.logger.Warn("update processing failed", "error", err)
			return
		}
		if result.Actionable {
			h.logger.Info("update processed",
				"command", result.Command,
				"on", result.Record.On,
				"expiresAt", result.Record.ExpiresAt,
				"logKey", result.LogKey,
			)
		}
	}()
}

// Wait blocks until all in-flight background processing finishes. Used by
// tests and shutdown.
func (h *TelegramWebhookHandler) Wait() {
	h.wg.Wait()
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
