package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/presencelab/beacon-bridge/internal/adapter/dto"
	"github.com/presencelab/beacon-bridge/internal/domain/entity"
	"github.com/presencelab/beacon-bridge/internal/domain/repository"
	"github.com/presencelab/beacon-bridge/internal/usecase/beacon"
)

// echoHeaders are the request headers worth capturing when inspecting what
// the chat platform actually sends.
var echoHeaders = []string{
	"Content-Type",
	"User-Agent",
	secretTokenHeader,
}

// EchoHandler records any inbound request as a breadcrumb so an operator can
// see the platform's real payload shape. It always acknowledges, even when
// the breadcrumb write fails.
type EchoHandler struct {
	store  repository.Store
	logger beacon.Logger
}

// NewEchoHandler creates a new echo handler.
func NewEchoHandler(store repository.Store, logger beacon.Logger) *EchoHandler {
	return &EchoHandler{store: store, logger: logger}
}

// ServeHTTP handles any method on /debug/echo.
func (h *EchoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(io.LimitReader(r.Body, maxUpdateBytes))

	headers := make(map[string]string, len(echoHeaders))
	for _, name := range echoHeaders {
		if v := r.Header.Get(name); v != "" {
			headers[name] = v
		}
	}

	crumb := entity.LastEcho{
		At:      time.Now().UnixMilli(),
		Method:  r.Method,
		URL:     r.URL.String(),
		Headers: headers,
		RawLen:  len(body),
	}
	if msg := dto.NormalizeUpdate(body); msg != nil {
		crumb.HasParsed = true
		crumb.Text = msg.Text
	}

	if err := h.store.Set(r.Context(), repository.PathDebugLastEcho, crumb); err != nil {
		h.logger.Debug("echo breadcrumb write failed", "error", err)
	}

	writeOK(w)
}
