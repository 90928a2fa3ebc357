package beacon

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/presencelab/beacon-bridge/internal/adapter/dto"
	"github.com/presencelab/beacon-bridge/internal/domain/entity"
	"github.com/presencelab/beacon-bridge/internal/domain/repository"
	"github.com/presencelab/beacon-bridge/internal/infrastructure/observability"
)

// IngestResult reports what a single inbound update resulted in.
type IngestResult struct {
	// Actionable is false when the payload carried no recognized message
	// variant; nothing was persisted in that case.
	Actionable bool

	// Command is the interpreted command kind: "on", "off" or "implicit".
	Command string

	// Record is the beacon state that was computed for this update.
	Record entity.BeaconRecord

	// LogKey is the push key of the appended log entry, when the append
	// succeeded.
	LogKey string

	BeaconWritten bool
	LogWritten    bool
}

// IngestUpdateUseCase turns a raw webhook payload into persisted beacon
// state: normalize, interpret, then write the log entry and the beacon
// record.
//
// Execute is designed to run after the webhook response has already been
// sent, so it never needs to succeed: every failure degrades to a diagnostic
// breadcrumb and the returned error exists for logging only.
type IngestUpdateUseCase struct {
	store           repository.Store
	defaultDuration func() time.Duration
	logger          Logger
	metrics         *observability.Metrics

	// now is swappable for tests.
	now func() time.Time
}

// NewIngestUpdateUseCase creates the use case. defaultDuration is consulted
// per update so config reloads take effect without restarting.
func NewIngestUpdateUseCase(
	store repository.Store,
	defaultDuration func() time.Duration,
	logger Logger,
	metrics *observability.Metrics,
) *IngestUpdateUseCase {
	return &IngestUpdateUseCase{
		store:           store,
		defaultDuration: defaultDuration,
		logger:          logger,
		metrics:         metrics,
		now:             time.Now,
	}
}

// Execute processes one raw update. The returned error summarizes persistence
// failures for the caller's log; it must not be surfaced to the webhook
// sender, whose response has already gone out.
func (uc *IngestUpdateUseCase) Execute(ctx context.Context, raw []byte) (*IngestResult, error) {
	now := uc.now()
	result := &IngestResult{}

	if len(raw) == 0 {
		uc.recordBreadcrumb(ctx, repository.PathDebugLastError, entity.LastError{
			At:     now.UnixMilli(),
			Reason: "empty body",
		})
		uc.metrics.RecordUpdateDiscarded(ctx, "empty")
		return result, nil
	}

	if !json.Valid(raw) {
		uc.recordBreadcrumb(ctx, repository.PathDebugLastError, entity.LastError{
			At:     now.UnixMilli(),
			Reason: "invalid json",
			RawLen: len(raw),
		})
		uc.metrics.RecordUpdateDiscarded(ctx, "malformed")
		return result, nil
	}

	msg := dto.NormalizeUpdate(raw)
	uc.recordBreadcrumb(ctx, repository.PathDebugLastUpdate, entity.LastUpdate{
		At:         now.UnixMilli(),
		HasMessage: msg != nil,
		Keys:       dto.TopLevelKeys(raw),
	})
	if msg == nil {
		// Valid JSON, no recognized message variant. Not an error.
		uc.metrics.RecordUpdateDiscarded(ctx, "unrecognized")
		uc.logger.Debug("update carried no actionable message", "rawLen", len(raw))
		return result, nil
	}

	record := Interpret(msg, now, uc.defaultDuration())
	result.Actionable = true
	result.Command = commandKind(msg.Text)
	result.Record = record
	uc.metrics.RecordUpdateProcessed(ctx, result.Command)

	logEntry := entity.LogEntry{
		From:       msg.From,
		Body:       record.LastMessage.Body,
		ChatID:     msg.ChatID,
		ReceivedAt: now.UnixMilli(),
	}

	// Both writes are issued together and independently: a failed log append
	// must not skip the beacon overwrite, and vice versa. There is no
	// transaction and no retry; the store's last-write-wins ordering is the
	// only consistency guarantee.
	var wg sync.WaitGroup
	var logErr, beaconErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		start := time.Now()
		key, err := uc.store.Push(ctx, repository.PathLogs, logEntry)
		uc.metrics.RecordStoreWrite(ctx, "push", time.Since(start), err == nil)
		if err != nil {
			logErr = err
			return
		}
		result.LogKey = key
		result.LogWritten = true
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		err := uc.store.Set(ctx, repository.PathBeacon, record)
		uc.metrics.RecordStoreWrite(ctx, "set", time.Since(start), err == nil)
		if err != nil {
			beaconErr = err
			return
		}
		result.BeaconWritten = true
	}()
	wg.Wait()

	if err := errors.Join(logErr, beaconErr); err != nil {
		uc.RecordException(ctx, err.Error())
		return result, err
	}
	return result, nil
}

// RecordHit writes the heartbeat breadcrumb for an inbound delivery.
func (uc *IngestUpdateUseCase) RecordHit(ctx context.Context, route, method string) {
	uc.recordBreadcrumb(ctx, repository.PathDebugLastHit, entity.LastHit{
		At:     uc.now().UnixMilli(),
		Route:  route,
		Method: method,
	})
}

// RecordException writes the last-exception breadcrumb. Like every
// breadcrumb it is best-effort: a failure to record it is swallowed.
func (uc *IngestUpdateUseCase) RecordException(ctx context.Context, errText string) {
	uc.recordBreadcrumb(ctx, repository.PathDebugLastException, entity.LastException{
		At:    uc.now().UnixMilli(),
		Error: errText,
	})
}

func (uc *IngestUpdateUseCase) recordBreadcrumb(ctx context.Context, path string, value any) {
	if err := uc.store.Set(ctx, path, value); err != nil {
		uc.metrics.RecordBreadcrumbFailure(ctx)
		uc.logger.Debug("breadcrumb write failed", "path", path, "error", err)
	}
}

// commandKind classifies message text the same way Interpret branches on it.
func commandKind(text string) string {
	switch {
	case offPattern.MatchString(text):
		return "off"
	case onPattern.MatchString(text):
		return "on"
	default:
		return "implicit"
	}
}
