package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics. A nil *Metrics is valid and records
// nothing, so components can run without telemetry in tests.
type Metrics struct {
	meter metric.Meter

	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPRequestsActive  metric.Int64UpDownCounter

	// Update ingestion metrics
	UpdatesProcessedTotal metric.Int64Counter
	UpdatesDiscardedTotal metric.Int64Counter

	// Store metrics
	StoreWritesTotal   metric.Int64Counter
	StoreWriteDuration metric.Float64Histogram

	// Diagnostics
	BreadcrumbFailuresTotal metric.Int64Counter
}

// NewMetrics creates and registers all application metrics.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}

	var err error

	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http.server.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http_requests_total: %w", err)
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http_request_duration: %w", err)
	}

	m.HTTPRequestsActive, err = meter.Int64UpDownCounter(
		"http.server.requests.active",
		metric.WithDescription("Number of active HTTP requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http_requests_active: %w", err)
	}

	m.UpdatesProcessedTotal, err = meter.Int64Counter(
		"updates.processed.total",
		metric.WithDescription("Total number of actionable updates processed"),
		metric.WithUnit("{updates}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating updates_processed_total: %w", err)
	}

	m.UpdatesDiscardedTotal, err = meter.Int64Counter(
		"updates.discarded.total",
		metric.WithDescription("Total number of updates discarded as not actionable"),
		metric.WithUnit("{updates}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating updates_discarded_total: %w", err)
	}

	m.StoreWritesTotal, err = meter.Int64Counter(
		"store.writes.total",
		metric.WithDescription("Total number of key-path store writes"),
		metric.WithUnit("{writes}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating store_writes_total: %w", err)
	}

	m.StoreWriteDuration, err = meter.Float64Histogram(
		"store.write.duration",
		metric.WithDescription("Key-path store write duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating store_write_duration: %w", err)
	}

	m.BreadcrumbFailuresTotal, err = meter.Int64Counter(
		"breadcrumbs.failures.total",
		metric.WithDescription("Total number of diagnostic breadcrumb writes that failed"),
		metric.WithUnit("{writes}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating breadcrumb_failures_total: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
	}

	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordUpdateProcessed records an actionable update, labeled by the command
// it resolved to ("on", "off", "implicit").
func (m *Metrics) RecordUpdateProcessed(ctx context.Context, command string) {
	if m == nil {
		return
	}
	m.UpdatesProcessedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", command),
	))
}

// RecordUpdateDiscarded records a non-actionable update, labeled by reason.
func (m *Metrics) RecordUpdateDiscarded(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.UpdatesDiscardedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordStoreWrite records a store write, labeled by operation ("set",
// "push") and outcome.
func (m *Metrics) RecordStoreWrite(ctx context.Context, operation string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	}

	m.StoreWritesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.StoreWriteDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordBreadcrumbFailure records a diagnostic write that failed and was
// swallowed.
func (m *Metrics) RecordBreadcrumbFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.BreadcrumbFailuresTotal.Add(ctx, 1)
}
