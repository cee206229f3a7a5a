// Package observe provides application-wide observability primitives for the
// knowledge graph sink: OpenTelemetry metrics, distributed tracing, structured
// logging, and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all sink metrics.
const meterName = "github.com/kgraph/sink"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Block processing ---

	// BlockProcessDuration tracks the wall-clock time spent processing a
	// single block, from event decode through store commit.
	BlockProcessDuration metric.Float64Histogram

	// HeadBlockNumber is the block number most recently committed.
	HeadBlockNumber metric.Int64Gauge

	// HeadBlockTimestamp is the unix timestamp of the most recently
	// committed block, as reported by the block stream.
	HeadBlockTimestamp metric.Int64Gauge

	// HeadBlockDriftSeconds is wall-clock time minus HeadBlockTimestamp,
	// i.e. how far behind the chain head the sink is running.
	HeadBlockDriftSeconds metric.Float64Gauge

	// EventsProcessed counts decoded sink events by event kind and outcome.
	// Use with attributes: attribute.String("kind", ...), attribute.String("outcome", ...)
	EventsProcessed metric.Int64Counter

	// StoreErrors counts failed store operations by operation name.
	StoreErrors metric.Int64Counter

	// CursorPersistDuration tracks latency of persisting the resume cursor.
	CursorPersistDuration metric.Float64Histogram

	// ReconnectAttempts counts block-stream reconnect attempts.
	ReconnectAttempts metric.Int64Counter

	// ContentStoreFetches counts IPFS content-store fetches by outcome.
	ContentStoreFetches metric.Int64Counter

	// ContentStoreFetchDuration tracks content-store fetch latency.
	ContentStoreFetchDuration metric.Float64Histogram

	// SemanticSearchDuration tracks pgvector similarity query latency.
	SemanticSearchDuration metric.Float64Histogram

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for block-processing and query latencies.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.BlockProcessDuration, err = m.Float64Histogram("kgsink.block.process.duration",
		metric.WithDescription("Wall-clock time spent processing a single block."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HeadBlockNumber, err = m.Int64Gauge("kgsink.head.block.number",
		metric.WithDescription("Block number most recently committed."),
	); err != nil {
		return nil, err
	}
	if met.HeadBlockTimestamp, err = m.Int64Gauge("kgsink.head.block.timestamp",
		metric.WithDescription("Unix timestamp of the most recently committed block."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if met.HeadBlockDriftSeconds, err = m.Float64Gauge("kgsink.head.block.drift.seconds",
		metric.WithDescription("Wall-clock time minus the head block timestamp."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if met.EventsProcessed, err = m.Int64Counter("kgsink.events.processed",
		metric.WithDescription("Total sink events processed, by kind and outcome."),
	); err != nil {
		return nil, err
	}
	if met.StoreErrors, err = m.Int64Counter("kgsink.store.errors",
		metric.WithDescription("Total failed store operations, by operation."),
	); err != nil {
		return nil, err
	}
	if met.CursorPersistDuration, err = m.Float64Histogram("kgsink.cursor.persist.duration",
		metric.WithDescription("Latency of persisting the resume cursor."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ReconnectAttempts, err = m.Int64Counter("kgsink.blockstream.reconnect_attempts",
		metric.WithDescription("Total block-stream reconnect attempts."),
	); err != nil {
		return nil, err
	}
	if met.ContentStoreFetches, err = m.Int64Counter("kgsink.contentstore.fetches",
		metric.WithDescription("Total content-store fetches, by outcome."),
	); err != nil {
		return nil, err
	}
	if met.ContentStoreFetchDuration, err = m.Float64Histogram("kgsink.contentstore.fetch.duration",
		metric.WithDescription("Latency of content-store fetches."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SemanticSearchDuration, err = m.Float64Histogram("kgsink.query.semantic_search.duration",
		metric.WithDescription("Latency of pgvector similarity search queries."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("kgsink.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordEvent is a convenience method that records an EventsProcessed
// increment with the standard attribute set.
func (m *Metrics) RecordEvent(ctx context.Context, kind, outcome string) {
	m.EventsProcessed.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordStoreError is a convenience method that records a StoreErrors
// increment for the given operation.
func (m *Metrics) RecordStoreError(ctx context.Context, operation string) {
	m.StoreErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("operation", operation)),
	)
}

// RecordContentStoreFetch is a convenience method that records a
// ContentStoreFetches increment with the given outcome (the sink's
// content fetch records "ok" or "error").
func (m *Metrics) RecordContentStoreFetch(ctx context.Context, outcome string) {
	m.ContentStoreFetches.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}

// SetHeadBlock updates the head block number and timestamp gauges and
// recomputes drift against wall-clock now (in seconds).
func (m *Metrics) SetHeadBlock(ctx context.Context, number int64, timestampUnix int64, nowUnix int64) {
	m.HeadBlockNumber.Record(ctx, number)
	m.HeadBlockTimestamp.Record(ctx, timestampUnix)
	m.HeadBlockDriftSeconds.Record(ctx, float64(nowUnix-timestampUnix))
}
