package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestBlockProcessDuration(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.BlockProcessDuration.Record(ctx, 0.123)
	m.BlockProcessDuration.Record(ctx, 0.456)

	rm := collect(t, reader)
	met := findMetric(rm, "kgsink.block.process.duration")
	if met == nil {
		t.Fatal("metric not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("metric is not a histogram")
	}
	if len(hist.DataPoints) == 0 {
		t.Fatal("no data points")
	}
	if got := hist.DataPoints[0].Count; got != 2 {
		t.Errorf("sample count = %d, want 2", got)
	}
}

func TestEventsProcessedCounter(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordEvent(ctx, "triple_created", "ok")
	m.RecordEvent(ctx, "triple_created", "ok")
	m.RecordEvent(ctx, "triple_created", "error")

	rm := collect(t, reader)
	met := findMetric(rm, "kgsink.events.processed")
	if met == nil {
		t.Fatal("metric not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("metric is not a sum")
	}

	for _, dp := range sum.DataPoints {
		for _, kv := range dp.Attributes.ToSlice() {
			if string(kv.Key) == "outcome" && kv.Value.AsString() == "ok" {
				if dp.Value != 2 {
					t.Errorf("counter value = %d, want 2", dp.Value)
				}
				return
			}
		}
	}
	t.Error("data point with outcome=ok not found")
}

func TestStoreErrorsCounter(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordStoreError(ctx, "upsert_triple")

	rm := collect(t, reader)
	met := findMetric(rm, "kgsink.store.errors")
	if met == nil {
		t.Fatal("metric not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("metric is not a sum")
	}
	if len(sum.DataPoints) == 0 || sum.DataPoints[0].Value != 1 {
		t.Fatal("expected one increment")
	}
}

func TestContentStoreFetchCounter(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordContentStoreFetch(ctx, "hit")
	m.RecordContentStoreFetch(ctx, "hit")
	m.RecordContentStoreFetch(ctx, "error")

	rm := collect(t, reader)
	met := findMetric(rm, "kgsink.contentstore.fetches")
	if met == nil {
		t.Fatal("metric not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("metric is not a sum")
	}
	for _, dp := range sum.DataPoints {
		for _, kv := range dp.Attributes.ToSlice() {
			if string(kv.Key) == "outcome" && kv.Value.AsString() == "hit" {
				if dp.Value != 2 {
					t.Errorf("counter value = %d, want 2", dp.Value)
				}
				return
			}
		}
	}
	t.Error("data point with outcome=hit not found")
}

func TestSetHeadBlock(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.SetHeadBlock(ctx, 1000, 1700000000, 1700000010)

	rm := collect(t, reader)

	numMet := findMetric(rm, "kgsink.head.block.number")
	if numMet == nil {
		t.Fatal("head block number metric not found")
	}
	gauge, ok := numMet.Data.(metricdata.Gauge[int64])
	if !ok {
		t.Fatal("head block number metric is not a gauge")
	}
	if len(gauge.DataPoints) == 0 || gauge.DataPoints[0].Value != 1000 {
		t.Fatal("unexpected head block number value")
	}

	driftMet := findMetric(rm, "kgsink.head.block.drift.seconds")
	if driftMet == nil {
		t.Fatal("drift metric not found")
	}
	driftGauge, ok := driftMet.Data.(metricdata.Gauge[float64])
	if !ok {
		t.Fatal("drift metric is not a gauge")
	}
	if len(driftGauge.DataPoints) == 0 || driftGauge.DataPoints[0].Value != 10 {
		t.Fatal("unexpected drift value")
	}
}

func TestHTTPRequestDuration(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.HTTPRequestDuration.Record(ctx, 0.05,
		metric.WithAttributes(
			attribute.String("method", "GET"),
			attribute.String("path", "/healthz"),
		),
	)

	rm := collect(t, reader)
	met := findMetric(rm, "kgsink.http.request.duration")
	if met == nil {
		t.Fatal("metric not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("metric is not a histogram")
	}
	if len(hist.DataPoints) == 0 {
		t.Fatal("no data points")
	}
	if got := hist.DataPoints[0].Count; got != 1 {
		t.Errorf("sample count = %d, want 1", got)
	}
}

func TestDefaultMetrics_ReturnsSameInstance(t *testing.T) {
	// DefaultMetrics uses the global OTel provider so we just check
	// that repeated calls return the same pointer.
	a := DefaultMetrics()
	b := DefaultMetrics()
	if a != b {
		t.Error("DefaultMetrics returned different pointers")
	}
}
