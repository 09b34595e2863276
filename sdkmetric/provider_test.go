package sdkmetric

import (
	"context"
	"testing"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/metric"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/metricdata"
)

func TestMeterProviderCounterEndToEnd(t *testing.T) {
	reader := NewManualReader()
	provider := NewMeterProvider(WithReader(reader))
	meter := provider.Meter("test")

	counter, err := meter.Int64Counter("requests", metric.WithDescription("total requests"))
	if err != nil {
		t.Fatalf("Int64Counter: %v", err)
	}

	ctx := context.Background()
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("route", "/a")))
	counter.Add(ctx, 2, metric.WithAttributes(attribute.String("route", "/a")))
	counter.Add(ctx, 5, metric.WithAttributes(attribute.String("route", "/b")))

	rm, err := reader.Collect(ctx)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(rm.ScopeMetrics) != 1 || len(rm.ScopeMetrics[0].Metrics) != 1 {
		t.Fatalf("unexpected shape: %+v", rm)
	}
	m := rm.ScopeMetrics[0].Metrics[0]
	if m.Name != "requests" || m.Description != "total requests" {
		t.Fatalf("descriptor not propagated: %+v", m)
	}
	if m.Data.Sum == nil || len(m.Data.Sum.DataPoints) != 2 {
		t.Fatalf("expected 2 data points, got %+v", m.Data)
	}
}

func TestMeterProviderObservableCallback(t *testing.T) {
	reader := NewManualReader()
	provider := NewMeterProvider(WithReader(reader))
	meter := provider.Meter("test")

	gauge, err := meter.Int64ObservableGauge("queue.depth")
	if err != nil {
		t.Fatalf("Int64ObservableGauge: %v", err)
	}

	_, err = meter.RegisterCallback(func(ctx context.Context, obs metric.Observer) error {
		obs.ObserveInt64(gauge, 7)
		return nil
	}, gauge)
	if err != nil {
		t.Fatalf("RegisterCallback: %v", err)
	}

	rm, err := reader.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(rm.ScopeMetrics) != 1 || len(rm.ScopeMetrics[0].Metrics) != 1 {
		t.Fatalf("unexpected shape: %+v", rm)
	}
	m := rm.ScopeMetrics[0].Metrics[0]
	if m.Data.Gauge == nil || len(m.Data.Gauge.DataPoints) != 1 || m.Data.Gauge.DataPoints[0].Value != 7 {
		t.Fatalf("got %+v, want one gauge point of 7", m.Data)
	}
}

func TestMeterProviderUpDownCounterEndToEnd(t *testing.T) {
	reader := NewManualReader()
	provider := NewMeterProvider(WithReader(reader))
	meter := provider.Meter("test")

	counter, err := meter.Int64UpDownCounter("connections")
	if err != nil {
		t.Fatalf("Int64UpDownCounter: %v", err)
	}

	ctx := context.Background()
	counter.Add(ctx, 5)
	counter.Add(ctx, -2)

	rm, err := reader.Collect(ctx)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	m := rm.ScopeMetrics[0].Metrics[0]
	if m.Data.Sum == nil || len(m.Data.Sum.DataPoints) != 1 {
		t.Fatalf("expected 1 data point, got %+v", m.Data)
	}
	if got := m.Data.Sum.DataPoints[0].Value; got != 3 {
		t.Fatalf("got %v, want 3 (a non-monotonic counter must accept negative deltas)", got)
	}
	if m.Data.Sum.IsMonotonic {
		t.Fatalf("Int64UpDownCounter must produce a non-monotonic Sum")
	}
}

func TestMeterProviderFloat64ObservableCounterEndToEnd(t *testing.T) {
	reader := NewManualReader()
	provider := NewMeterProvider(WithReader(reader))
	meter := provider.Meter("test")

	counter, err := meter.Float64ObservableCounter("bytes.sent")
	if err != nil {
		t.Fatalf("Float64ObservableCounter: %v", err)
	}

	_, err = meter.RegisterCallback(func(ctx context.Context, obs metric.Observer) error {
		obs.ObserveFloat64(counter, 12.5)
		return nil
	}, counter)
	if err != nil {
		t.Fatalf("RegisterCallback: %v", err)
	}

	rm, err := reader.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	m := rm.ScopeMetrics[0].Metrics[0]
	if m.Data.Sum == nil || len(m.Data.Sum.DataPoints) != 1 || m.Data.Sum.DataPoints[0].Value != 12.5 {
		t.Fatalf("got %+v, want one sum point of 12.5", m.Data)
	}
}

// TestDeltaCollectStartEqualsPriorCollectEnd pins spec.md §8 property 7's
// "for DELTA, point N's start equals point N-1's end" half: the reader's
// LastCollectTime (and therefore the next collection's DELTA start) must
// be exactly the timestamp used as this collection's end, not a second,
// independently-taken time.Now() a few nanoseconds later.
func TestDeltaCollectStartEqualsPriorCollectEnd(t *testing.T) {
	reader := NewManualReader(WithTemporalitySelector(func(metric.InstrumentKind) metricdata.Temporality {
		return metricdata.DeltaTemporality
	}))
	provider := NewMeterProvider(WithReader(reader))
	meter := provider.Meter("test")

	counter, err := meter.Int64Counter("requests")
	if err != nil {
		t.Fatalf("Int64Counter: %v", err)
	}

	ctx := context.Background()
	counter.Add(ctx, 10)
	rm1, err := reader.Collect(ctx)
	if err != nil {
		t.Fatalf("first Collect: %v", err)
	}
	end1 := rm1.ScopeMetrics[0].Metrics[0].Data.Sum.DataPoints[0].Time

	counter.Add(ctx, 5)
	rm2, err := reader.Collect(ctx)
	if err != nil {
		t.Fatalf("second Collect: %v", err)
	}
	start2 := rm2.ScopeMetrics[0].Metrics[0].Data.Sum.DataPoints[0].StartTime

	if !start2.Equal(end1) {
		t.Fatalf("second DELTA point's start (%v) must equal first point's end (%v) exactly", start2, end1)
	}
}

func TestMeterReturnsCachedInstanceForSameScope(t *testing.T) {
	provider := NewMeterProvider()
	m1 := provider.Meter("scope-a")
	m2 := provider.Meter("scope-a")
	if m1 != m2 {
		t.Fatalf("expected the same Meter instance for repeated calls with the same scope")
	}
}
