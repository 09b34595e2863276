package state

import (
	"context"
	"testing"
	"time"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/metric"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/aggregation"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/exemplar"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/metricdata"
)

type fakeReader struct {
	lastCollect time.Time
}

func (r *fakeReader) LastCollectTime() time.Time { return r.lastCollect }

func TestRegistryFirstRegistrationWins(t *testing.T) {
	reg := NewRegistry(nil)
	reader := &fakeReader{}
	d1 := metric.Descriptor{Name: "requests", Unit: "1"}
	d2 := metric.Descriptor{Name: "REQUESTS", Unit: "ms"} // same identity, conflicting unit

	s1 := newCounterStorage()
	s2 := newCounterStorage()
	reg.Register(d1, reader, s1)
	reg.Register(d2, reader, s2) // should log a warning, not replace the descriptor

	storages := reg.StoragesForReader(reader)
	if len(storages) != 1 {
		t.Fatalf("got %d registered instruments, want 1 (deduped by identity)", len(storages))
	}
	if storages[0].Descriptor.Unit != "1" {
		t.Fatalf("Unit = %q, want the first registration's unit %q", storages[0].Descriptor.Unit, "1")
	}
	// Second registration's storage must still be the one associated with
	// this reader going forward (storages map keyed by reader, last writer wins).
	if storages[0].Storage != s2 {
		t.Fatalf("expected the later storage to win for this reader")
	}
}

func newCounterStorage() *SyncStorage[int64] {
	return NewSyncStorage[int64](SyncStorageOptions[int64]{
		Aggregator:     aggregation.NewSum[int64](true),
		Temporality:    metricdata.CumulativeTemporality,
		ExemplarFilter: exemplar.AlwaysOffFilter(),
		MaxCardinality: 10,
		IsMonotonicSum: true,
	})
}

func TestSharedStateCollectAllRunsCallbacksAndPopulatesMetadata(t *testing.T) {
	reg := NewRegistry(nil)
	reader := &fakeReader{lastCollect: time.Now().Add(-time.Minute)}
	shared := NewSharedState(reg)

	storage := newCounterStorage()
	reg.Register(metric.Descriptor{Name: "calls", Description: "total calls", Unit: "1"}, reader, storage)

	var callbackRan bool
	shared.RegisterCallback(CallbackRegistration{
		Callback: func(ctx context.Context, obs metric.Observer) error {
			callbackRan = true
			return nil
		},
	})

	storage.Record(context.Background(), 5, []attribute.KeyValue{attribute.String("k", "v")})

	metrics := shared.CollectAll(context.Background(), reader, time.Now().Add(-time.Hour), time.Now(), nil)
	if !callbackRan {
		t.Fatalf("registered callback did not run during CollectAll")
	}
	if len(metrics) != 1 {
		t.Fatalf("got %d metrics, want 1", len(metrics))
	}
	if metrics[0].Name != "calls" || metrics[0].Description != "total calls" || metrics[0].Unit != "1" {
		t.Fatalf("metric metadata not populated from descriptor: %+v", metrics[0])
	}
}

func TestSharedStateUnregisterCallbackStopsInvocation(t *testing.T) {
	reg := NewRegistry(nil)
	shared := NewSharedState(reg)
	reader := &fakeReader{}

	calls := 0
	idx := shared.RegisterCallback(CallbackRegistration{
		Callback: func(ctx context.Context, obs metric.Observer) error {
			calls++
			return nil
		},
	})
	shared.CollectAll(context.Background(), reader, time.Now(), time.Now(), nil)
	shared.UnregisterCallback(idx)
	shared.CollectAll(context.Background(), reader, time.Now(), time.Now(), nil)

	if calls != 1 {
		t.Fatalf("callback ran %d times, want exactly 1 (before unregister)", calls)
	}
}

func TestCollectAllDropsEmptyAggregations(t *testing.T) {
	reg := NewRegistry(nil)
	reader := &fakeReader{}
	shared := NewSharedState(reg)

	storage := newCounterStorage() // never recorded into
	reg.Register(metric.Descriptor{Name: "unused"}, reader, storage)

	metrics := shared.CollectAll(context.Background(), reader, time.Now(), time.Now(), nil)
	if len(metrics) != 0 {
		t.Fatalf("got %d metrics, want 0 (empty aggregation should be dropped)", len(metrics))
	}
}
