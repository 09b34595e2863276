package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/aggregation"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/exemplar"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/metricdata"
)

func newTestSyncStorage(t *testing.T, temporality metricdata.Temporality, maxCardinality int) *SyncStorage[int64] {
	t.Helper()
	return NewSyncStorage[int64](SyncStorageOptions[int64]{
		Aggregator:     aggregation.NewSum[int64](true),
		Temporality:    temporality,
		ExemplarFilter: exemplar.AlwaysOffFilter(),
		MaxCardinality: maxCardinality,
		IsMonotonicSum: true,
	})
}

func TestSyncStorageRecordAndCollectCumulative(t *testing.T) {
	s := newTestSyncStorage(t, metricdata.CumulativeTemporality, 10)
	ctx := context.Background()

	s.Record(ctx, 3, []attribute.KeyValue{attribute.String("route", "/a")})
	s.Record(ctx, 4, []attribute.KeyValue{attribute.String("route", "/a")})
	s.Record(ctx, 5, []attribute.KeyValue{attribute.String("route", "/b")})

	agg := s.Collect(time.Now(), time.Now())
	if agg.Sum == nil {
		t.Fatalf("expected a Sum aggregation")
	}
	if len(agg.Sum.DataPoints) != 2 {
		t.Fatalf("got %d data points, want 2", len(agg.Sum.DataPoints))
	}

	// Cumulative: a second collect without new records must still report
	// the same totals (no reset).
	agg2 := s.Collect(time.Now(), time.Now())
	if len(agg2.Sum.DataPoints) != 2 {
		t.Fatalf("second collect dropped data points under cumulative temporality")
	}
	var total float64
	for _, dp := range agg2.Sum.DataPoints {
		total += dp.Value
	}
	if total != 12 {
		t.Fatalf("total = %v, want 12 (cumulative values must persist)", total)
	}
}

func TestSyncStorageDeltaResetsAfterCollect(t *testing.T) {
	s := newTestSyncStorage(t, metricdata.DeltaTemporality, 10)
	ctx := context.Background()

	s.Record(ctx, 7, []attribute.KeyValue{attribute.String("route", "/a")})
	agg := s.Collect(time.Now(), time.Now())
	if len(agg.Sum.DataPoints) != 1 || agg.Sum.DataPoints[0].Value != 7 {
		t.Fatalf("first delta collect = %+v, want one point of value 7", agg.Sum.DataPoints)
	}

	agg2 := s.Collect(time.Now(), time.Now())
	if len(agg2.Sum.DataPoints) != 0 {
		t.Fatalf("delta collect with no new records should be empty, got %+v", agg2.Sum.DataPoints)
	}
}

func TestSyncStorageCardinalityOverflow(t *testing.T) {
	s := newTestSyncStorage(t, metricdata.CumulativeTemporality, 3) // effective cap = 2
	ctx := context.Background()

	s.Record(ctx, 1, []attribute.KeyValue{attribute.String("id", "a")})
	s.Record(ctx, 1, []attribute.KeyValue{attribute.String("id", "b")})
	s.Record(ctx, 1, []attribute.KeyValue{attribute.String("id", "c")}) // overflow
	s.Record(ctx, 1, []attribute.KeyValue{attribute.String("id", "d")}) // also overflow, same series

	agg := s.Collect(time.Now(), time.Now())
	if len(agg.Sum.DataPoints) != 3 {
		t.Fatalf("got %d data points, want 3 (2 distinct + 1 overflow series)", len(agg.Sum.DataPoints))
	}

	var overflowCount int
	for _, dp := range agg.Sum.DataPoints {
		for _, kv := range dp.Attributes.ToSlice() {
			if kv.Key == "otel.metric.overflow" {
				overflowCount++
			}
		}
	}
	if overflowCount != 1 {
		t.Fatalf("expected exactly one overflow data point, found %d", overflowCount)
	}
}

func TestSyncStorageDropsNaN(t *testing.T) {
	s := NewSyncStorage[float64](SyncStorageOptions[float64]{
		Aggregator:     aggregation.NewSum[float64](false),
		Temporality:    metricdata.CumulativeTemporality,
		ExemplarFilter: exemplar.AlwaysOffFilter(),
		MaxCardinality: 10,
	})
	ctx := context.Background()
	s.Record(ctx, 1.0, nil)
	s.Record(ctx, 0.0/zero(), nil) // NaN, must be dropped silently

	agg := s.Collect(time.Now(), time.Now())
	if len(agg.Sum.DataPoints) != 1 || agg.Sum.DataPoints[0].Value != 1.0 {
		t.Fatalf("NaN measurement was not dropped: %+v", agg.Sum.DataPoints)
	}
}

// TestSyncStorageConcurrentRecordSameAttributesIsRaceFree pins the
// resolve-record-offer sequence being fully serialized under one lock:
// many goroutines recording against the same attribute set, with exemplar
// sampling forced on so every call touches the shared reservoir, must not
// be flagged by the race detector and must total correctly.
func TestSyncStorageConcurrentRecordSameAttributesIsRaceFree(t *testing.T) {
	s := NewSyncStorage[int64](SyncStorageOptions[int64]{
		Aggregator:     aggregation.NewSum[int64](true),
		Temporality:    metricdata.CumulativeTemporality,
		ExemplarFilter: exemplar.AlwaysOnFilter(),
		MaxCardinality: 10,
		IsMonotonicSum: true,
	})
	ctx := context.Background()

	const goroutines = 50
	const perGoroutine = 20
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				s.Record(ctx, 1, []attribute.KeyValue{attribute.String("route", "/a")})
			}
		}()
	}
	wg.Wait()

	agg := s.Collect(time.Now(), time.Now())
	if len(agg.Sum.DataPoints) != 1 || agg.Sum.DataPoints[0].Value != float64(goroutines*perGoroutine) {
		t.Fatalf("got %+v, want a single data point summing to %d", agg.Sum.DataPoints, goroutines*perGoroutine)
	}
}

func zero() float64 { return 0 }
