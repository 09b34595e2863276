package state

import (
	"context"
	"testing"
	"time"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/aggregation"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/exemplar"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/metricdata"
)

func TestAsyncStorageCollectResetsEveryTime(t *testing.T) {
	s := NewAsyncStorage[int64](AsyncStorageOptions[int64]{
		Aggregator:     aggregation.NewLastValue[int64](),
		Temporality:    metricdata.CumulativeTemporality,
		ExemplarFilter: exemplar.AlwaysOffFilter(),
		MaxCardinality: 10,
	})
	ctx := context.Background()

	s.Observe(ctx, 42, []attribute.KeyValue{attribute.String("cpu", "0")})
	agg := s.Collect(time.Now(), time.Now())
	if len(agg.Gauge.DataPoints) != 1 || agg.Gauge.DataPoints[0].Value != 42 {
		t.Fatalf("got %+v, want one point of value 42", agg.Gauge.DataPoints)
	}

	// No Observe happened between collects (simulating a callback that
	// stopped reporting this series): the next collect must come back
	// empty, since async storage holds no state across collects.
	agg2 := s.Collect(time.Now(), time.Now())
	if len(agg2.Gauge.DataPoints) != 0 {
		t.Fatalf("expected empty gauge after a collect with no new observations, got %+v", agg2.Gauge.DataPoints)
	}
}

func TestAsyncStorageOverflow(t *testing.T) {
	s := NewAsyncStorage[int64](AsyncStorageOptions[int64]{
		Aggregator:     aggregation.NewSum[int64](true),
		Temporality:    metricdata.CumulativeTemporality,
		ExemplarFilter: exemplar.AlwaysOffFilter(),
		MaxCardinality: 2, // effective cap = 1
		IsMonotonicSum: true,
	})
	ctx := context.Background()
	s.Observe(ctx, 1, []attribute.KeyValue{attribute.String("id", "a")})
	s.Observe(ctx, 1, []attribute.KeyValue{attribute.String("id", "b")})

	agg := s.Collect(time.Now(), time.Now())
	if len(agg.Sum.DataPoints) != 2 {
		t.Fatalf("got %d points, want 2 (1 distinct + 1 overflow)", len(agg.Sum.DataPoints))
	}
}
