package aggregation

import "testing"

func TestSumAggregatorAccumulatesAndResets(t *testing.T) {
	agg := NewSum[int64](true)
	h := agg.NewHandle().(SumHandle[int64])
	h.Record(3)
	h.Record(4)

	if got := h.Snapshot(false); got != 7 {
		t.Fatalf("Snapshot(false) = %d, want 7", got)
	}
	if got := h.Snapshot(true); got != 7 {
		t.Fatalf("Snapshot(true) = %d, want 7", got)
	}
	if got := h.Snapshot(false); got != 0 {
		t.Fatalf("Snapshot after reset = %d, want 0", got)
	}
}

func TestMonotonicSumRejectsNegative(t *testing.T) {
	agg := NewSum[int64](true)
	h := agg.NewHandle().(SumHandle[int64])
	h.Record(5)
	h.Record(-100)

	if got := h.Snapshot(false); got != 5 {
		t.Fatalf("negative increment was not rejected: got %d, want 5", got)
	}
}

func TestLastValueKeepsMostRecent(t *testing.T) {
	agg := NewLastValue[float64]()
	h := agg.NewHandle().(LastValueHandle[float64])

	if _, set := h.Snapshot(); set {
		t.Fatalf("expected unset before any Record")
	}
	h.Record(1.5)
	h.Record(2.5)
	v, set := h.Snapshot()
	if !set || v != 2.5 {
		t.Fatalf("Snapshot() = (%v, %v), want (2.5, true)", v, set)
	}
}

func TestHistogramBucketsInclusiveUpperBound(t *testing.T) {
	agg := NewHistogram[float64]([]float64{10, 20}, true)
	h := agg.NewHandle().(HistogramHandle[float64])

	h.Record(10) // boundary value belongs to the lower, inclusive-upper bucket
	h.Record(10.0001)
	h.Record(25)

	snap := h.Snapshot(false)
	if snap.Count != 3 {
		t.Fatalf("Count = %d, want 3", snap.Count)
	}
	want := []uint64{1, 1, 1}
	if len(snap.BucketCounts) != len(want) {
		t.Fatalf("BucketCounts = %v, want length %d", snap.BucketCounts, len(want))
	}
	for i, w := range want {
		if snap.BucketCounts[i] != w {
			t.Fatalf("BucketCounts[%d] = %d, want %d (full: %v)", i, snap.BucketCounts[i], w, snap.BucketCounts)
		}
	}
	if snap.Min != 10 || snap.Max != 25 {
		t.Fatalf("Min/Max = %v/%v, want 10/25", snap.Min, snap.Max)
	}
}

func TestHistogramResetClearsBuckets(t *testing.T) {
	agg := NewHistogram[int64]([]float64{10}, false)
	h := agg.NewHandle().(HistogramHandle[int64])
	h.Record(5)
	h.Record(15)

	snap := h.Snapshot(true)
	if snap.Count != 2 {
		t.Fatalf("Count = %d, want 2", snap.Count)
	}
	snap = h.Snapshot(false)
	if snap.Count != 0 {
		t.Fatalf("Count after reset = %d, want 0", snap.Count)
	}
}

func TestDropAggregatorDiscardsEverything(t *testing.T) {
	agg := NewDrop[int64]()
	if agg.Kind() != KindDrop {
		t.Fatalf("Kind() = %v, want KindDrop", agg.Kind())
	}
	h := agg.NewHandle()
	h.Record(42) // must not panic; nothing to assert on a drop handle
}
