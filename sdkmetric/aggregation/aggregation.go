// Package aggregation implements the per-series accumulators instrument
// handles feed measurements into: Sum, LastValue, ExplicitBucketHistogram,
// and Drop (spec.md §4.2, component C3). It is grounded on the Java SDK's
// io.opentelemetry.sdk.metrics.internal.aggregator package: one Aggregator
// per instrument that mints per-attribute-set Handles, each a self
// contained accumulator independent of the registry that owns it.
package aggregation

import (
	"math"
	"sort"
	"sync"
)

// Kind identifies which aggregation an instrument resolved to, after
// applying the instrument-kind default (spec.md §4.2) or a View override.
type Kind int

const (
	KindDrop Kind = iota
	KindSum
	KindLastValue
	KindExplicitBucketHistogram
)

// Aggregator mints Handles for one instrument. N is constrained to the two
// measurement value types the API surface supports (metric.ValueType).
type Aggregator[N int64 | float64] interface {
	Kind() Kind
	NewHandle() Handle[N]
}

// Handle accumulates measurements for one attribute set between collects.
// Record must be safe for concurrent use; Snapshot is called only from
// under the owning storage's collect lock (spec.md §4.2 collectAll).
type Handle[N int64 | float64] interface {
	Record(value N)
}

// SumHandle is satisfied by a Sum aggregator's handle; callers collecting
// output assert a Handle down to this to read its accumulated value.
type SumHandle[N int64 | float64] interface {
	Handle[N]
	Snapshot(reset bool) N
}

// LastValueHandle is satisfied by a LastValue aggregator's handle.
type LastValueHandle[N int64 | float64] interface {
	Handle[N]
	Snapshot() (N, bool)
}

// HistogramHandle is satisfied by a Histogram aggregator's handle.
type HistogramHandle[N int64 | float64] interface {
	Handle[N]
	Snapshot(reset bool) HistogramSnapshot
}

// DropAggregator discards every measurement; it exists so a View naming
// aggregation "drop" has a concrete target (spec.md §4.4).
type DropAggregator[N int64 | float64] struct{}

func NewDrop[N int64 | float64]() Aggregator[N] { return DropAggregator[N]{} }

func (DropAggregator[N]) Kind() Kind          { return KindDrop }
func (DropAggregator[N]) NewHandle() Handle[N] { return dropHandle[N]{} }

type dropHandle[N int64 | float64] struct{}

func (dropHandle[N]) Record(N) {}

// SumAggregator accumulates a running total. Monotonic sums silently
// reject negative increments, mirroring the Java SDK's Counter contract.
type SumAggregator[N int64 | float64] struct {
	Monotonic bool
}

func NewSum[N int64 | float64](monotonic bool) Aggregator[N] {
	return SumAggregator[N]{Monotonic: monotonic}
}

func (a SumAggregator[N]) Kind() Kind { return KindSum }

func (a SumAggregator[N]) NewHandle() Handle[N] {
	return &sumHandle[N]{monotonic: a.Monotonic}
}

type sumHandle[N int64 | float64] struct {
	mu        sync.Mutex
	value     N
	monotonic bool
}

func (h *sumHandle[N]) Record(v N) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.monotonic && v < 0 {
		return
	}
	h.value += v
}

// Snapshot returns the accumulated value. When reset is true (delta
// temporality) the accumulator is zeroed so the next collect starts fresh.
func (h *sumHandle[N]) Snapshot(reset bool) N {
	h.mu.Lock()
	defer h.mu.Unlock()
	v := h.value
	if reset {
		h.value = 0
	}
	return v
}

// LastValueAggregator keeps only the most recently recorded measurement,
// the aggregation an ObservableGauge resolves to by default.
type LastValueAggregator[N int64 | float64] struct{}

func NewLastValue[N int64 | float64]() Aggregator[N] { return LastValueAggregator[N]{} }

func (LastValueAggregator[N]) Kind() Kind           { return KindLastValue }
func (LastValueAggregator[N]) NewHandle() Handle[N] { return &lastValueHandle[N]{} }

type lastValueHandle[N int64 | float64] struct {
	mu    sync.Mutex
	value N
	set   bool
}

func (h *lastValueHandle[N]) Record(v N) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.value = v
	h.set = true
}

func (h *lastValueHandle[N]) Snapshot() (N, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value, h.set
}

// HistogramAggregator buckets measurements against a fixed, sorted set of
// boundaries, the default for a Histogram instrument (spec.md §4.2). The
// boundaries come from the instrument's Advice or the view's override, or
// a documented default ladder if neither is given.
type HistogramAggregator[N int64 | float64] struct {
	Bounds   []float64
	RecordMinMax bool
}

// DefaultHistogramBounds mirrors the Java SDK's default explicit bucket
// boundaries (io.opentelemetry.sdk.metrics.internal.view.ExplicitBucketHistogramUtils).
var DefaultHistogramBounds = []float64{
	0, 5, 10, 25, 50, 75, 100, 250, 500, 750,
	1000, 2500, 5000, 7500, 10000,
}

func NewHistogram[N int64 | float64](bounds []float64, recordMinMax bool) Aggregator[N] {
	b := bounds
	if len(b) == 0 {
		b = DefaultHistogramBounds
	}
	sorted := make([]float64, len(b))
	copy(sorted, b)
	sort.Float64s(sorted)
	return HistogramAggregator[N]{Bounds: sorted, RecordMinMax: recordMinMax}
}

func (a HistogramAggregator[N]) Kind() Kind { return KindExplicitBucketHistogram }

func (a HistogramAggregator[N]) NewHandle() Handle[N] {
	return &histogramHandle[N]{
		bounds:  a.Bounds,
		buckets: make([]uint64, len(a.Bounds)+1),
		min:     math.Inf(1),
		max:     math.Inf(-1),
		recordMinMax: a.RecordMinMax,
	}
}

type histogramHandle[N int64 | float64] struct {
	mu           sync.Mutex
	bounds       []float64
	buckets      []uint64
	count        uint64
	sum          float64
	min, max     float64
	recordMinMax bool
}

func (h *histogramHandle[N]) Record(v N) {
	f := float64(v)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += f
	if h.recordMinMax {
		if f < h.min {
			h.min = f
		}
		if f > h.max {
			h.max = f
		}
	}
	// Bucket i covers (bounds[i-1], bounds[i]]; SearchFloat64s returns the
	// index of the first boundary >= f, which is exactly that bucket.
	idx := sort.SearchFloat64s(h.bounds, f)
	h.buckets[idx]++
}

// HistogramSnapshot is the point-in-time state of a histogram handle.
type HistogramSnapshot struct {
	Count        uint64
	Sum          float64
	Min, Max     float64
	HasMinMax    bool
	BucketCounts []uint64
}

func (h *histogramHandle[N]) Snapshot(reset bool) HistogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	counts := make([]uint64, len(h.buckets))
	copy(counts, h.buckets)
	snap := HistogramSnapshot{
		Count:        h.count,
		Sum:          h.sum,
		Min:          h.min,
		Max:          h.max,
		HasMinMax:    h.recordMinMax && h.count > 0,
		BucketCounts: counts,
	}
	if reset {
		h.count = 0
		h.sum = 0
		h.min = math.Inf(1)
		h.max = math.Inf(-1)
		for i := range h.buckets {
			h.buckets[i] = 0
		}
	}
	return snap
}
