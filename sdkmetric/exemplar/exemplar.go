// Package exemplar implements ExemplarFilter selection and the fixed-size
// Reservoir that aggregator handles offer raw measurements to, grounded on
// go.opentelemetry.io/otel/sdk/metric/internal/exemplar (retrieved for this
// spec as other_examples/grafana-k6__reservoir.go and __storage.go) and
// reworked under this module's own measurement/storage naming.
package exemplar

import (
	"context"
	"math/rand"
	"time"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/metricdata"
	"github.com/YaoYingLong/eleven-otelcore/trace"
)

// Filter decides whether a measurement is even offered to a Reservoir
// (spec.md §4.2 "Exemplars" subsection).
type Filter interface {
	ShouldSample(ctx context.Context) bool
}

type alwaysOnFilter struct{}

func (alwaysOnFilter) ShouldSample(context.Context) bool { return true }

// AlwaysOnFilter offers every measurement.
func AlwaysOnFilter() Filter { return alwaysOnFilter{} }

type alwaysOffFilter struct{}

func (alwaysOffFilter) ShouldSample(context.Context) bool { return false }

// AlwaysOffFilter offers no measurements, disabling exemplars entirely.
func AlwaysOffFilter() Filter { return alwaysOffFilter{} }

type traceBasedFilter struct{}

func (traceBasedFilter) ShouldSample(ctx context.Context) bool {
	return trace.SpanContextFromContext(ctx).IsSampled()
}

// TraceBasedFilter offers only measurements made within a sampled trace,
// the SDK's documented default.
func TraceBasedFilter() Filter { return traceBasedFilter{} }

// Reservoir holds the sampled exemplars for one aggregator handle.
type Reservoir[N int64 | float64] interface {
	// Offer records a measurement as a candidate exemplar. ctx carries
	// whatever span was active when the measurement was made.
	Offer(ctx context.Context, t time.Time, val N, droppedAttrs []attribute.KeyValue)
	// Collect copies the currently held exemplars into dest.
	Collect(dest *[]metricdata.Exemplar)
}

type measurement[N int64 | float64] struct {
	attrs       []attribute.KeyValue
	time        time.Time
	value       N
	spanContext trace.SpanContext
	valid       bool
}

func newMeasurement[N int64 | float64](ctx context.Context, t time.Time, v N, attrs []attribute.KeyValue) measurement[N] {
	return measurement[N]{attrs: attrs, time: t, value: v, spanContext: trace.SpanContextFromContext(ctx), valid: true}
}

func (m measurement[N]) toExemplar() metricdata.Exemplar {
	e := metricdata.Exemplar{
		Time:               m.time,
		Value:              float64(m.value),
		FilteredAttributes: m.attrs,
	}
	if m.spanContext.IsValid() {
		e.TraceID = m.spanContext.TraceID()
		e.SpanID = m.spanContext.SpanID()
	}
	return e
}

// fixedSizeReservoir implements a simple uniform random reservoir of size n
// (Algorithm R), the default exemplar reservoir for Sum/Gauge aggregations.
type fixedSizeReservoir[N int64 | float64] struct {
	store []measurement[N]
	count int64
}

// NewFixedSizeReservoir returns a Reservoir retaining up to n measurements,
// chosen uniformly at random across every Offer call since the last Collect
// reset.
func NewFixedSizeReservoir[N int64 | float64](n int) Reservoir[N] {
	if n < 1 {
		n = 1
	}
	return &fixedSizeReservoir[N]{store: make([]measurement[N], n)}
}

func (r *fixedSizeReservoir[N]) Offer(ctx context.Context, t time.Time, val N, attrs []attribute.KeyValue) {
	idx := r.count
	r.count++
	if int(idx) < len(r.store) {
		r.store[idx] = newMeasurement(ctx, t, val, attrs)
		return
	}
	j := rand.Int63n(r.count)
	if int(j) < len(r.store) {
		r.store[j] = newMeasurement(ctx, t, val, attrs)
	}
}

func (r *fixedSizeReservoir[N]) Collect(dest *[]metricdata.Exemplar) {
	*dest = (*dest)[:0]
	for _, m := range r.store {
		if !m.valid {
			continue
		}
		*dest = append(*dest, m.toExemplar())
	}
	r.store = make([]measurement[N], len(r.store))
	r.count = 0
}

// histogramBucketReservoir keeps one exemplar per explicit histogram
// bucket, the default reservoir for ExplicitBucketHistogram aggregations
// (one exemplar per bucket gives a representative value across the whole
// distribution, not just whatever happened to win a uniform draw).
type histogramBucketReservoir[N int64 | float64] struct {
	bounds []float64
	store  []measurement[N]
}

// NewHistogramBucketReservoir returns a Reservoir with one slot per bucket
// implied by bounds (len(bounds)+1 buckets).
func NewHistogramBucketReservoir[N int64 | float64](bounds []float64) Reservoir[N] {
	return &histogramBucketReservoir[N]{bounds: bounds, store: make([]measurement[N], len(bounds)+1)}
}

func (r *histogramBucketReservoir[N]) Offer(ctx context.Context, t time.Time, val N, attrs []attribute.KeyValue) {
	idx := 0
	f := float64(val)
	for idx < len(r.bounds) && f > r.bounds[idx] {
		idx++
	}
	r.store[idx] = newMeasurement(ctx, t, val, attrs)
}

func (r *histogramBucketReservoir[N]) Collect(dest *[]metricdata.Exemplar) {
	*dest = (*dest)[:0]
	for _, m := range r.store {
		if !m.valid {
			continue
		}
		*dest = append(*dest, m.toExemplar())
	}
	r.store = make([]measurement[N], len(r.store))
}
