// Package state implements the per-instrument metric storages and the
// shared collection sequencing a MeterProvider drives, grounded on
// io.opentelemetry.sdk.metrics.internal.state.DefaultSynchronousMetricStorage
// and MeterSharedState (spec.md §4.2, components C3/C4/C5 — the hardest
// part of this module).
package state

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/internal"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/aggregation"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/exemplar"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/metricdata"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/view"
)

// overflowAttributeSet is the sentinel attribute set novel attribute sets
// collapse into once a storage hits its cardinality cap (spec.md §4.2).
var overflowAttributeSet = attribute.NewSet(attribute.Bool("otel.metric.overflow", true))

// Storage is the narrow, non-generic surface MeterSharedState collects
// through; each concrete SyncStorage[N]/AsyncStorage[N] satisfies it
// regardless of its value type, since metricdata's output types are
// already float64-based (spec.md's int64/float64 distinction only matters
// up to the aggregator handle; by collection time everything is a point).
type Storage interface {
	Collect(start, collectTime time.Time) metricdata.Aggregation
	Kind() aggregation.Kind
	Temporality() metricdata.Temporality
}

type syncHandleEntry[N int64 | float64] struct {
	handle    aggregation.Handle[N]
	reservoir exemplar.Reservoir[N]
	attrs     attribute.Set
}

// SyncStorage is the storage backing one (reader, view, instrument) triple
// for a synchronous instrument (Counter/UpDownCounter/Histogram).
type SyncStorage[N int64 | float64] struct {
	aggregator      aggregation.Aggregator[N]
	temporality     metricdata.Temporality
	attrsProcessor  view.AttributesProcessor
	exemplarFilter  exemplar.Filter
	newReservoir    func() exemplar.Reservoir[N]
	maxCardinality  int
	isMonotonicSum  bool
	histogramBounds []float64
	logger          *internal.ThrottlingLogger

	mu       sync.Mutex
	handles  map[attribute.Distinct]*syncHandleEntry[N]
	pool     []*syncHandleEntry[N]
	overflow *syncHandleEntry[N]
}

// SyncStorageOptions configures a new SyncStorage.
type SyncStorageOptions[N int64 | float64] struct {
	Aggregator     aggregation.Aggregator[N]
	Temporality    metricdata.Temporality
	AttrsProcessor view.AttributesProcessor
	ExemplarFilter exemplar.Filter
	NewReservoir   func() exemplar.Reservoir[N]
	MaxCardinality  int // configured cardinality limit (e.g. 2000); effective cap is this minus 1
	IsMonotonicSum  bool
	HistogramBounds []float64
	Logger          *internal.ThrottlingLogger
}

func NewSyncStorage[N int64 | float64](o SyncStorageOptions[N]) *SyncStorage[N] {
	if o.AttrsProcessor == nil {
		o.AttrsProcessor = view.IdentityAttributesProcessor()
	}
	if o.ExemplarFilter == nil {
		o.ExemplarFilter = exemplar.TraceBasedFilter()
	}
	if o.NewReservoir == nil {
		o.NewReservoir = func() exemplar.Reservoir[N] { return exemplar.NewFixedSizeReservoir[N](1) }
	}
	if o.MaxCardinality <= 0 {
		o.MaxCardinality = 2000
	}
	if o.Logger == nil {
		o.Logger = internal.NewThrottlingLogger(nil)
	}
	return &SyncStorage[N]{
		aggregator:     o.Aggregator,
		temporality:    o.Temporality,
		attrsProcessor: o.AttrsProcessor,
		exemplarFilter: o.ExemplarFilter,
		newReservoir:   o.NewReservoir,
		maxCardinality:  o.MaxCardinality,
		isMonotonicSum:  o.IsMonotonicSum,
		histogramBounds: o.HistogramBounds,
		logger:          o.Logger,
		handles:         make(map[attribute.Distinct]*syncHandleEntry[N]),
	}
}

func (s *SyncStorage[N]) Kind() aggregation.Kind { return s.aggregator.Kind() }

func (s *SyncStorage[N]) Temporality() metricdata.Temporality { return s.temporality }

// Record applies attrs through the view's AttributesProcessor, resolves
// (or creates, or overflows into) the handle for the resulting attribute
// set, and records value against it. The whole resolve-record-offer
// sequence runs under s.mu, the same shape as AsyncStorage.Observe, so a
// concurrent Collect can never observe a handle mid-update and two
// concurrent Record calls for the same attribute set can never race on
// the entry's reservoir.
func (s *SyncStorage[N]) Record(ctx context.Context, value N, attrs []attribute.KeyValue) {
	if isNaN(value) {
		s.logger.Warn("nan-measurement", "dropping NaN measurement")
		return
	}

	processed := s.attrsProcessor.Process(attrs)
	set := attribute.NewSet(processed...)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.getOrCreateLocked(set)
	entry.handle.Record(value)
	if s.exemplarFilter.ShouldSample(ctx) {
		entry.reservoir.Offer(ctx, time.Now(), value, processed)
	}
}

// getOrCreateLocked resolves (or creates, or overflows into) the handle
// for set. Callers must hold s.mu.
func (s *SyncStorage[N]) getOrCreateLocked(set attribute.Set) *syncHandleEntry[N] {
	key := set.Equivalent()

	if e, ok := s.handles[key]; ok {
		return e
	}

	effectiveCap := s.maxCardinality - 1
	if len(s.handles) >= effectiveCap {
		if s.overflow == nil {
			s.overflow = s.newEntry(overflowAttributeSet)
		}
		return s.overflow
	}

	e := s.newEntry(set)
	s.handles[key] = e
	return e
}

func (s *SyncStorage[N]) newEntry(set attribute.Set) *syncHandleEntry[N] {
	if n := len(s.pool); n > 0 {
		e := s.pool[n-1]
		s.pool = s.pool[:n-1]
		e.attrs = set
		return e
	}
	return &syncHandleEntry[N]{
		handle:    s.aggregator.NewHandle(),
		reservoir: s.newReservoir(),
		attrs:     set,
	}
}

// Collect walks every handle, producing its point and — for DELTA
// temporality — resetting and returning the handle to the free-list pool,
// trimmed to maxCardinality afterward (spec.md §4.2).
func (s *SyncStorage[N]) Collect(start, collectTime time.Time) metricdata.Aggregation {
	s.mu.Lock()
	defer s.mu.Unlock()

	reset := s.temporality == metricdata.DeltaTemporality

	entries := make([]*syncHandleEntry[N], 0, len(s.handles)+1)
	for _, e := range s.handles {
		entries = append(entries, e)
	}
	if s.overflow != nil {
		entries = append(entries, s.overflow)
	}

	agg := buildAggregation(s.aggregator.Kind(), s.isMonotonicSum, s.temporality, s.histogramBounds, start, collectTime, entries)

	if reset {
		for key, e := range s.handles {
			delete(s.handles, key)
			if len(s.pool) < s.maxCardinality {
				s.pool = append(s.pool, e)
			}
		}
		s.overflow = nil
	}

	if len(s.pool) > s.maxCardinality {
		s.pool = s.pool[:s.maxCardinality]
	}

	return agg
}

func isNaN[N int64 | float64](v N) bool {
	f, ok := any(v).(float64)
	return ok && math.IsNaN(f)
}
