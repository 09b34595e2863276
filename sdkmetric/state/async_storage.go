package state

import (
	"context"
	"sync"
	"time"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/internal"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/aggregation"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/exemplar"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/metricdata"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/view"
)

// AsyncStorage backs an Observable instrument. Unlike SyncStorage, writes
// only ever happen inside the callback MeterSharedState invokes during a
// collect pass, so there is no handle pool to maintain across collects —
// each collection starts from a clean map (spec.md §4.2
// "AsynchronousMetricStorage").
type AsyncStorage[N int64 | float64] struct {
	aggregator     aggregation.Aggregator[N]
	temporality    metricdata.Temporality
	attrsProcessor view.AttributesProcessor
	exemplarFilter exemplar.Filter
	newReservoir   func() exemplar.Reservoir[N]
	maxCardinality int
	isMonotonicSum bool
	histogramBounds []float64
	logger         *internal.ThrottlingLogger

	mu       sync.Mutex
	handles  map[attribute.Distinct]*syncHandleEntry[N]
	overflow *syncHandleEntry[N]
}

type AsyncStorageOptions[N int64 | float64] struct {
	Aggregator      aggregation.Aggregator[N]
	Temporality     metricdata.Temporality
	AttrsProcessor  view.AttributesProcessor
	ExemplarFilter  exemplar.Filter
	NewReservoir    func() exemplar.Reservoir[N]
	MaxCardinality  int
	IsMonotonicSum  bool
	HistogramBounds []float64
	Logger          *internal.ThrottlingLogger
}

func NewAsyncStorage[N int64 | float64](o AsyncStorageOptions[N]) *AsyncStorage[N] {
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
	return &AsyncStorage[N]{
		aggregator:      o.Aggregator,
		temporality:     o.Temporality,
		attrsProcessor:  o.AttrsProcessor,
		exemplarFilter:  o.ExemplarFilter,
		newReservoir:    o.NewReservoir,
		maxCardinality:  o.MaxCardinality,
		isMonotonicSum:  o.IsMonotonicSum,
		histogramBounds: o.HistogramBounds,
		logger:          o.Logger,
		handles:         make(map[attribute.Distinct]*syncHandleEntry[N]),
	}
}

func (s *AsyncStorage[N]) Kind() aggregation.Kind { return s.aggregator.Kind() }

func (s *AsyncStorage[N]) Temporality() metricdata.Temporality { return s.temporality }

// Observe records one observation made inside the active collection's
// callback invocation. It is not safe to call outside of that window. ctx
// is the context the callback was invoked with, used only to decide
// exemplar sampling (spec.md §4.4's ExemplarFilter applies uniformly to
// sync and async instruments).
func (s *AsyncStorage[N]) Observe(ctx context.Context, value N, attrs []attribute.KeyValue) {
	processed := s.attrsProcessor.Process(attrs)
	set := attribute.NewSet(processed...)
	key := set.Equivalent()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.handles[key]
	if !ok {
		effectiveCap := s.maxCardinality - 1
		if len(s.handles) >= effectiveCap {
			if s.overflow == nil {
				s.overflow = &syncHandleEntry[N]{handle: s.aggregator.NewHandle(), reservoir: s.newReservoir(), attrs: overflowAttributeSet}
			}
			e = s.overflow
		} else {
			e = &syncHandleEntry[N]{handle: s.aggregator.NewHandle(), reservoir: s.newReservoir(), attrs: set}
			s.handles[key] = e
		}
	}
	e.handle.Record(value)
	if s.exemplarFilter.ShouldSample(ctx) {
		e.reservoir.Offer(ctx, time.Now(), value, processed)
	}
}

// Collect snapshots and clears every observation made since the last
// collect; the clean-slate-per-collect map replaces SyncStorage's pool.
func (s *AsyncStorage[N]) Collect(start, collectTime time.Time) metricdata.Aggregation {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]*syncHandleEntry[N], 0, len(s.handles)+1)
	for _, e := range s.handles {
		entries = append(entries, e)
	}
	if s.overflow != nil {
		entries = append(entries, s.overflow)
	}

	agg := buildAggregation(s.aggregator.Kind(), s.isMonotonicSum, s.temporality, s.histogramBounds, start, collectTime, entries)

	s.handles = make(map[attribute.Distinct]*syncHandleEntry[N])
	s.overflow = nil

	return agg
}
