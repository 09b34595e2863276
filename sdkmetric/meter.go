package sdkmetric

import (
	"github.com/YaoYingLong/eleven-otelcore/metric"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/aggregation"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/exemplar"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/state"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/view"
)

// Meter implements metric.Meter, scoped to one instrumentation scope. Each
// instrument-creation call resolves the matching Views for every reader
// registered on the owning MeterProvider and allocates one storage per
// (reader, view) pair (spec.md §4.2's per-reader-per-view instantiation).
type Meter struct {
	provider *MeterProvider
	scope    view.Scope
}

func (m *Meter) Int64Counter(name string, opts ...metric.InstrumentOption) (metric.Int64Counter, error) {
	storages, err := syncStorages[int64](m, name, metric.InstrumentKindCounter, metric.ValueTypeInt64, true, opts)
	if err != nil {
		return nil, err
	}
	return &int64CounterImpl{storages: storages}, nil
}

func (m *Meter) Float64Counter(name string, opts ...metric.InstrumentOption) (metric.Float64Counter, error) {
	storages, err := syncStorages[float64](m, name, metric.InstrumentKindCounter, metric.ValueTypeFloat64, true, opts)
	if err != nil {
		return nil, err
	}
	return &float64CounterImpl{storages: storages}, nil
}

func (m *Meter) Int64UpDownCounter(name string, opts ...metric.InstrumentOption) (metric.Int64UpDownCounter, error) {
	storages, err := syncStorages[int64](m, name, metric.InstrumentKindUpDownCounter, metric.ValueTypeInt64, false, opts)
	if err != nil {
		return nil, err
	}
	return &int64UpDownCounterImpl{storages: storages}, nil
}

func (m *Meter) Float64UpDownCounter(name string, opts ...metric.InstrumentOption) (metric.Float64UpDownCounter, error) {
	storages, err := syncStorages[float64](m, name, metric.InstrumentKindUpDownCounter, metric.ValueTypeFloat64, false, opts)
	if err != nil {
		return nil, err
	}
	return &float64UpDownCounterImpl{storages: storages}, nil
}

func (m *Meter) Int64Histogram(name string, opts ...metric.InstrumentOption) (metric.Int64Histogram, error) {
	storages, err := syncStorages[int64](m, name, metric.InstrumentKindHistogram, metric.ValueTypeInt64, false, opts)
	if err != nil {
		return nil, err
	}
	return &int64HistogramImpl{storages: storages}, nil
}

func (m *Meter) Float64Histogram(name string, opts ...metric.InstrumentOption) (metric.Float64Histogram, error) {
	storages, err := syncStorages[float64](m, name, metric.InstrumentKindHistogram, metric.ValueTypeFloat64, false, opts)
	if err != nil {
		return nil, err
	}
	return &float64HistogramImpl{storages: storages}, nil
}

func (m *Meter) Int64ObservableGauge(name string, opts ...metric.InstrumentOption) (metric.Int64Observable, error) {
	storages, err := asyncStorages[int64](m, name, metric.InstrumentKindObservableGauge, metric.ValueTypeInt64, false, opts)
	if err != nil {
		return nil, err
	}
	return &int64ObservableImpl{storages: storages}, nil
}

func (m *Meter) Int64ObservableCounter(name string, opts ...metric.InstrumentOption) (metric.Int64Observable, error) {
	storages, err := asyncStorages[int64](m, name, metric.InstrumentKindObservableCounter, metric.ValueTypeInt64, true, opts)
	if err != nil {
		return nil, err
	}
	return &int64ObservableImpl{storages: storages}, nil
}

func (m *Meter) Int64ObservableUpDownCounter(name string, opts ...metric.InstrumentOption) (metric.Int64Observable, error) {
	storages, err := asyncStorages[int64](m, name, metric.InstrumentKindObservableUpDownCounter, metric.ValueTypeInt64, false, opts)
	if err != nil {
		return nil, err
	}
	return &int64ObservableImpl{storages: storages}, nil
}

func (m *Meter) Float64ObservableGauge(name string, opts ...metric.InstrumentOption) (metric.Float64Observable, error) {
	storages, err := asyncStorages[float64](m, name, metric.InstrumentKindObservableGauge, metric.ValueTypeFloat64, false, opts)
	if err != nil {
		return nil, err
	}
	return &float64ObservableImpl{storages: storages}, nil
}

func (m *Meter) Float64ObservableCounter(name string, opts ...metric.InstrumentOption) (metric.Float64Observable, error) {
	storages, err := asyncStorages[float64](m, name, metric.InstrumentKindObservableCounter, metric.ValueTypeFloat64, true, opts)
	if err != nil {
		return nil, err
	}
	return &float64ObservableImpl{storages: storages}, nil
}

func (m *Meter) Float64ObservableUpDownCounter(name string, opts ...metric.InstrumentOption) (metric.Float64Observable, error) {
	storages, err := asyncStorages[float64](m, name, metric.InstrumentKindObservableUpDownCounter, metric.ValueTypeFloat64, false, opts)
	if err != nil {
		return nil, err
	}
	return &float64ObservableImpl{storages: storages}, nil
}

// RegisterCallback registers cb against every reader; each invocation
// drives Observe calls on the async storages backing instruments (spec.md
// §4.2, MeterSharedState.collectAll step 1).
func (m *Meter) RegisterCallback(cb metric.Callback, instruments ...metric.Observable) (metric.Registration, error) {
	idx := m.provider.shared.RegisterCallback(state.CallbackRegistration{
		Callback: cb,
	})
	return &callbackRegistration{provider: m.provider, idx: idx}, nil
}

type callbackRegistration struct {
	provider *MeterProvider
	idx      int
}

func (r *callbackRegistration) Unregister() error {
	r.provider.shared.UnregisterCallback(r.idx)
	return nil
}

// syncStorages builds one SyncStorage[N] per reader registered on the
// owning provider, threading each through its matching View(s).
func syncStorages[N int64 | float64](m *Meter, name string, kind metric.InstrumentKind, vt metric.ValueType, monotonic bool, opts []metric.InstrumentOption) ([]*state.SyncStorage[N], error) {
	cfg := metric.NewInstrumentConfig(opts...)
	descriptor := metric.Descriptor{Name: name, Description: cfg.Description, Unit: cfg.Unit, Kind: kind, ValueType: vt, Advice: cfg.Advice}

	var storages []*state.SyncStorage[N]
	for _, reader := range m.provider.readers {
		views := m.provider.views.FindViews(descriptor, m.scope)
		for _, v := range views {
			aggKind, bounds := resolveAggregation(kind, v, cfg)
			var agg aggregation.Aggregator[N]
			switch aggKind {
			case view.AggregationDrop:
				agg = aggregation.NewDrop[N]()
			case view.AggregationExplicitBucketHistogram:
				agg = aggregation.NewHistogram[N](bounds, true)
			case view.AggregationLastValue:
				agg = &aggregation.LastValueAggregator[N]{}
			default:
				agg = &aggregation.SumAggregator[N]{Monotonic: monotonic}
			}

			storage := state.NewSyncStorage[N](state.SyncStorageOptions[N]{
				Aggregator:      agg,
				Temporality:     reader.Temporality(kind),
				AttrsProcessor:  v.AttributesProcessor,
				ExemplarFilter:  m.provider.exemplarFilter,
				NewReservoir:    reservoirFactory[N](agg.Kind(), bounds),
				MaxCardinality:  m.provider.cardinalityLimit,
				IsMonotonicSum:  monotonic,
				HistogramBounds: bounds,
				Logger:          m.provider.logger,
			})
			effectiveName := name
			if v.Name != "" {
				effectiveName = v.Name
			}
			effectiveDescriptor := descriptor
			effectiveDescriptor.Name = effectiveName
			m.provider.registry.Register(effectiveDescriptor, reader, storage)
			storages = append(storages, storage)
		}
	}
	return storages, nil
}

func asyncStorages[N int64 | float64](m *Meter, name string, kind metric.InstrumentKind, vt metric.ValueType, monotonic bool, opts []metric.InstrumentOption) ([]*state.AsyncStorage[N], error) {
	cfg := metric.NewInstrumentConfig(opts...)
	descriptor := metric.Descriptor{Name: name, Description: cfg.Description, Unit: cfg.Unit, Kind: kind, ValueType: vt, Advice: cfg.Advice}

	var storages []*state.AsyncStorage[N]
	for _, reader := range m.provider.readers {
		views := m.provider.views.FindViews(descriptor, m.scope)
		for _, v := range views {
			aggKind, bounds := resolveAggregation(kind, v, cfg)
			var agg aggregation.Aggregator[N]
			if aggKind == view.AggregationDrop {
				agg = aggregation.NewDrop[N]()
			} else {
				agg = &aggregation.LastValueAggregator[N]{}
			}
			if kind == metric.InstrumentKindObservableCounter || kind == metric.InstrumentKindObservableUpDownCounter {
				if aggKind != view.AggregationDrop {
					agg = &aggregation.SumAggregator[N]{Monotonic: monotonic}
				}
			}

			storage := state.NewAsyncStorage[N](state.AsyncStorageOptions[N]{
				Aggregator:      agg,
				Temporality:     reader.Temporality(kind),
				AttrsProcessor:  v.AttributesProcessor,
				ExemplarFilter:  m.provider.exemplarFilter,
				NewReservoir:    reservoirFactory[N](agg.Kind(), bounds),
				MaxCardinality:  m.provider.cardinalityLimit,
				IsMonotonicSum:  monotonic,
				HistogramBounds: bounds,
				Logger:          m.provider.logger,
			})
			effectiveName := name
			if v.Name != "" {
				effectiveName = v.Name
			}
			effectiveDescriptor := descriptor
			effectiveDescriptor.Name = effectiveName
			m.provider.registry.Register(effectiveDescriptor, reader, storage)
			storages = append(storages, storage)
		}
	}
	return storages, nil
}

// resolveAggregation picks the aggregation kind and histogram bounds for
// an instrument, honoring a View's override, falling back to the
// instrument's Advice-supplied bounds, then the kind-implied default
// (spec.md §4.2's aggregator selection rule).
func resolveAggregation(kind metric.InstrumentKind, v view.View, cfg metric.InstrumentConfig) (view.AggregationOverride, []float64) {
	bounds := aggregation.DefaultHistogramBounds
	if len(cfg.Advice.ExplicitBucketBoundaries) > 0 {
		bounds = cfg.Advice.ExplicitBucketBoundaries
	}
	if len(v.HistogramBounds) > 0 {
		bounds = v.HistogramBounds
	}

	if v.Aggregation != view.AggregationDefault {
		return v.Aggregation, bounds
	}
	switch kind {
	case metric.InstrumentKindHistogram:
		return view.AggregationExplicitBucketHistogram, bounds
	case metric.InstrumentKindObservableGauge:
		return view.AggregationLastValue, bounds
	default:
		return view.AggregationSum, bounds
	}
}

func reservoirFactory[N int64 | float64](kind aggregation.Kind, bounds []float64) func() exemplar.Reservoir[N] {
	if kind == aggregation.KindExplicitBucketHistogram {
		return func() exemplar.Reservoir[N] { return exemplar.NewHistogramBucketReservoir[N](bounds) }
	}
	return func() exemplar.Reservoir[N] { return exemplar.NewFixedSizeReservoir[N](1) }
}
