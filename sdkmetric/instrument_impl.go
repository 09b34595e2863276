package sdkmetric

import (
	"context"

	"github.com/YaoYingLong/eleven-otelcore/metric"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/state"
)

// int64CounterImpl fans a single Add call out to every (reader, view)
// storage backing the instrument (spec.md §4.2's per-reader instantiation).
type int64CounterImpl struct {
	storages []*state.SyncStorage[int64]
}

func (c *int64CounterImpl) Add(ctx context.Context, incr int64, opts ...metric.RecordOption) {
	attrs := metric.NewRecordConfig(opts)
	for _, s := range c.storages {
		s.Record(ctx, incr, attrs)
	}
}

type float64CounterImpl struct {
	storages []*state.SyncStorage[float64]
}

func (c *float64CounterImpl) Add(ctx context.Context, incr float64, opts ...metric.RecordOption) {
	attrs := metric.NewRecordConfig(opts)
	for _, s := range c.storages {
		s.Record(ctx, incr, attrs)
	}
}

// int64UpDownCounterImpl backs Meter.Int64UpDownCounter; it shares
// int64CounterImpl's fan-out shape but is constructed with a non-monotonic
// SumAggregator (spec.md §4.2 aggregator selection rule).
type int64UpDownCounterImpl struct {
	storages []*state.SyncStorage[int64]
}

func (c *int64UpDownCounterImpl) Add(ctx context.Context, incr int64, opts ...metric.RecordOption) {
	attrs := metric.NewRecordConfig(opts)
	for _, s := range c.storages {
		s.Record(ctx, incr, attrs)
	}
}

type float64UpDownCounterImpl struct {
	storages []*state.SyncStorage[float64]
}

func (c *float64UpDownCounterImpl) Add(ctx context.Context, incr float64, opts ...metric.RecordOption) {
	attrs := metric.NewRecordConfig(opts)
	for _, s := range c.storages {
		s.Record(ctx, incr, attrs)
	}
}

type int64HistogramImpl struct {
	storages []*state.SyncStorage[int64]
}

func (h *int64HistogramImpl) Record(ctx context.Context, value int64, opts ...metric.RecordOption) {
	attrs := metric.NewRecordConfig(opts)
	for _, s := range h.storages {
		s.Record(ctx, value, attrs)
	}
}

type float64HistogramImpl struct {
	storages []*state.SyncStorage[float64]
}

func (h *float64HistogramImpl) Record(ctx context.Context, value float64, opts ...metric.RecordOption) {
	attrs := metric.NewRecordConfig(opts)
	for _, s := range h.storages {
		s.Record(ctx, value, attrs)
	}
}

// int64ObservableImpl identifies an observable int64 instrument to a
// Callback; meterObserver type-asserts back to this to find its storages.
type int64ObservableImpl struct {
	metric.ObservableMarker
	storages []*state.AsyncStorage[int64]
}

type float64ObservableImpl struct {
	metric.ObservableMarker
	storages []*state.AsyncStorage[float64]
}

// meterObserver implements metric.Observer for one collection pass; ctx is
// the context the owning MetricReader's collect call is running under, used
// only to decide exemplar sampling for async storages (mirrors the
// synchronous Record(ctx, ...) path).
type meterObserver struct {
	ctx context.Context
}

func (o *meterObserver) ObserveInt64(obs metric.Int64Observable, value int64, opts ...metric.ObserveOption) {
	impl, ok := obs.(*int64ObservableImpl)
	if !ok {
		return
	}
	attrs := metric.NewObserveConfig(opts)
	for _, s := range impl.storages {
		s.Observe(o.ctx, value, attrs)
	}
}

func (o *meterObserver) ObserveFloat64(obs metric.Float64Observable, value float64, opts ...metric.ObserveOption) {
	impl, ok := obs.(*float64ObservableImpl)
	if !ok {
		return
	}
	attrs := metric.NewObserveConfig(opts)
	for _, s := range impl.storages {
		s.Observe(o.ctx, value, attrs)
	}
}
