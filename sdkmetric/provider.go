// Package sdkmetric implements the metrics pipeline: instrument creation,
// view resolution, storage registration, and reader-driven collection
// (spec.md §4.2-§4.4, components C3-C6). sdkmetric/state does the hard
// part; this package is the MeterProvider/Meter-facing assembly on top.
package sdkmetric

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/YaoYingLong/eleven-otelcore/internal"
	"github.com/YaoYingLong/eleven-otelcore/metric"
	"github.com/YaoYingLong/eleven-otelcore/resource"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/exemplar"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/metricdata"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/state"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/view"
)

// DefaultCardinalityLimit mirrors otel.experimental.metrics.cardinality.limit's
// documented default (spec.md §4.5 step 5).
const DefaultCardinalityLimit = 2000

// MeterProvider is the entry point for obtaining Meters. It owns the
// Resource, the View registry, the instrument registration registry, and
// every registered MetricReader.
type MeterProvider struct {
	mu sync.Mutex

	resource         *resource.Resource
	views            *view.Registry
	registry         *state.Registry
	shared           *state.SharedState
	readers          []MetricReader
	cardinalityLimit int
	exemplarFilter   exemplar.Filter
	startTime        time.Time
	logger           *internal.ThrottlingLogger

	meters   map[scopeKey]*Meter
	shutdown bool
}

type scopeKey struct {
	name, version, schemaURL string
}

// Option configures a MeterProvider at construction.
type Option func(*MeterProvider)

func WithMeterResource(r *resource.Resource) Option {
	return func(p *MeterProvider) { p.resource = r }
}

func WithReader(r MetricReader) Option {
	return func(p *MeterProvider) { p.readers = append(p.readers, r) }
}

func WithViews(views ...view.View) Option {
	return func(p *MeterProvider) { p.views = view.NewRegistry(views...) }
}

// WithCardinalityLimit sets the configured cardinality cap per (reader,
// view, instrument) storage; the effective cap applied is this minus one,
// reserving a slot for the overflow series (spec.md §4.2, §9 open question).
func WithCardinalityLimit(n int) Option {
	return func(p *MeterProvider) { p.cardinalityLimit = n }
}

func WithExemplarFilter(f exemplar.Filter) Option {
	return func(p *MeterProvider) { p.exemplarFilter = f }
}

// WithLogger injects the zap.Logger backing this provider's throttled
// warnings (e.g. cardinality-limit overflow); defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *MeterProvider) { p.logger = internal.NewThrottlingLogger(l) }
}

// NewMeterProvider builds a MeterProvider with the given options.
func NewMeterProvider(opts ...Option) *MeterProvider {
	p := &MeterProvider{
		resource:         resource.Default(),
		views:            view.NewRegistry(),
		cardinalityLimit: DefaultCardinalityLimit,
		exemplarFilter:   exemplar.TraceBasedFilter(),
		startTime:        time.Now(),
		logger:           internal.NewThrottlingLogger(nil),
		meters:           make(map[scopeKey]*Meter),
	}
	for _, o := range opts {
		o(p)
	}
	p.registry = state.NewRegistry(p.logger)
	p.shared = state.NewSharedState(p.registry)
	for _, r := range p.readers {
		reader := r
		r.register(func(ctx context.Context, readerIdentity state.Reader, collectTime time.Time) (*metricdata.ResourceMetrics, error) {
			return p.collect(ctx, reader, readerIdentity, collectTime)
		})
	}
	return p
}

func (p *MeterProvider) collect(ctx context.Context, reader MetricReader, readerIdentity state.Reader, collectTime time.Time) (*metricdata.ResourceMetrics, error) {
	observer := &meterObserver{ctx: ctx}
	scopeMetrics := p.shared.CollectAll(ctx, readerIdentity, p.startTime, collectTime, observer)
	return &metricdata.ResourceMetrics{
		Resource: p.resource,
		ScopeMetrics: groupByScope(scopeMetrics),
	}, nil
}

// groupByScope is a placeholder pass-through: this provider's current
// Meter implementation does not yet tag each metricdata.Metrics with its
// originating scope, so every collected metric is reported under one
// unnamed scope. Revisit if per-scope grouping becomes necessary.
func groupByScope(metrics []metricdata.Metrics) []metricdata.ScopeMetrics {
	if len(metrics) == 0 {
		return nil
	}
	return []metricdata.ScopeMetrics{{Metrics: metrics}}
}

// Meter returns a cached Meter for the given instrumentation scope.
func (p *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	cfg := metric.NewMeterConfig(opts...)
	key := scopeKey{name: name, version: cfg.Version, schemaURL: cfg.SchemaURL}

	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := p.meters[key]; ok {
		return m
	}
	m := &Meter{
		provider: p,
		scope:    view.Scope{Name: name, Version: cfg.Version, SchemaURL: cfg.SchemaURL},
	}
	p.meters[key] = m
	return m
}

// ForceFlush flushes every registered reader, returning the first error.
func (p *MeterProvider) ForceFlush(ctx context.Context) error {
	var firstErr error
	for _, r := range p.readers {
		if err := r.ForceFlush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Shutdown shuts down every registered reader, returning the first error.
func (p *MeterProvider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return nil
	}
	p.shutdown = true
	p.mu.Unlock()

	var firstErr error
	for _, r := range p.readers {
		if err := r.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
