package sdkmetric

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/YaoYingLong/eleven-otelcore/internal"
	"github.com/YaoYingLong/eleven-otelcore/metric"
	"github.com/YaoYingLong/eleven-otelcore/resource"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/export"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/metricdata"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/state"
)

// MetricReader is the collection-side counterpart to a MeterProvider: it
// is registered once, given a producer callback to pull metrics through,
// and drives its own export schedule (spec.md §4.3, component C6).
type MetricReader interface {
	state.Reader
	register(producer collectFunc)
	Temporality(kind metric.InstrumentKind) metricdata.Temporality
	Collect(ctx context.Context) (*metricdata.ResourceMetrics, error)
	ForceFlush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// collectFunc is supplied by the MeterProvider at registration time; a
// reader calls it to pull every storage's current data. collectTime is the
// single "now" the reader observed for this pass, reused as both the
// CollectAll "end" timestamp and, on return, the reader's new
// LastCollectTime — so that the next DELTA collection's start is exactly
// this collection's end (spec.md §8 property 7), rather than drifting by
// whatever nanoseconds elapse while the collection itself runs.
type collectFunc func(ctx context.Context, reader state.Reader, collectTime time.Time) (*metricdata.ResourceMetrics, error)

type baseReader struct {
	mu              sync.Mutex
	lastCollectTime time.Time
	producer        collectFunc
	temporality     export.TemporalitySelector
	res             *resource.Resource
}

func newBaseReader(temporality export.TemporalitySelector) *baseReader {
	if temporality == nil {
		temporality = export.DefaultTemporalitySelector
	}
	return &baseReader{temporality: temporality, lastCollectTime: time.Now()}
}

func (r *baseReader) register(producer collectFunc) { r.producer = producer }

func (r *baseReader) Temporality(kind metric.InstrumentKind) metricdata.Temporality {
	return r.temporality(kind)
}

func (r *baseReader) LastCollectTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastCollectTime
}

func (r *baseReader) collect(ctx context.Context, self state.Reader) (*metricdata.ResourceMetrics, error) {
	if r.producer == nil {
		return nil, fmt.Errorf("metric reader not registered with a provider")
	}
	collectTime := time.Now()
	rm, err := r.producer(ctx, self, collectTime)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.lastCollectTime = collectTime
	r.mu.Unlock()
	return rm, nil
}

// ManualReader exposes Collect on demand and is otherwise passive; it is
// the reader exporter-less tests and examples pull metrics through.
type ManualReader struct {
	*baseReader
	shutdown atomic.Bool
}

// NewManualReader returns a reader with no background schedule.
func NewManualReader(opts ...ReaderOption) *ManualReader {
	cfg := newReaderConfig(opts)
	return &ManualReader{baseReader: newBaseReader(cfg.temporality)}
}

func (r *ManualReader) Collect(ctx context.Context) (*metricdata.ResourceMetrics, error) {
	return r.collect(ctx, r)
}

func (r *ManualReader) ForceFlush(context.Context) error { return nil }

func (r *ManualReader) Shutdown(context.Context) error {
	r.shutdown.Store(true)
	return nil
}

// PeriodicMetricReader wraps a MetricExporter, collecting and exporting on
// a fixed interval (default 60s) on a dedicated goroutine, with
// ForceFlush triggering an out-of-band collect+export and Shutdown
// cancelling the schedule and flushing exactly once (spec.md §4.3).
type PeriodicMetricReader struct {
	*baseReader
	exporter export.MetricExporter
	interval time.Duration
	timeout  time.Duration
	logger   *internal.ThrottlingLogger

	done     chan struct{}
	flushCh  chan chan error
	stopped  atomic.Bool
}

const DefaultPeriodicReaderInterval = 60 * time.Second
const DefaultPeriodicReaderTimeout = 30 * time.Second

// NewPeriodicMetricReader starts the background export loop.
func NewPeriodicMetricReader(exporter export.MetricExporter, opts ...ReaderOption) *PeriodicMetricReader {
	cfg := newReaderConfig(opts)
	if cfg.temporality == nil {
		cfg.temporality = exporter.Temporality
	}
	if cfg.interval <= 0 {
		cfg.interval = DefaultPeriodicReaderInterval
	}
	if cfg.timeout <= 0 {
		cfg.timeout = DefaultPeriodicReaderTimeout
	}

	r := &PeriodicMetricReader{
		baseReader: newBaseReader(cfg.temporality),
		exporter:   exporter,
		interval:   cfg.interval,
		timeout:    cfg.timeout,
		logger:     internal.NewThrottlingLogger(cfg.logger),
		done:       make(chan struct{}),
		flushCh:    make(chan chan error),
	}
	go r.run()
	return r
}

func (r *PeriodicMetricReader) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case req := <-r.flushCh:
			req <- r.collectAndExport()
		case <-ticker.C:
			if err := r.collectAndExport(); err != nil {
				r.logger.Warn("periodic-export-failure", "periodic metric export failed", zap.Error(err))
			}
		}
	}
}

func (r *PeriodicMetricReader) collectAndExport() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	rm, err := r.collect(ctx, r)
	if err != nil {
		return err
	}
	return r.exporter.Export(ctx, rm)
}

func (r *PeriodicMetricReader) Collect(ctx context.Context) (*metricdata.ResourceMetrics, error) {
	return r.collect(ctx, r)
}

// ForceFlush runs an out-of-band collect+export and waits for it to finish.
func (r *PeriodicMetricReader) ForceFlush(ctx context.Context) error {
	if r.stopped.Load() {
		return nil
	}
	req := make(chan error, 1)
	select {
	case r.flushCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req:
		if err != nil {
			return err
		}
		return r.exporter.ForceFlush(ctx)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown cancels the schedule, flushes once, then shuts down the exporter.
func (r *PeriodicMetricReader) Shutdown(ctx context.Context) error {
	if !r.stopped.CAS(false, true) {
		return nil
	}
	close(r.done)
	if err := r.collectAndExport(); err != nil {
		r.logger.Warn("shutdown-flush-failure", "final metric export before shutdown failed", zap.Error(err))
	}
	return r.exporter.Shutdown(ctx)
}

// ReaderOption configures a MetricReader at construction.
type ReaderOption func(*readerConfig)

type readerConfig struct {
	interval    time.Duration
	timeout     time.Duration
	temporality export.TemporalitySelector
	logger      *zap.Logger
}

func newReaderConfig(opts []ReaderOption) readerConfig {
	c := readerConfig{}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// WithInterval sets a PeriodicMetricReader's export interval.
func WithInterval(d time.Duration) ReaderOption {
	return func(c *readerConfig) { c.interval = d }
}

// WithReaderExportTimeout sets a PeriodicMetricReader's per-export timeout.
func WithReaderExportTimeout(d time.Duration) ReaderOption {
	return func(c *readerConfig) { c.timeout = d }
}

// WithReaderLogger injects the zap.Logger a PeriodicMetricReader uses for
// its throttled periodic-export/shutdown-flush failure warnings; defaults
// to a no-op logger.
func WithReaderLogger(l *zap.Logger) ReaderOption {
	return func(c *readerConfig) { c.logger = l }
}

// WithTemporalitySelector overrides a reader's temporality choice;
// defaults to the exporter's own preference for PeriodicMetricReader, and
// to DefaultTemporalitySelector for ManualReader.
func WithTemporalitySelector(f export.TemporalitySelector) ReaderOption {
	return func(c *readerConfig) { c.temporality = f }
}
