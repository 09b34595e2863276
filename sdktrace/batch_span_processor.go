package sdktrace

import (
	"context"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/internal"
	"github.com/YaoYingLong/eleven-otelcore/metric"
)

// Defaults mirror the Java SDK's BatchSpanProcessorBuilder constants
// (spec.md §4.1), which the teacher's own batchprocessor package follows
// the same shape of: a bounded queue, a periodic timer, and a size trigger.
const (
	DefaultScheduleDelay      = 5 * time.Second
	DefaultExportTimeout      = 30 * time.Second
	DefaultMaxQueueSize       = 2048
	DefaultMaxExportBatchSize = 512
)

// BatchSpanProcessorOptions configures a BatchSpanProcessor.
type BatchSpanProcessorOptions struct {
	ScheduleDelay      time.Duration
	ExportTimeout      time.Duration
	MaxQueueSize       int
	MaxExportBatchSize int
	MeterProvider      metric.MeterProvider
	Logger             *zap.Logger
}

// BatchSpanProcessorOption sets one field of BatchSpanProcessorOptions.
type BatchSpanProcessorOption func(*BatchSpanProcessorOptions)

func WithBatchTimeout(d time.Duration) BatchSpanProcessorOption {
	return func(o *BatchSpanProcessorOptions) { o.ScheduleDelay = d }
}

func WithExportTimeout(d time.Duration) BatchSpanProcessorOption {
	return func(o *BatchSpanProcessorOptions) { o.ExportTimeout = d }
}

func WithMaxQueueSize(n int) BatchSpanProcessorOption {
	return func(o *BatchSpanProcessorOptions) { o.MaxQueueSize = n }
}

func WithMaxExportBatchSize(n int) BatchSpanProcessorOption {
	return func(o *BatchSpanProcessorOptions) { o.MaxExportBatchSize = n }
}

// WithProcessorMeterProvider wires a MeterProvider so the processor can
// report its own dropped/exported-span counters, the way the teacher's
// batchprocessor reports consumer-level self metrics.
func WithProcessorMeterProvider(mp metric.MeterProvider) BatchSpanProcessorOption {
	return func(o *BatchSpanProcessorOptions) { o.MeterProvider = mp }
}

// WithProcessorLogger injects the zap.Logger backing this processor's
// throttled queue-full/export-failure warnings; defaults to a no-op logger.
func WithProcessorLogger(l *zap.Logger) BatchSpanProcessorOption {
	return func(o *BatchSpanProcessorOptions) { o.Logger = l }
}

func defaultBatchSpanProcessorOptions() BatchSpanProcessorOptions {
	return BatchSpanProcessorOptions{
		ScheduleDelay:      DefaultScheduleDelay,
		ExportTimeout:      DefaultExportTimeout,
		MaxQueueSize:       DefaultMaxQueueSize,
		MaxExportBatchSize: DefaultMaxExportBatchSize,
	}
}

// BatchSpanProcessor buffers ended spans on a bounded queue and exports
// them on a background worker, either when a batch fills up or when the
// schedule delay elapses — whichever happens first (spec.md §4.1, C7).
type BatchSpanProcessor struct {
	exporter SpanExporter
	o        BatchSpanProcessorOptions
	logger   *internal.ThrottlingLogger

	queue      chan SpanData
	flushCh    chan chan error
	done       chan struct{}
	workerDone chan struct{}
	stopped    atomic.Bool

	droppedCount  atomic.Uint64
	exportedCount atomic.Uint64

	// Self metrics, named and shaped after the teacher's batchprocessor
	// package instrumenting its own consumer with go.opentelemetry.io/otel/metric.
	processedSpans        metric.Int64Counter
	batchSizeTriggerSend  metric.Int64Counter
	timeoutTriggerSend    metric.Int64Counter
	batchSendSize         metric.Int64Histogram
	batchSendSizeBytes    metric.Int64Histogram
	queueSizeRegistration metric.Registration
}

var (
	droppedTrueAttr  = metric.WithAttributes(attribute.Bool("dropped", true))
	droppedFalseAttr = metric.WithAttributes(attribute.Bool("dropped", false))
)

// NewBatchSpanProcessor starts the worker goroutine and returns the processor.
func NewBatchSpanProcessor(exporter SpanExporter, opts ...BatchSpanProcessorOption) *BatchSpanProcessor {
	o := defaultBatchSpanProcessorOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxQueueSize <= 0 {
		o.MaxQueueSize = DefaultMaxQueueSize
	}
	if o.MaxExportBatchSize <= 0 || o.MaxExportBatchSize > o.MaxQueueSize {
		o.MaxExportBatchSize = o.MaxQueueSize
	}

	bsp := &BatchSpanProcessor{
		exporter: exporter,
		o:        o,
		logger:   internal.NewThrottlingLogger(o.Logger),
		queue:      make(chan SpanData, o.MaxQueueSize),
		flushCh:    make(chan chan error),
		done:       make(chan struct{}),
		workerDone: make(chan struct{}),
	}

	if o.MeterProvider != nil {
		bsp.registerSelfMetrics(o.MeterProvider)
	}

	go bsp.worker()
	return bsp
}

// registerSelfMetrics wires the processor's own operational metrics
// through the sdkmetric API this module provides, following the shape of
// the teacher's batchprocessor package instrumenting its own consumer
// (spec.md's ambient-stack note on §4.1): processedSpans counts every
// span the processor finishes with, split by whether it was dropped;
// batchSizeTriggerSend/timeoutTriggerSend count which condition caused an
// export; batchSendSize/batchSendSizeBytes record the shape of what was
// sent; queueSize is sampled on demand since it reflects live state
// rather than something recorded at a point in time.
func (bsp *BatchSpanProcessor) registerSelfMetrics(mp metric.MeterProvider) {
	m := mp.Meter("eleven-otelcore/sdktrace")

	if c, err := m.Int64Counter("otel.sdk.span_processor.processed_spans",
		metric.WithDescription("Number of spans the batch span processor finished processing, by whether they were dropped")); err == nil {
		bsp.processedSpans = c
	}
	if c, err := m.Int64Counter("batch_size_trigger_send",
		metric.WithDescription("Number of times the batch was sent due to a size trigger")); err == nil {
		bsp.batchSizeTriggerSend = c
	}
	if c, err := m.Int64Counter("timeout_trigger_send",
		metric.WithDescription("Number of times the batch was sent due to a timeout trigger")); err == nil {
		bsp.timeoutTriggerSend = c
	}
	if h, err := m.Int64Histogram("batch_send_size",
		metric.WithDescription("Number of spans in the batch that was sent")); err == nil {
		bsp.batchSendSize = h
	}
	if h, err := m.Int64Histogram("batch_send_size_bytes",
		metric.WithDescription("Number of bytes in the batch that was sent"), metric.WithUnit("By")); err == nil {
		bsp.batchSendSizeBytes = h
	}

	gauge, err := m.Int64ObservableGauge("otel.sdk.span_processor.queue_size",
		metric.WithDescription("Number of spans currently buffered in the batch span processor's queue"))
	if err != nil {
		return
	}
	reg, err := m.RegisterCallback(func(_ context.Context, obs metric.Observer) error {
		obs.ObserveInt64(gauge, int64(len(bsp.queue)),
			metric.WithAttributes(attribute.String("processorType", "batchSpanProcessor")))
		return nil
	}, gauge)
	if err == nil {
		bsp.queueSizeRegistration = reg
	}
}

// OnStart is a no-op; the batch processor only acts on span completion.
func (bsp *BatchSpanProcessor) OnStart(context.Context, *Span) {}

// OnEnd enqueues the span for export, dropping it first if its sampled bit
// is clear (spec.md §4.1, §8 property 2). If the queue is full the span is
// dropped and a throttled warning is logged (spec.md §7: a full queue drops
// new spans rather than blocking the caller or growing unbounded).
func (bsp *BatchSpanProcessor) OnEnd(s SpanData) {
	if bsp.stopped.Load() {
		return
	}
	if !s.SpanContext.IsSampled() {
		return
	}
	select {
	case bsp.queue <- s:
	default:
		bsp.droppedCount.Inc()
		if bsp.processedSpans != nil {
			bsp.processedSpans.Add(context.Background(), 1, droppedTrueAttr)
		}
		bsp.logger.Warn("queue-full", "span processor queue full, dropping span",
			zap.String("span", s.Name))
	}
}

func (bsp *BatchSpanProcessor) worker() {
	defer close(bsp.workerDone)

	ticker := time.NewTicker(bsp.o.ScheduleDelay)
	defer ticker.Stop()

	batch := make([]SpanData, 0, bsp.o.MaxExportBatchSize)

	exportAndReset := func(trigger metric.Int64Counter) {
		if len(batch) == 0 {
			return
		}
		bsp.sendItems(batch, trigger)
		batch = batch[:0]
	}

	for {
		select {
		case <-bsp.done:
			// Drain whatever remains in the queue before exiting, in
			// MaxExportBatchSize-sized chunks, mirroring the Java
			// implementation's shutdown-time final flush.
			bsp.drainQueueInto(&batch, exportAndReset)
			return

		case req := <-bsp.flushCh:
			bsp.drainQueueInto(&batch, exportAndReset)
			req <- nil

		case sd := <-bsp.queue:
			batch = append(batch, sd)
			if len(batch) >= bsp.o.MaxExportBatchSize {
				exportAndReset(bsp.batchSizeTriggerSend)
				ticker.Reset(bsp.o.ScheduleDelay)
			}

		case <-ticker.C:
			exportAndReset(bsp.timeoutTriggerSend)
		}
	}
}

// drainQueueInto pulls every span currently buffered in the queue into
// batch, flushing via exportAndReset whenever a full batch accumulates
// (counted against batchSizeTriggerSend), and flushes whatever remains once
// the queue reports empty. That final send is not a size trigger, so it
// counts against timeoutTriggerSend the same way the teacher's batch
// processor counts its own shutdown/flush-triggered sends.
func (bsp *BatchSpanProcessor) drainQueueInto(batch *[]SpanData, exportAndReset func(metric.Int64Counter)) {
	for {
		select {
		case sd := <-bsp.queue:
			*batch = append(*batch, sd)
			if len(*batch) >= bsp.o.MaxExportBatchSize {
				exportAndReset(bsp.batchSizeTriggerSend)
			}
		default:
			exportAndReset(bsp.timeoutTriggerSend)
			return
		}
	}
}

// sendItems reports which trigger caused the send, records the batch's
// item count and estimated byte size, and exports it — the same shape as
// the teacher's batchProcessor.sendItems(triggerMeasure).
func (bsp *BatchSpanProcessor) sendItems(batch []SpanData, trigger metric.Int64Counter) {
	ctx := context.Background()
	if trigger != nil {
		trigger.Add(ctx, 1)
	}
	if bsp.batchSendSize != nil {
		bsp.batchSendSize.Record(ctx, int64(len(batch)))
	}
	if bsp.batchSendSizeBytes != nil {
		var size int64
		for _, sd := range batch {
			size += int64(approximateSpanBytes(sd))
		}
		bsp.batchSendSizeBytes.Record(ctx, size)
	}
	bsp.export(batch)
}

func (bsp *BatchSpanProcessor) export(batch []SpanData) {
	ctx, cancel := context.WithTimeout(context.Background(), bsp.o.ExportTimeout)
	defer cancel()

	toExport := make([]SpanData, len(batch))
	copy(toExport, batch)

	if err := bsp.exporter.ExportSpans(ctx, toExport); err != nil {
		bsp.logger.Warn("export-failure", "span export failed", zap.Error(err), zap.Int("batch_size", len(toExport)))
		return
	}
	bsp.exportedCount.Add(uint64(len(toExport)))
	if bsp.processedSpans != nil {
		bsp.processedSpans.Add(context.Background(), int64(len(toExport)), droppedFalseAttr)
	}
}

// approximateSpanBytes estimates a span's exported wire size well enough
// to drive a "bytes sent" self-metric without an OTLP proto encoder in
// this module: it sums the lengths of the strings a real encoder would
// serialize.
func approximateSpanBytes(sd SpanData) int {
	n := len(sd.Name)
	for _, kv := range sd.Attributes {
		n += len(kv.Key) + len(kv.Value.Emit())
	}
	for _, ev := range sd.Events {
		n += len(ev.Name)
		for _, kv := range ev.Attributes {
			n += len(kv.Key) + len(kv.Value.Emit())
		}
	}
	for _, link := range sd.Links {
		for _, kv := range link.Attributes {
			n += len(kv.Key) + len(kv.Value.Emit())
		}
	}
	return n
}

// ForceFlush blocks until every currently queued span has been exported.
func (bsp *BatchSpanProcessor) ForceFlush(ctx context.Context) error {
	if bsp.stopped.Load() {
		return nil
	}
	req := make(chan error, 1)
	select {
	case bsp.flushCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown flushes remaining spans, waits for the worker to finish draining
// the queue, and only then shuts down the exporter. It is idempotent: the
// first call performs the sequence, later calls return nil immediately
// (spec.md §8 property 14).
func (bsp *BatchSpanProcessor) Shutdown(ctx context.Context) error {
	if !bsp.stopped.CAS(false, true) {
		return nil
	}
	close(bsp.done)
	select {
	case <-bsp.workerDone:
	case <-ctx.Done():
		return ctx.Err()
	}
	if bsp.queueSizeRegistration != nil {
		_ = bsp.queueSizeRegistration.Unregister()
	}
	return bsp.exporter.Shutdown(ctx)
}

// DroppedSpans returns the number of spans dropped due to a full queue.
func (bsp *BatchSpanProcessor) DroppedSpans() uint64 { return bsp.droppedCount.Load() }

// ExportedSpans returns the number of spans successfully exported.
func (bsp *BatchSpanProcessor) ExportedSpans() uint64 { return bsp.exportedCount.Load() }
