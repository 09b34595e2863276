package sdklog

import (
	"context"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/YaoYingLong/eleven-otelcore/internal"
)

// Defaults mirror the Java SDK's BatchLogRecordProcessorBuilder constants,
// the same shape sdktrace.BatchSpanProcessor's defaults follow.
const (
	DefaultLogScheduleDelay      = 1 * time.Second
	DefaultLogExportTimeout      = 30 * time.Second
	DefaultMaxLogQueueSize       = 2048
	DefaultMaxLogExportBatchSize = 512
)

// BatchLogRecordProcessorOptions configures a BatchLogRecordProcessor.
type BatchLogRecordProcessorOptions struct {
	ScheduleDelay      time.Duration
	ExportTimeout      time.Duration
	MaxQueueSize       int
	MaxExportBatchSize int
	Logger             *zap.Logger
}

type BatchLogRecordProcessorOption func(*BatchLogRecordProcessorOptions)

func WithLogBatchTimeout(d time.Duration) BatchLogRecordProcessorOption {
	return func(o *BatchLogRecordProcessorOptions) { o.ScheduleDelay = d }
}

func WithLogExportTimeout(d time.Duration) BatchLogRecordProcessorOption {
	return func(o *BatchLogRecordProcessorOptions) { o.ExportTimeout = d }
}

func WithMaxLogQueueSize(n int) BatchLogRecordProcessorOption {
	return func(o *BatchLogRecordProcessorOptions) { o.MaxQueueSize = n }
}

func WithMaxLogExportBatchSize(n int) BatchLogRecordProcessorOption {
	return func(o *BatchLogRecordProcessorOptions) { o.MaxExportBatchSize = n }
}

// WithProcessorLogger injects the zap.Logger backing this processor's
// throttled queue-full/export-failure warnings; defaults to a no-op logger.
func WithProcessorLogger(l *zap.Logger) BatchLogRecordProcessorOption {
	return func(o *BatchLogRecordProcessorOptions) { o.Logger = l }
}

func defaultBatchLogRecordProcessorOptions() BatchLogRecordProcessorOptions {
	return BatchLogRecordProcessorOptions{
		ScheduleDelay:      DefaultLogScheduleDelay,
		ExportTimeout:      DefaultLogExportTimeout,
		MaxQueueSize:       DefaultMaxLogQueueSize,
		MaxExportBatchSize: DefaultMaxLogExportBatchSize,
	}
}

// BatchLogRecordProcessor buffers emitted records on a bounded queue and
// exports them on a background worker, the same size-or-timer trigger
// shape as sdktrace.BatchSpanProcessor (grounded there on the teacher's
// processor/batchprocessor/batch_processor.go).
type BatchLogRecordProcessor struct {
	exporter logRecordExporter
	o        BatchLogRecordProcessorOptions
	logger   *internal.ThrottlingLogger

	queue      chan LogRecordData
	flushCh    chan chan error
	done       chan struct{}
	workerDone chan struct{}
	stopped    atomic.Bool

	droppedCount  atomic.Uint64
	exportedCount atomic.Uint64
}

func NewBatchLogRecordProcessor(exporter logRecordExporter, opts ...BatchLogRecordProcessorOption) *BatchLogRecordProcessor {
	o := defaultBatchLogRecordProcessorOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxQueueSize <= 0 {
		o.MaxQueueSize = DefaultMaxLogQueueSize
	}
	if o.MaxExportBatchSize <= 0 || o.MaxExportBatchSize > o.MaxQueueSize {
		o.MaxExportBatchSize = o.MaxQueueSize
	}

	p := &BatchLogRecordProcessor{
		exporter: exporter,
		o:        o,
		logger:   internal.NewThrottlingLogger(o.Logger),
		queue:      make(chan LogRecordData, o.MaxQueueSize),
		flushCh:    make(chan chan error),
		done:       make(chan struct{}),
		workerDone: make(chan struct{}),
	}
	go p.worker()
	return p
}

func (p *BatchLogRecordProcessor) OnEmit(ctx context.Context, record LogRecordData) {
	if p.stopped.Load() {
		return
	}
	select {
	case p.queue <- record:
	default:
		p.droppedCount.Inc()
		p.logger.Warn("queue-full", "log record processor queue full, dropping record")
	}
}

func (p *BatchLogRecordProcessor) worker() {
	defer close(p.workerDone)

	ticker := time.NewTicker(p.o.ScheduleDelay)
	defer ticker.Stop()

	batch := make([]LogRecordData, 0, p.o.MaxExportBatchSize)

	exportAndReset := func() {
		if len(batch) == 0 {
			return
		}
		p.export(batch)
		batch = batch[:0]
	}

	for {
		select {
		case <-p.done:
			p.drainQueueInto(&batch, exportAndReset)
			return

		case req := <-p.flushCh:
			p.drainQueueInto(&batch, exportAndReset)
			req <- nil

		case r := <-p.queue:
			batch = append(batch, r)
			if len(batch) >= p.o.MaxExportBatchSize {
				exportAndReset()
				ticker.Reset(p.o.ScheduleDelay)
			}

		case <-ticker.C:
			exportAndReset()
		}
	}
}

func (p *BatchLogRecordProcessor) drainQueueInto(batch *[]LogRecordData, exportAndReset func()) {
	for {
		select {
		case r := <-p.queue:
			*batch = append(*batch, r)
			if len(*batch) >= p.o.MaxExportBatchSize {
				exportAndReset()
			}
		default:
			exportAndReset()
			return
		}
	}
}

func (p *BatchLogRecordProcessor) export(batch []LogRecordData) {
	ctx, cancel := context.WithTimeout(context.Background(), p.o.ExportTimeout)
	defer cancel()

	toExport := make([]LogRecordData, len(batch))
	copy(toExport, batch)

	if err := p.exporter.ExportLogRecords(ctx, toExport); err != nil {
		p.logger.Warn("export-failure", "log record export failed", zap.Error(err), zap.Int("batch_size", len(toExport)))
		return
	}
	p.exportedCount.Add(uint64(len(toExport)))
}

func (p *BatchLogRecordProcessor) ForceFlush(ctx context.Context) error {
	if p.stopped.Load() {
		return nil
	}
	req := make(chan error, 1)
	select {
	case p.flushCh <- req:
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

func (p *BatchLogRecordProcessor) Shutdown(ctx context.Context) error {
	if !p.stopped.CAS(false, true) {
		return nil
	}
	close(p.done)
	select {
	case <-p.workerDone:
	case <-ctx.Done():
		return ctx.Err()
	}
	return p.exporter.Shutdown(ctx)
}

func (p *BatchLogRecordProcessor) DroppedRecords() uint64 { return p.droppedCount.Load() }

func (p *BatchLogRecordProcessor) ExportedRecords() uint64 { return p.exportedCount.Load() }
