package sdktrace

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YaoYingLong/eleven-otelcore/sdkmetric"
	"github.com/YaoYingLong/eleven-otelcore/trace"
)

type recordingExporter struct {
	mu       sync.Mutex
	batches  [][]SpanData
	shutdown bool
}

func (e *recordingExporter) ExportSpans(_ context.Context, spans []SpanData) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make([]SpanData, len(spans))
	copy(cp, spans)
	e.batches = append(e.batches, cp)
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdown = true
	return nil
}

func (e *recordingExporter) total() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, b := range e.batches {
		n += len(b)
	}
	return n
}

func endedSpan(name string) SpanData {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{1},
		TraceFlags: trace.FlagsSampled,
	})
	return SpanData{Name: name, SpanContext: sc, StartTime: time.Now(), EndTime: time.Now()}
}

func TestBatchSpanProcessorExportsOnBatchSize(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithMaxQueueSize(10), WithMaxExportBatchSize(4), WithBatchTimeout(time.Hour))
	defer bsp.Shutdown(context.Background())

	for i := 0; i < 4; i++ {
		bsp.OnEnd(endedSpan("s"))
	}

	require.Eventually(t, func() bool { return exp.total() == 4 }, time.Second, time.Millisecond)
}

func TestBatchSpanProcessorExportsOnTimer(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithMaxQueueSize(10), WithMaxExportBatchSize(100), WithBatchTimeout(10*time.Millisecond))
	defer bsp.Shutdown(context.Background())

	bsp.OnEnd(endedSpan("s"))

	require.Eventually(t, func() bool { return exp.total() == 1 }, time.Second, time.Millisecond)
}

func TestBatchSpanProcessorDropsOnFullQueue(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithMaxQueueSize(2), WithMaxExportBatchSize(2), WithBatchTimeout(time.Hour))
	defer bsp.Shutdown(context.Background())

	// Fill the queue faster than the worker can drain by sending many
	// spans immediately; some must be dropped rather than block OnEnd.
	for i := 0; i < 1000; i++ {
		bsp.OnEnd(endedSpan("s"))
	}

	assert.True(t, bsp.DroppedSpans() > 0 || exp.total() > 0)
}

func TestBatchSpanProcessorForceFlush(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithMaxQueueSize(100), WithMaxExportBatchSize(100), WithBatchTimeout(time.Hour))
	defer bsp.Shutdown(context.Background())

	for i := 0; i < 5; i++ {
		bsp.OnEnd(endedSpan("s"))
	}

	require.NoError(t, bsp.ForceFlush(context.Background()))
	assert.Equal(t, 5, exp.total())
}

func TestBatchSpanProcessorShutdownFlushesAndIsIdempotent(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithMaxQueueSize(100), WithMaxExportBatchSize(100), WithBatchTimeout(time.Hour))

	for i := 0; i < 3; i++ {
		bsp.OnEnd(endedSpan("s"))
	}

	require.NoError(t, bsp.Shutdown(context.Background()))
	require.NoError(t, bsp.Shutdown(context.Background()))
	assert.Equal(t, 3, exp.total())
	assert.True(t, exp.shutdown)
}

func TestBatchSpanProcessorShutdownWaitsForDrainBeforeExporterShutdown(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithMaxQueueSize(100), WithMaxExportBatchSize(100), WithBatchTimeout(time.Hour))

	for i := 0; i < 10; i++ {
		bsp.OnEnd(endedSpan("s"))
	}

	require.NoError(t, bsp.Shutdown(context.Background()))
	// The queued spans must already be visible to the exporter by the time
	// Shutdown returns, and only then may the exporter itself be shut down.
	assert.Equal(t, 10, exp.total())
	assert.True(t, exp.shutdown)
}

func TestTracerStartEndFeedsProcessor(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithBatchTimeout(time.Hour))
	defer bsp.Shutdown(context.Background())

	tp := NewTracerProvider(WithSampler(AlwaysSample()), WithSpanProcessor(bsp))
	tracer := tp.Tracer("test")

	ctx, span := tracer.Start(context.Background(), "op")
	span.SetAttributes()
	span.End()
	_ = ctx

	require.NoError(t, bsp.ForceFlush(context.Background()))
	require.Equal(t, 1, exp.total())
	assert.Equal(t, "op", exp.batches[0][0].Name)
}

type recordOnlySampler struct{}

func (recordOnlySampler) ShouldSample(p SamplingParameters) SamplingResult {
	return SamplingResult{Decision: RecordOnly, Tracestate: p.ParentContext.TraceState()}
}
func (recordOnlySampler) Description() string { return "RecordOnlySampler" }

// TestRecordOnlySpanDroppedByProcessor pins spec.md §4.1/§8 property 2 at
// the processor boundary: a RecordOnly span is recording (its events and
// attributes are live) but not sampled, so BatchSpanProcessor.OnEnd must
// not enqueue it even though Tracer.onEnd forwards every ended span
// unconditionally.
func TestRecordOnlySpanDroppedByProcessor(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithBatchTimeout(time.Hour))
	defer bsp.Shutdown(context.Background())

	tp := NewTracerProvider(WithSampler(recordOnlySampler{}), WithSpanProcessor(bsp))
	tracer := tp.Tracer("test")

	_, span := tracer.Start(context.Background(), "op")
	assert.True(t, span.IsRecording())
	span.End()

	require.NoError(t, bsp.ForceFlush(context.Background()))
	assert.Equal(t, 0, exp.total())
}

// TestBatchSpanProcessorSelfMetrics pins SPEC_FULL.md's promise that the
// batch span processor reports its own operational metrics through the
// sdkmetric API this module provides, following the shape of the
// teacher's batchprocessor package: a size-triggered send bumps
// batch_size_trigger_send, records the sent batch's size and byte size,
// and counts every span as processed-and-not-dropped.
func TestBatchSpanProcessorSelfMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp,
		WithMaxQueueSize(10), WithMaxExportBatchSize(4), WithBatchTimeout(time.Hour),
		WithProcessorMeterProvider(mp))
	defer bsp.Shutdown(context.Background())

	for i := 0; i < 4; i++ {
		bsp.OnEnd(endedSpan("s"))
	}
	require.Eventually(t, func() bool { return exp.total() == 4 }, time.Second, time.Millisecond)

	rm, err := reader.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, rm.ScopeMetrics, 1)

	found := map[string]bool{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		switch m.Name {
		case "batch_size_trigger_send":
			require.NotNil(t, m.Data.Sum)
			require.Len(t, m.Data.Sum.DataPoints, 1)
			assert.Equal(t, float64(1), m.Data.Sum.DataPoints[0].Value)
			found[m.Name] = true
		case "batch_send_size":
			require.NotNil(t, m.Data.Histogram)
			require.Len(t, m.Data.Histogram.DataPoints, 1)
			assert.Equal(t, uint64(1), m.Data.Histogram.DataPoints[0].Count)
			assert.Equal(t, float64(4), m.Data.Histogram.DataPoints[0].Sum)
			found[m.Name] = true
		case "batch_send_size_bytes":
			require.NotNil(t, m.Data.Histogram)
			require.Len(t, m.Data.Histogram.DataPoints, 1)
			assert.True(t, m.Data.Histogram.DataPoints[0].Sum > 0)
			found[m.Name] = true
		case "otel.sdk.span_processor.processed_spans":
			require.NotNil(t, m.Data.Sum)
			var total float64
			for _, dp := range m.Data.Sum.DataPoints {
				total += dp.Value
			}
			assert.Equal(t, float64(4), total)
			found[m.Name] = true
		case "otel.sdk.span_processor.queue_size":
			require.NotNil(t, m.Data.Gauge)
			found[m.Name] = true
		}
	}
	for _, name := range []string{
		"batch_size_trigger_send", "batch_send_size", "batch_send_size_bytes",
		"otel.sdk.span_processor.processed_spans", "otel.sdk.span_processor.queue_size",
	} {
		assert.True(t, found[name], "missing self metric %q", name)
	}
}

func TestNeverSampleDropsSpanBeforeProcessor(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithBatchTimeout(time.Hour))
	defer bsp.Shutdown(context.Background())

	tp := NewTracerProvider(WithSampler(NeverSample()), WithSpanProcessor(bsp))
	tracer := tp.Tracer("test")

	_, span := tracer.Start(context.Background(), "op")
	assert.False(t, span.IsRecording())
	span.End()

	require.NoError(t, bsp.ForceFlush(context.Background()))
	assert.Equal(t, 0, exp.total())
}
