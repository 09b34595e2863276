package sdktrace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
)

func TestSpanAttributeLimitDropsExcess(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithBatchTimeout(time.Hour))
	defer bsp.Shutdown(context.Background())

	tp := NewTracerProvider(WithSpanProcessor(bsp), WithSpanLimits(SpanLimits{AttributeCountLimit: 2}))
	tracer := tp.Tracer("test")

	_, span := tracer.Start(context.Background(), "op")
	span.SetAttributes(attribute.String("a", "1"), attribute.String("b", "2"), attribute.String("c", "3"))
	span.End()

	require.NoError(t, bsp.ForceFlush(context.Background()))
	require.Len(t, exp.batches, 1)
	data := exp.batches[0][0]
	assert.Len(t, data.Attributes, 2)
	assert.Equal(t, 1, data.DroppedAttributeCount)
}

func TestSpanEventLimitDropsOldest(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithBatchTimeout(time.Hour))
	defer bsp.Shutdown(context.Background())

	tp := NewTracerProvider(WithSpanProcessor(bsp), WithSpanLimits(SpanLimits{EventCountLimit: 1, AttributeCountLimit: 128}))
	tracer := tp.Tracer("test")

	_, span := tracer.Start(context.Background(), "op")
	span.AddEvent("first")
	span.AddEvent("second")
	span.End()

	require.NoError(t, bsp.ForceFlush(context.Background()))
	data := exp.batches[0][0]
	require.Len(t, data.Events, 1)
	assert.Equal(t, "second", data.Events[0].Name)
	assert.Equal(t, 1, data.DroppedEventCount)
}

func TestSpanSetStatusErrorSticky(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithBatchTimeout(time.Hour))
	defer bsp.Shutdown(context.Background())

	tp := NewTracerProvider(WithSpanProcessor(bsp))
	tracer := tp.Tracer("test")

	_, span := tracer.Start(context.Background(), "op")
	span.SetStatus(StatusCodeError, "boom")
	span.SetStatus(StatusCodeOK, "")
	span.End()

	require.NoError(t, bsp.ForceFlush(context.Background()))
	data := exp.batches[0][0]
	assert.Equal(t, StatusCodeError, data.Status.Code)
	assert.Equal(t, "boom", data.Status.Description)
}

func TestSpanEndIsIdempotent(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithBatchTimeout(time.Hour))
	defer bsp.Shutdown(context.Background())

	tp := NewTracerProvider(WithSpanProcessor(bsp))
	tracer := tp.Tracer("test")

	_, span := tracer.Start(context.Background(), "op")
	span.End()
	span.End()

	require.NoError(t, bsp.ForceFlush(context.Background()))
	assert.Equal(t, 1, exp.total())
}

func TestMutationsAfterEndAreNoOps(t *testing.T) {
	exp := &recordingExporter{}
	bsp := NewBatchSpanProcessor(exp, WithBatchTimeout(time.Hour))
	defer bsp.Shutdown(context.Background())

	tp := NewTracerProvider(WithSpanProcessor(bsp))
	tracer := tp.Tracer("test")

	_, span := tracer.Start(context.Background(), "op")
	span.End()
	span.SetAttributes(attribute.String("late", "v"))
	span.AddEvent("late-event")
	span.SetStatus(StatusCodeError, "late")

	assert.False(t, span.IsRecording())
}
