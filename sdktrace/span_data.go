package sdktrace

import (
	"time"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/resource"
	"github.com/YaoYingLong/eleven-otelcore/trace"
)

// InstrumentationScope identifies the Tracer that created a span.
type InstrumentationScope struct {
	Name      string
	Version   string
	SchemaURL string
}

// SpanData is an immutable snapshot of a span taken at End() time, the
// unit the BatchSpanProcessor enqueues and the SpanExporter consumes
// (spec.md §3, §4.1).
type SpanData struct {
	Name                   string
	SpanContext            trace.SpanContext
	Parent                 trace.SpanContext
	SpanKind               SpanKind
	StartTime              time.Time
	EndTime                time.Time
	Attributes             []attribute.KeyValue
	DroppedAttributeCount  int
	Events                 []Event
	DroppedEventCount      int
	Links                  []Link
	DroppedLinkCount       int
	Status                 Status
	Resource               *resource.Resource
	InstrumentationScope   InstrumentationScope
	ChildSpanCount         int
}
