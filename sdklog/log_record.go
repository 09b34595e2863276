// Package sdklog implements the minimal logs pipeline SPEC_FULL.md adds
// beyond spec.md's traces/metrics scope: a LogRecordProcessor contract and
// a BatchLogRecordProcessor built the same way sdktrace's
// BatchSpanProcessor is (spec.md §4.1's batching shape generalizes
// directly — same bounded-queue-plus-ticker worker, grounded on
// original_source's LogRecordProcessor.java / BatchLogRecordProcessor.java).
package sdklog

import (
	"time"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/resource"
	"github.com/YaoYingLong/eleven-otelcore/trace"
)

// Severity mirrors the OpenTelemetry log data model's severity number
// ranges (original_source's Severity.java), kept coarse since wire
// encoding is out of scope.
type Severity int

const (
	SeverityUnspecified Severity = 0
	SeverityTrace       Severity = 1
	SeverityDebug       Severity = 5
	SeverityInfo        Severity = 9
	SeverityWarn        Severity = 13
	SeverityError       Severity = 17
	SeverityFatal       Severity = 21
)

// InstrumentationScope identifies the Logger a record was emitted from.
type InstrumentationScope struct {
	Name, Version, SchemaURL string
}

// LogRecordData is a frozen snapshot of one emitted log record, the unit a
// LogRecordProcessor/LogRecordExporter operates on.
type LogRecordData struct {
	Timestamp         time.Time
	ObservedTimestamp time.Time
	SpanContext       trace.SpanContext
	Severity          Severity
	SeverityText      string
	Body              attribute.Value
	Attributes        []attribute.KeyValue
	Resource          *resource.Resource
	InstrumentationScope InstrumentationScope
}
