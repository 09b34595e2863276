// Package export holds the SpanExporter contract the BatchSpanProcessor
// drains batches into (spec.md §4.1, §6).
package export

import (
	"context"

	"github.com/YaoYingLong/eleven-otelcore/sdktrace"
)

// SpanExporter sends completed spans to a backend. Implementations must
// not retry internally; the processor treats Export's error as terminal
// for that batch (spec.md §7: one failed export logs and continues,
// never panics the worker).
type SpanExporter interface {
	ExportSpans(ctx context.Context, spans []sdktrace.SpanData) error
	Shutdown(ctx context.Context) error
}
