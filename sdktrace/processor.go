package sdktrace

import "context"

// SpanExporter is the export contract the processors in this package
// drive; sdktrace/export declares the same interface for exporter
// implementations, and this copy avoids this package importing its own
// export subpackage.
type SpanExporter interface {
	ExportSpans(ctx context.Context, spans []SpanData) error
	Shutdown(ctx context.Context) error
}

// SpanProcessor observes the span lifecycle. A Tracer notifies every
// registered processor on start and on end (spec.md §4.1).
type SpanProcessor interface {
	OnStart(parent context.Context, s *Span)
	OnEnd(s SpanData)
	Shutdown(ctx context.Context) error
	ForceFlush(ctx context.Context) error
}

// SimpleSpanProcessor exports each span synchronously as it ends. It exists
// mainly for tests and examples; production pipelines use
// BatchSpanProcessor (spec.md §4.1 implies batching is the default path).
type SimpleSpanProcessor struct {
	exporter SpanExporter
}

func NewSimpleSpanProcessor(exporter SpanExporter) *SimpleSpanProcessor {
	return &SimpleSpanProcessor{exporter: exporter}
}

func (p *SimpleSpanProcessor) OnStart(context.Context, *Span) {}

func (p *SimpleSpanProcessor) OnEnd(s SpanData) {
	_ = p.exporter.ExportSpans(context.Background(), []SpanData{s})
}

func (p *SimpleSpanProcessor) Shutdown(ctx context.Context) error {
	return p.exporter.Shutdown(ctx)
}

func (p *SimpleSpanProcessor) ForceFlush(context.Context) error { return nil }
