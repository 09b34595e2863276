package trace

import "context"

// Span is the minimal read side of a span that the trace package can see
// without depending on sdktrace's full mutable implementation (which in
// turn depends on this package for identity types).
type Span interface {
	SpanContext() SpanContext
	IsRecording() bool
}

type noopSpan struct{}

func (noopSpan) SpanContext() SpanContext { return SpanContext{} }
func (noopSpan) IsRecording() bool        { return false }

type spanContextKeyType struct{}

var spanContextKey = spanContextKeyType{}

// ContextWithSpan returns a copy of ctx carrying span.
func ContextWithSpan(ctx context.Context, span Span) context.Context {
	return context.WithValue(ctx, spanContextKey, span)
}

// ContextWithSpanContext returns a copy of ctx carrying a detached
// SpanContext, used when propagating identity without a live Span (e.g.
// after extracting from a remote carrier).
func ContextWithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return ContextWithSpan(ctx, spanContextHolder{sc})
}

type spanContextHolder struct{ sc SpanContext }

func (s spanContextHolder) SpanContext() SpanContext { return s.sc }
func (s spanContextHolder) IsRecording() bool        { return false }

// SpanFromContext extracts the current Span, or a no-op Span if none is set.
func SpanFromContext(ctx context.Context) Span {
	if ctx == nil {
		return noopSpan{}
	}
	if s, ok := ctx.Value(spanContextKey).(Span); ok {
		return s
	}
	return noopSpan{}
}

// SpanContextFromContext is a convenience for SpanFromContext(ctx).SpanContext().
func SpanContextFromContext(ctx context.Context) SpanContext {
	return SpanFromContext(ctx).SpanContext()
}
