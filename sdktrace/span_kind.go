// Package sdktrace implements the tracing pipeline: the mutable Span type,
// its frozen SpanData snapshot, the Sampler contract, the Tracer/
// TracerProvider builders, and the BatchSpanProcessor (spec.md §4.1,
// component C7 — the core deliverable of this module's tracing half).
package sdktrace

// SpanKind describes the relationship between a span and its caller/callees.
type SpanKind int

const (
	SpanKindUnspecified SpanKind = iota
	SpanKindInternal
	SpanKindServer
	SpanKindClient
	SpanKindProducer
	SpanKindConsumer
)

func (k SpanKind) String() string {
	switch k {
	case SpanKindInternal:
		return "internal"
	case SpanKindServer:
		return "server"
	case SpanKindClient:
		return "client"
	case SpanKindProducer:
		return "producer"
	case SpanKindConsumer:
		return "consumer"
	default:
		return "unspecified"
	}
}

// StatusCode is the span's outcome classification.
type StatusCode int

const (
	StatusCodeUnset StatusCode = iota
	StatusCodeOK
	StatusCodeError
)

// Status is the span's outcome: a code plus an optional description,
// meaningful mainly when Code is StatusCodeError.
type Status struct {
	Code        StatusCode
	Description string
}
