package trace

// SpanContext is the immutable, propagatable identity of a span: trace id,
// span id, trace flags, and trace state (spec.md §3). Equality is by all
// fields, including the remote flag, matching the Java source's
// ImmutableSpanContext AutoValue (retrieved at
// original_source/api/all/.../AutoValue_ImmutableSpanContext.java).
type SpanContext struct {
	traceID    TraceID
	spanID     SpanID
	traceFlags TraceFlags
	traceState TraceState
	remote     bool
}

// NewSpanContext builds a SpanContext from its config.
func NewSpanContext(cfg SpanContextConfig) SpanContext {
	return SpanContext{
		traceID:    cfg.TraceID,
		spanID:     cfg.SpanID,
		traceFlags: cfg.TraceFlags,
		traceState: cfg.TraceState,
		remote:     cfg.Remote,
	}
}

// SpanContextConfig groups SpanContext's fields for NewSpanContext.
type SpanContextConfig struct {
	TraceID    TraceID
	SpanID     SpanID
	TraceFlags TraceFlags
	TraceState TraceState
	Remote     bool
}

func (sc SpanContext) TraceID() TraceID         { return sc.traceID }
func (sc SpanContext) SpanID() SpanID           { return sc.spanID }
func (sc SpanContext) TraceFlags() TraceFlags   { return sc.traceFlags }
func (sc SpanContext) TraceState() TraceState   { return sc.traceState }
func (sc SpanContext) IsRemote() bool           { return sc.remote }
func (sc SpanContext) IsSampled() bool          { return sc.traceFlags.IsSampled() }

// IsValid reports whether both the trace id and span id are non-zero
// (spec.md §3: "valid iff both ids are non-zero").
func (sc SpanContext) IsValid() bool {
	return sc.traceID.IsValid() && sc.spanID.IsValid()
}

// WithRemote returns a copy of sc with the remote flag set to remote.
func (sc SpanContext) WithRemote(remote bool) SpanContext {
	sc.remote = remote
	return sc
}

// WithTraceState returns a copy of sc with its trace state replaced.
func (sc SpanContext) WithTraceState(ts TraceState) SpanContext {
	sc.traceState = ts
	return sc
}

// Equal reports field-by-field equality, matching the Java AutoValue
// equals() contract this type is grounded on.
func (sc SpanContext) Equal(other SpanContext) bool {
	return sc.traceID == other.traceID &&
		sc.spanID == other.spanID &&
		sc.traceFlags == other.traceFlags &&
		sc.traceState.String() == other.traceState.String() &&
		sc.remote == other.remote
}
