package sdktrace

import (
	"context"
	"time"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/trace"
)

// Tracer creates spans for one instrumentation scope.
type Tracer struct {
	scope    InstrumentationScope
	provider *TracerProvider
}

// StartOption configures Tracer.Start.
type StartOption interface{ applyStart(*spanStartConfig) }

type spanStartConfig struct {
	attrs     []attribute.KeyValue
	links     []Link
	kind      SpanKind
	timestamp time.Time
	newRoot   bool
}

func newSpanStartConfig(opts []StartOption) spanStartConfig {
	c := spanStartConfig{kind: SpanKindInternal}
	for _, o := range opts {
		o.applyStart(&c)
	}
	return c
}

type startAttrsOption []attribute.KeyValue

func (o startAttrsOption) applyStart(c *spanStartConfig) { c.attrs = append(c.attrs, o...) }

// WithAttributes attaches initial attributes at span creation.
func WithAttributes(kvs ...attribute.KeyValue) StartOption { return startAttrsOption(kvs) }

type startLinksOption []Link

func (o startLinksOption) applyStart(c *spanStartConfig) { c.links = append(c.links, o...) }

// WithLinks attaches initial links at span creation.
func WithLinks(links ...Link) StartOption { return startLinksOption(links) }

type startKindOption SpanKind

func (o startKindOption) applyStart(c *spanStartConfig) { c.kind = SpanKind(o) }

// WithSpanKind sets the span's kind; default SpanKindInternal.
func WithSpanKind(kind SpanKind) StartOption { return startKindOption(kind) }

type startTimestampOption time.Time

func (o startTimestampOption) applyStart(c *spanStartConfig) { c.timestamp = time.Time(o) }

// WithTimestamp overrides a span's start time; default is time.Now().
func WithTimestamp(t time.Time) StartOption { return startTimestampOption(t) }

type newRootOption bool

func (o newRootOption) applyStart(c *spanStartConfig) { c.newRoot = bool(o) }

// WithNewRoot forces Start to ignore any parent found in ctx.
func WithNewRoot() StartOption { return newRootOption(true) }

// Start creates a new Span as a child of the span in ctx (unless
// WithNewRoot is given), runs it through the TracerProvider's Sampler, and
// returns a context carrying the new span alongside the span itself.
func (t *Tracer) Start(ctx context.Context, name string, opts ...StartOption) (context.Context, *Span) {
	cfg := newSpanStartConfig(opts)

	var parentSC trace.SpanContext
	if !cfg.newRoot {
		parentSC = trace.SpanContextFromContext(ctx)
	}

	traceID := parentSC.TraceID()
	var spanID trace.SpanID
	if parentSC.IsValid() {
		spanID = t.provider.idGen.NewSpanID(traceID)
	} else {
		traceID, spanID = t.provider.idGen.NewIDs()
	}

	result := t.provider.sampler.ShouldSample(SamplingParameters{
		ParentContext: parentSC,
		TraceID:       traceID,
		Name:          name,
		Kind:          cfg.kind,
		Attributes:    cfg.attrs,
		Links:         cfg.links,
	})

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: flagsFromDecision(result.Decision),
		TraceState: result.Tracestate,
	})

	limits := t.provider.spanLimits
	startTime := cfg.timestamp
	if startTime.IsZero() {
		startTime = time.Now()
	}

	span := &Span{
		name:        name,
		spanContext: sc,
		parent:      parentSC,
		kind:        cfg.kind,
		startTime:   startTime,
		recording:   result.Decision != Drop,
		attrs:       newLimitedAttributeSet(limits.AttributeCountLimit, limits.AttributeValueLengthLimit),
		events:      newLimitedEventList(limits.EventCountLimit),
		links:       newLimitedLinkList(limits.LinkCountLimit),
		scope:       t.scope,
		tracer:      t,
	}
	span.attrs.add(cfg.attrs)
	span.attrs.add(result.Attributes)
	for _, l := range cfg.links {
		span.links.add(l)
	}

	newCtx := trace.ContextWithSpan(ctx, span)

	if span.recording {
		for _, p := range t.provider.processorsSnapshot() {
			p.OnStart(newCtx, span)
		}
	}

	return newCtx, span
}

func flagsFromDecision(d SamplingDecision) trace.TraceFlags {
	if d == RecordAndSample {
		return trace.FromByte(0x01)
	}
	return trace.FromByte(0x00)
}

// onEnd notifies every registered processor that the span has completed.
func (t *Tracer) onEnd(data SpanData) {
	for _, p := range t.provider.processorsSnapshot() {
		p.OnEnd(data)
	}
}
