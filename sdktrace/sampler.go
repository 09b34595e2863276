package sdktrace

import (
	"encoding/binary"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/trace"
)

// SamplingDecision is the outcome of a sampling call (spec.md §1: sampler
// implementations beyond their interface contract are out of scope; the
// four below are the minimal set autoconfigure needs for its default
// build, not a general sampler library).
type SamplingDecision int

const (
	Drop SamplingDecision = iota
	RecordOnly
	RecordAndSample
)

// SamplingParameters carries the inputs available to a Sampler at
// span-start time.
type SamplingParameters struct {
	ParentContext trace.SpanContext
	TraceID       trace.TraceID
	Name          string
	Kind          SpanKind
	Attributes    []attribute.KeyValue
	Links         []Link
}

// SamplingResult is a Sampler's verdict.
type SamplingResult struct {
	Decision   SamplingDecision
	Attributes []attribute.KeyValue
	Tracestate trace.TraceState
}

// Sampler decides whether a new span should be recorded and/or exported.
type Sampler interface {
	ShouldSample(p SamplingParameters) SamplingResult
	Description() string
}

type alwaysOnSampler struct{}

func (alwaysOnSampler) ShouldSample(p SamplingParameters) SamplingResult {
	return SamplingResult{Decision: RecordAndSample, Tracestate: p.ParentContext.TraceState()}
}
func (alwaysOnSampler) Description() string { return "AlwaysOnSampler" }

// AlwaysSample returns a Sampler that samples every span.
func AlwaysSample() Sampler { return alwaysOnSampler{} }

type alwaysOffSampler struct{}

func (alwaysOffSampler) ShouldSample(p SamplingParameters) SamplingResult {
	return SamplingResult{Decision: Drop, Tracestate: p.ParentContext.TraceState()}
}
func (alwaysOffSampler) Description() string { return "AlwaysOffSampler" }

// NeverSample returns a Sampler that samples no spans.
func NeverSample() Sampler { return alwaysOffSampler{} }

type traceIDRatioSampler struct {
	ratio   float64
	upperBound uint64
}

// TraceIDRatioBased samples a deterministic fraction of traces, keyed by
// the low 8 bytes of the trace id (the conventional OTel approach).
func TraceIDRatioBased(ratio float64) Sampler {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return &traceIDRatioSampler{ratio: ratio, upperBound: uint64(ratio * (1 << 63))}
}

func (s *traceIDRatioSampler) ShouldSample(p SamplingParameters) SamplingResult {
	x := binary.BigEndian.Uint64(p.TraceID[8:16]) >> 1
	decision := Drop
	if x < s.upperBound {
		decision = RecordAndSample
	}
	return SamplingResult{Decision: decision, Tracestate: p.ParentContext.TraceState()}
}

func (s *traceIDRatioSampler) Description() string {
	return "TraceIDRatioBased"
}

type parentBasedSampler struct {
	root                   Sampler
	remoteParentSampled    Sampler
	remoteParentNotSampled Sampler
	localParentSampled     Sampler
	localParentNotSampled  Sampler
}

// ParentBasedOption configures ParentBased's fallback samplers for the four
// parent-context cases.
type ParentBasedOption func(*parentBasedSampler)

func WithRemoteParentSampled(s Sampler) ParentBasedOption {
	return func(p *parentBasedSampler) { p.remoteParentSampled = s }
}
func WithRemoteParentNotSampled(s Sampler) ParentBasedOption {
	return func(p *parentBasedSampler) { p.remoteParentNotSampled = s }
}
func WithLocalParentSampled(s Sampler) ParentBasedOption {
	return func(p *parentBasedSampler) { p.localParentSampled = s }
}
func WithLocalParentNotSampled(s Sampler) ParentBasedOption {
	return func(p *parentBasedSampler) { p.localParentNotSampled = s }
}

// ParentBased defers to root for spans with no valid parent, and otherwise
// keys its decision on whether the parent was remote and sampled.
func ParentBased(root Sampler, opts ...ParentBasedOption) Sampler {
	p := &parentBasedSampler{
		root:                   root,
		remoteParentSampled:    AlwaysSample(),
		remoteParentNotSampled: NeverSample(),
		localParentSampled:     AlwaysSample(),
		localParentNotSampled:  NeverSample(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *parentBasedSampler) ShouldSample(sp SamplingParameters) SamplingResult {
	psc := sp.ParentContext
	if !psc.IsValid() {
		return p.root.ShouldSample(sp)
	}
	if psc.IsRemote() {
		if psc.IsSampled() {
			return p.remoteParentSampled.ShouldSample(sp)
		}
		return p.remoteParentNotSampled.ShouldSample(sp)
	}
	if psc.IsSampled() {
		return p.localParentSampled.ShouldSample(sp)
	}
	return p.localParentNotSampled.ShouldSample(sp)
}

func (p *parentBasedSampler) Description() string { return "ParentBased{root:" + p.root.Description() + "}" }
