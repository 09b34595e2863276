package sdktrace

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/YaoYingLong/eleven-otelcore/internal"
	"github.com/YaoYingLong/eleven-otelcore/resource"
	"github.com/YaoYingLong/eleven-otelcore/trace"
)

// TracerProvider is the entry point for obtaining Tracers; it owns the
// Sampler, IDGenerator, Resource, SpanLimits, and the chain of registered
// SpanProcessors every span flows through.
type TracerProvider struct {
	mu         sync.Mutex
	processors []SpanProcessor
	sampler    Sampler
	idGen      trace.IDGenerator
	resource   *resource.Resource
	spanLimits SpanLimits
	tracers    map[InstrumentationScope]*Tracer
	shutdown   bool
	logger     *internal.ThrottlingLogger
}

// TracerProviderOption configures a TracerProvider at construction.
type TracerProviderOption func(*TracerProvider)

func WithSampler(s Sampler) TracerProviderOption {
	return func(p *TracerProvider) { p.sampler = s }
}

func WithIDGenerator(g trace.IDGenerator) TracerProviderOption {
	return func(p *TracerProvider) { p.idGen = g }
}

func WithResource(r *resource.Resource) TracerProviderOption {
	return func(p *TracerProvider) { p.resource = r }
}

func WithSpanLimits(l SpanLimits) TracerProviderOption {
	return func(p *TracerProvider) { p.spanLimits = l }
}

func WithSpanProcessor(sp SpanProcessor) TracerProviderOption {
	return func(p *TracerProvider) { p.processors = append(p.processors, sp) }
}

// WithLogger injects the zap.Logger backing this provider's throttled
// warnings; defaults to a no-op logger.
func WithLogger(l *zap.Logger) TracerProviderOption {
	return func(p *TracerProvider) { p.logger = internal.NewThrottlingLogger(l) }
}

// NewTracerProvider builds a TracerProvider with the given options, falling
// back to AlwaysOn sampling, a random IDGenerator, the default Resource,
// and DefaultSpanLimits (spec.md §4.5 step 5/6).
func NewTracerProvider(opts ...TracerProviderOption) *TracerProvider {
	p := &TracerProvider{
		sampler:    AlwaysSample(),
		idGen:      trace.NewRandomIDGenerator(),
		resource:   resource.Default(),
		spanLimits: DefaultSpanLimits(),
		tracers:    make(map[InstrumentationScope]*Tracer),
		logger:     internal.NewThrottlingLogger(nil),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Tracer returns a cached Tracer for the given instrumentation scope,
// creating it on first use.
func (p *TracerProvider) Tracer(name string, opts ...TracerOption) *Tracer {
	cfg := newTracerConfig(opts)
	scope := InstrumentationScope{Name: name, Version: cfg.version, SchemaURL: cfg.schemaURL}

	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.tracers[scope]; ok {
		return t
	}
	t := &Tracer{scope: scope, provider: p}
	p.tracers[scope] = t
	return t
}

func (p *TracerProvider) processorsSnapshot() []SpanProcessor {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SpanProcessor, len(p.processors))
	copy(out, p.processors)
	return out
}

// RegisterSpanProcessor adds a processor after construction.
func (p *TracerProvider) RegisterSpanProcessor(sp SpanProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processors = append(p.processors, sp)
}

// Shutdown shuts down every registered processor in registration order,
// collecting and returning the first error encountered (spec.md §7: one
// component's failure must not prevent the others from shutting down).
func (p *TracerProvider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return nil
	}
	p.shutdown = true
	processors := make([]SpanProcessor, len(p.processors))
	copy(processors, p.processors)
	p.mu.Unlock()

	var firstErr error
	for _, proc := range processors {
		if err := proc.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutting down span processor: %w", err)
		}
	}
	return firstErr
}

// ForceFlush flushes every registered processor, collecting the first error.
func (p *TracerProvider) ForceFlush(ctx context.Context) error {
	var firstErr error
	for _, proc := range p.processorsSnapshot() {
		if err := proc.ForceFlush(ctx); err != nil {
			p.logger.Warn("force-flush-failure", "span processor force flush failed", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// TracerOption configures Tracer lookup via TracerProvider.Tracer.
type TracerOption func(*tracerConfig)

type tracerConfig struct {
	version   string
	schemaURL string
}

func newTracerConfig(opts []TracerOption) tracerConfig {
	c := tracerConfig{}
	for _, o := range opts {
		o(&c)
	}
	return c
}

func WithInstrumentationVersion(v string) TracerOption {
	return func(c *tracerConfig) { c.version = v }
}

func WithSchemaURL(v string) TracerOption {
	return func(c *tracerConfig) { c.schemaURL = v }
}
