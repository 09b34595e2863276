package sdklog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/resource"
	"github.com/YaoYingLong/eleven-otelcore/trace"
)

// LoggerProvider owns the Resource and every registered LogRecordProcessor,
// the logs counterpart to sdktrace.TracerProvider.
type LoggerProvider struct {
	mu         sync.Mutex
	processors []LogRecordProcessor
	resource   *resource.Resource
	shutdown   bool

	loggers map[InstrumentationScope]*Logger
}

type LoggerProviderOption func(*LoggerProvider)

func WithLoggerResource(r *resource.Resource) LoggerProviderOption {
	return func(p *LoggerProvider) { p.resource = r }
}

func WithLogRecordProcessor(proc LogRecordProcessor) LoggerProviderOption {
	return func(p *LoggerProvider) { p.processors = append(p.processors, proc) }
}

func NewLoggerProvider(opts ...LoggerProviderOption) *LoggerProvider {
	p := &LoggerProvider{
		resource: resource.Default(),
		loggers:  make(map[InstrumentationScope]*Logger),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *LoggerProvider) Logger(name string, opts ...LoggerOption) *Logger {
	cfg := newLoggerConfig(opts)
	scope := InstrumentationScope{Name: name, Version: cfg.version, SchemaURL: cfg.schemaURL}

	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.loggers[scope]; ok {
		return l
	}
	l := &Logger{provider: p, scope: scope}
	p.loggers[scope] = l
	return l
}

func (p *LoggerProvider) processorsSnapshot() []LogRecordProcessor {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]LogRecordProcessor, len(p.processors))
	copy(out, p.processors)
	return out
}

func (p *LoggerProvider) ForceFlush(ctx context.Context) error {
	var firstErr error
	for _, proc := range p.processorsSnapshot() {
		if err := proc.ForceFlush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (p *LoggerProvider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return nil
	}
	p.shutdown = true
	p.mu.Unlock()

	var firstErr error
	for _, proc := range p.processorsSnapshot() {
		if err := proc.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutting down log record processor: %w", err)
		}
	}
	return firstErr
}

// LoggerOption configures a Logger's instrumentation scope.
type LoggerOption func(*loggerConfig)

type loggerConfig struct {
	version, schemaURL string
}

func newLoggerConfig(opts []LoggerOption) loggerConfig {
	c := loggerConfig{}
	for _, o := range opts {
		o(&c)
	}
	return c
}

func WithLoggerInstrumentationVersion(v string) LoggerOption {
	return func(c *loggerConfig) { c.version = v }
}

func WithLoggerSchemaURL(v string) LoggerOption {
	return func(c *loggerConfig) { c.schemaURL = v }
}

// Logger emits log records scoped to one instrumentation scope.
type Logger struct {
	provider *LoggerProvider
	scope    InstrumentationScope
}

// RecordOptions configures a single Emit call.
type RecordOptions struct {
	Timestamp    time.Time
	Severity     Severity
	SeverityText string
	Body         attribute.Value
	Attributes   []attribute.KeyValue
}

// Emit builds a LogRecordData from ctx (for trace correlation) and opts,
// and notifies every registered processor.
func (l *Logger) Emit(ctx context.Context, opts RecordOptions) {
	ts := opts.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	record := LogRecordData{
		Timestamp:            ts,
		ObservedTimestamp:    time.Now(),
		SpanContext:          trace.SpanContextFromContext(ctx),
		Severity:             opts.Severity,
		SeverityText:         opts.SeverityText,
		Body:                 opts.Body,
		Attributes:           opts.Attributes,
		Resource:             l.provider.resource,
		InstrumentationScope: l.scope,
	}
	for _, proc := range l.provider.processorsSnapshot() {
		proc.OnEmit(ctx, record)
	}
}
