package autoconfigure

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/YaoYingLong/eleven-otelcore/propagation"
	"github.com/YaoYingLong/eleven-otelcore/resource"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric"
	metricexport "github.com/YaoYingLong/eleven-otelcore/sdkmetric/export"
	logexport "github.com/YaoYingLong/eleven-otelcore/sdklog/export"
	"github.com/YaoYingLong/eleven-otelcore/sdktrace"
	traceexport "github.com/YaoYingLong/eleven-otelcore/sdktrace/export"
)

// SPIRegistry is a name-keyed provider registry — spec.md §6's
// "classpath-scanning loader" reimplemented per spec.md §9 as "an
// explicit plugin registry ... populated by compile-time registration".
type SPIRegistry[T any] struct {
	mu     sync.Mutex
	byName map[string]T
}

func NewSPIRegistry[T any]() *SPIRegistry[T] {
	return &SPIRegistry[T]{byName: make(map[string]T)}
}

func (r *SPIRegistry[T]) Register(name string, provider T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = provider
}

func (r *SPIRegistry[T]) Lookup(name string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byName[name]
	return p, ok
}

// Factory types for every SPI extension point named in spec.md §6.
type (
	SpanExporterFactory       func(props *ConfigProperties) (traceexport.SpanExporter, error)
	MetricExporterFactory     func(props *ConfigProperties) (metricexport.MetricExporter, error)
	MetricReaderFactory       func(props *ConfigProperties) (sdkmetric.MetricReader, error)
	LogRecordExporterFactory  func(props *ConfigProperties) (logexport.LogRecordExporter, error)
	SamplerFactory            func(props *ConfigProperties) (sdktrace.Sampler, error)
	ResourceProviderFunc      func(ctx context.Context, props *ConfigProperties) (*resource.Resource, error)
	AutoConfigurationCustomizerProvider func(*AutoConfigurationCustomizer)
)

// SPIRegistries holds every pluggable-provider registry Build consults.
// ConfigurablePropagatorProvider (spec.md §6) is served by
// propagation.Registry directly — it already is a name-keyed resolver, so
// no separate wrapper type is introduced here.
type SPIRegistries struct {
	SpanExporters      *SPIRegistry[SpanExporterFactory]
	MetricExporters    *SPIRegistry[MetricExporterFactory]
	MetricReaders      *SPIRegistry[MetricReaderFactory]
	LogRecordExporters *SPIRegistry[LogRecordExporterFactory]
	Samplers           *SPIRegistry[SamplerFactory]
	ResourceProviders  *SPIRegistry[ResourceProviderFunc]
	Propagators        *propagation.Registry

	// Logger is the zap.Logger every built-in exporter and, via
	// buildTracerProvider/buildMeterProvider/buildLoggerProvider, every
	// processor/reader/provider constructed by Build is wired with.
	// Defaults to a no-op logger, matching the SDK's ambient default.
	Logger *zap.Logger

	customizerProviders []AutoConfigurationCustomizerProvider
}

// NewSPIRegistries returns registries pre-populated with this module's
// built-in providers (the "otlp" exporter stubs, the "always_on"/
// "always_off"/"traceidratio"/"parentbased_always_on" samplers, the
// "host"/"process" resource detectors) — see defaults.go.
func NewSPIRegistries() *SPIRegistries {
	r := &SPIRegistries{
		SpanExporters:      NewSPIRegistry[SpanExporterFactory](),
		MetricExporters:    NewSPIRegistry[MetricExporterFactory](),
		MetricReaders:      NewSPIRegistry[MetricReaderFactory](),
		LogRecordExporters: NewSPIRegistry[LogRecordExporterFactory](),
		Samplers:           NewSPIRegistry[SamplerFactory](),
		ResourceProviders:  NewSPIRegistry[ResourceProviderFunc](),
		Propagators:        propagation.NewRegistry(),
		Logger:             zap.NewNop(),
	}
	registerDefaultProviders(r)
	return r
}

// RegisterAutoConfigurationCustomizerProvider registers an
// AutoConfigurationCustomizerProvider in call order (spec.md §4.5 step 2:
// "apply SPI AutoConfigurationCustomizerProviders in ordered order").
func (r *SPIRegistries) RegisterAutoConfigurationCustomizerProvider(p AutoConfigurationCustomizerProvider) {
	r.customizerProviders = append(r.customizerProviders, p)
}

// AutoConfigurationCustomizer is the handle passed to every registered
// AutoConfigurationCustomizerProvider (spec.md §4.5 step 2). It
// accumulates one CustomizerChain per pluggable category.
type AutoConfigurationCustomizer struct {
	TracerProvider    *CustomizerChain[*TracerProviderBuilder]
	MeterProvider     *CustomizerChain[*MeterProviderBuilder]
	LoggerProvider    *CustomizerChain[*LoggerProviderBuilder]
	Propagator        *CustomizerChain[propagation.TextMapPropagator]
	Sampler           *CustomizerChain[sdktrace.Sampler]
	SpanExporter      *CustomizerChain[traceexport.SpanExporter]
	MetricExporter    *CustomizerChain[metricexport.MetricExporter]
	LogRecordExporter *CustomizerChain[logexport.LogRecordExporter]
	Resource          *CustomizerChain[*resource.Resource]

	propertiesCustomizers []PropertiesCustomizer
}

func newAutoConfigurationCustomizer() *AutoConfigurationCustomizer {
	return &AutoConfigurationCustomizer{
		TracerProvider:    NewCustomizerChain[*TracerProviderBuilder](),
		MeterProvider:     NewCustomizerChain[*MeterProviderBuilder](),
		LoggerProvider:    NewCustomizerChain[*LoggerProviderBuilder](),
		Propagator:        NewCustomizerChain[propagation.TextMapPropagator](),
		Sampler:           NewCustomizerChain[sdktrace.Sampler](),
		SpanExporter:      NewCustomizerChain[traceexport.SpanExporter](),
		MetricExporter:    NewCustomizerChain[metricexport.MetricExporter](),
		LogRecordExporter: NewCustomizerChain[logexport.LogRecordExporter](),
		Resource:          NewCustomizerChain[*resource.Resource](),
	}
}

// AddPropertiesCustomizer registers a PropertiesCustomizer (spec.md §4.5
// step 1) through the same handle used for every other category, so a
// single AutoConfigurationCustomizerProvider can touch properties too.
func (c *AutoConfigurationCustomizer) AddPropertiesCustomizer(f PropertiesCustomizer) {
	c.propertiesCustomizers = append(c.propertiesCustomizers, f)
}
