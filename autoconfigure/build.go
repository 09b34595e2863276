// Package autoconfigure implements the deterministic nine-step SDK
// assembly (spec.md §4.5, component C9): merge configuration, run
// customizer providers, detect the resource, and build the
// TracerProvider/MeterProvider/LoggerProvider/propagators from whatever
// the SPI registries resolve, cleaning up everything already constructed
// if a later step fails.
package autoconfigure

import (
	"context"
	"fmt"

	"github.com/YaoYingLong/eleven-otelcore/propagation"
	"github.com/YaoYingLong/eleven-otelcore/resource"
	"github.com/YaoYingLong/eleven-otelcore/sdklog"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric"
	"github.com/YaoYingLong/eleven-otelcore/sdktrace"
)

// backgroundCtx is used for the Closeable shutdown calls issued during a
// partial-failure cleanup or the final sdk-disabled branch, where no
// caller context is available.
var backgroundCtx = context.Background()

// closeableStack tracks every Closeable (exporter, reader, provider)
// created during a build, in construction order, so a later failure can
// close them in reverse order (spec.md §4.5 "Partial-failure semantics").
type closeableStack struct {
	closers []func() error
}

func (s *closeableStack) push(close func() error) { s.closers = append(s.closers, close) }

func (s *closeableStack) closeAll() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SDK is the fully assembled result of Build: every provider, the
// resolved propagators, and an aggregate Shutdown tying them together.
type SDK struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider
	Propagator     propagation.TextMapPropagator
	Resource       *resource.Resource
	Properties     *ConfigProperties
	Disabled       bool

	closeables *closeableStack
}

// Shutdown shuts down every provider this SDK built, in reverse
// construction order, returning the first error encountered.
func (s *SDK) Shutdown(_ context.Context) error {
	if s.closeables == nil {
		return nil
	}
	return s.closeables.closeAll()
}

// BuildOptions configures one autoconfigure.Build call.
type BuildOptions struct {
	// PropertiesSuppliers are merged in order (spec.md §4.5 step 1).
	PropertiesSuppliers []PropertiesSupplier
	// SystemOverrides wins over every other property source (spec.md §6:
	// "system" is the highest-precedence layer; a library embedder
	// supplies this instead of JVM -D flags).
	SystemOverrides map[string]string
	// ResourceProviderOrder names which registered ResourceProviders run,
	// and in what order, before enabled/disabled filtering (spec.md §4.5
	// step 3).
	ResourceProviderOrder []string
	// Registries supplies the SPI registries to resolve every pluggable
	// name against. If nil, NewSPIRegistries() is used, giving access to
	// this module's built-in "otlp"/"logging" exporters, standard
	// samplers, and host/process resource detectors.
	Registries *SPIRegistries
}

// Build runs the deterministic nine-step assembly from spec.md §4.5.
func Build(opts BuildOptions) (*SDK, error) {
	registries := opts.Registries
	if registries == nil {
		registries = NewSPIRegistries()
	}
	resourceOrder := opts.ResourceProviderOrder
	if resourceOrder == nil {
		resourceOrder = []string{"host", "process"}
	}

	// Step 2: run every registered AutoConfigurationCustomizerProvider,
	// in registration order, against one shared handle.
	customizer := newAutoConfigurationCustomizer()
	for _, provider := range registries.customizerProviders {
		provider(customizer)
	}

	// Step 1: compute ConfigProperties (suppliers, then that handle's
	// accumulated PropertiesCustomizers, then environment, then system).
	props := resolveProperties(opts.PropertiesSuppliers, customizer.propertiesCustomizers, opts.SystemOverrides)

	closeables := &closeableStack{}
	sdk, err := buildFrom(props, registries, customizer, resourceOrder, closeables)
	if err != nil {
		if closeErr := closeables.closeAll(); closeErr != nil {
			return nil, fmt.Errorf("%w (cleanup also failed: %v)", err, closeErr)
		}
		return nil, err
	}
	return sdk, nil
}

func buildFrom(props *ConfigProperties, registries *SPIRegistries, customizer *AutoConfigurationCustomizer, resourceOrder []string, closeables *closeableStack) (*SDK, error) {
	// Step 4: sdk-disabled short-circuit returns inert no-op providers
	// without running resource detection or any exporter/reader SPI
	// lookups, but after properties/customizers have already run.
	if props.GetBool("otel.sdk.disabled", false) {
		return &SDK{
			TracerProvider: sdktrace.NewTracerProvider(),
			MeterProvider:  sdkmetric.NewMeterProvider(),
			LoggerProvider: sdklog.NewLoggerProvider(),
			Propagator:     propagation.NewCompositeTextMapPropagator(),
			Resource:       resource.Empty(),
			Properties:     props,
			Disabled:       true,
			closeables:     closeables,
		}, nil
	}

	// Step 3: resource detection + merge + customizer.
	res, err := buildResource(backgroundCtx, props, registries, resourceOrder, customizer.Resource)
	if err != nil {
		return nil, err
	}

	// Step 5: MeterProvider.
	meterProvider, err := buildMeterProvider(res, props, registries, customizer, &MeterProviderBuilder{}, closeables)
	if err != nil {
		return nil, err
	}

	// Step 6: TracerProvider.
	tracerProvider, err := buildTracerProvider(res, props, registries, customizer, &TracerProviderBuilder{}, closeables)
	if err != nil {
		return nil, err
	}

	// Step 7: LoggerProvider.
	loggerProvider, err := buildLoggerProvider(res, props, registries, customizer, &LoggerProviderBuilder{}, closeables)
	if err != nil {
		return nil, err
	}

	// Step 8: propagators.
	propagator, err := buildPropagators(props, registries, customizer)
	if err != nil {
		return nil, err
	}

	// Step 9 (shutdown hook / global registration) is left to the caller
	// (otelsdk), which is where a host application decides whether to
	// install globals — spec.md §4.5 step 9 calls both optional.
	return &SDK{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		LoggerProvider: loggerProvider,
		Propagator:     propagator,
		Resource:       res,
		Properties:     props,
		closeables:     closeables,
	}, nil
}
