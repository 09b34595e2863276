package autoconfigure

import (
	"github.com/YaoYingLong/eleven-otelcore/resource"
	"github.com/YaoYingLong/eleven-otelcore/sdktrace"
)

// buildTracerProvider implements spec.md §4.5 step 6: resolve the
// sampler (configurable via otel.traces.sampler, default
// parentbased_always_on, customized), build span-limits, and for each
// name in otel.traces.exporter (default otlp; none disables export
// entirely) resolve a SpanExporter via the SpanExporter SPI, customize
// it, and wrap it in a BatchSpanProcessor.
func buildTracerProvider(res *resource.Resource, props *ConfigProperties, registries *SPIRegistries, customizer *AutoConfigurationCustomizer, builder *TracerProviderBuilder, closeables *closeableStack) (*sdktrace.TracerProvider, error) {
	samplerName := props.GetString("otel.traces.sampler", "parentbased_always_on")
	samplerFactory, ok := registries.Samplers.Lookup(samplerName)
	if !ok {
		return nil, configErrorf("tracer-provider", "unregistered sampler %q", samplerName)
	}
	sampler, err := samplerFactory(props)
	if err != nil {
		return nil, configErrorf("tracer-provider", "building sampler %q: %w", samplerName, err)
	}
	sampler = customizer.Sampler.Apply(sampler, props)

	limits := sdktrace.DefaultSpanLimits()
	if n := props.GetInt("otel.span.attribute.count.limit", -1); n >= 0 {
		limits.AttributeCountLimit = n
	}
	if n := props.GetInt("otel.span.event.count.limit", -1); n >= 0 {
		limits.EventCountLimit = n
	}
	if n := props.GetInt("otel.span.link.count.limit", -1); n >= 0 {
		limits.LinkCountLimit = n
	}

	exporterNames := props.GetStringSlice("otel.traces.exporter", []string{"otlp"})
	builder.AddOption(sdktrace.WithResource(res))
	builder.AddOption(sdktrace.WithSampler(sampler))
	builder.AddOption(sdktrace.WithSpanLimits(limits))
	builder.AddOption(sdktrace.WithLogger(registries.Logger))

	if !isNone(exporterNames) {
		for _, name := range exporterNames {
			factory, ok := registries.SpanExporters.Lookup(name)
			if !ok {
				return nil, configErrorf("tracer-provider", "no ConfigurableSpanExporterProvider registered for %q", name)
			}
			exporter, err := factory(props)
			if err != nil {
				return nil, configErrorf("tracer-provider", "building span exporter %q: %w", name, err)
			}
			exporter = customizer.SpanExporter.Apply(exporter, props)
			processor := sdktrace.NewBatchSpanProcessor(exporter, sdktrace.WithProcessorLogger(registries.Logger))
			closeables.push(func() error { return processor.Shutdown(backgroundCtx) })
			builder.AddOption(sdktrace.WithSpanProcessor(processor))
		}
	}

	builder.Options = customizer.TracerProvider.Apply(builder, props).Options
	provider := sdktrace.NewTracerProvider(builder.Options...)
	closeables.push(func() error { return provider.Shutdown(backgroundCtx) })
	return provider, nil
}

func isNone(names []string) bool {
	return len(names) == 1 && names[0] == "none"
}
