package autoconfigure

import (
	"github.com/YaoYingLong/eleven-otelcore/resource"
	"github.com/YaoYingLong/eleven-otelcore/sdklog"
)

// buildLoggerProvider implements spec.md §4.5 step 7 ("Build LoggerProvider
// likewise"): the same shape as buildTracerProvider, resolving
// otel.logs.exporter names against the LogRecordExporter SPI and wrapping
// each in a BatchLogRecordProcessor.
func buildLoggerProvider(res *resource.Resource, props *ConfigProperties, registries *SPIRegistries, customizer *AutoConfigurationCustomizer, builder *LoggerProviderBuilder, closeables *closeableStack) (*sdklog.LoggerProvider, error) {
	builder.AddOption(sdklog.WithLoggerResource(res))

	exporterNames := props.GetStringSlice("otel.logs.exporter", []string{"otlp"})
	if !isNone(exporterNames) {
		for _, name := range exporterNames {
			factory, ok := registries.LogRecordExporters.Lookup(name)
			if !ok {
				return nil, configErrorf("logger-provider", "no ConfigurableLogRecordExporterProvider registered for %q", name)
			}
			exporter, err := factory(props)
			if err != nil {
				return nil, configErrorf("logger-provider", "building log record exporter %q: %w", name, err)
			}
			exporter = customizer.LogRecordExporter.Apply(exporter, props)
			processor := sdklog.NewBatchLogRecordProcessor(exporter, sdklog.WithProcessorLogger(registries.Logger))
			closeables.push(func() error { return processor.Shutdown(backgroundCtx) })
			builder.AddOption(sdklog.WithLogRecordProcessor(processor))
		}
	}

	builder.Options = customizer.LoggerProvider.Apply(builder, props).Options
	provider := sdklog.NewLoggerProvider(builder.Options...)
	closeables.push(func() error { return provider.Shutdown(backgroundCtx) })
	return provider, nil
}
