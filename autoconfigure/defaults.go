package autoconfigure

import (
	"context"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/resource"
	logexport "github.com/YaoYingLong/eleven-otelcore/sdklog/export"
	metricexport "github.com/YaoYingLong/eleven-otelcore/sdkmetric/export"
	"github.com/YaoYingLong/eleven-otelcore/sdktrace"
	traceexport "github.com/YaoYingLong/eleven-otelcore/sdktrace/export"
)

// registerDefaultProviders wires this module's built-in SPI
// implementations, the ones the real SDK family ships out of the box
// (OTLP exporters, the standard sampler set, the host/process resource
// detectors).
func registerDefaultProviders(r *SPIRegistries) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r.SpanExporters.Register("otlp", func(props *ConfigProperties) (traceexport.SpanExporter, error) {
		cfg, err := otlpConfigFromProperties(props, "traces")
		if err != nil {
			return nil, err
		}
		return newOTLPSpanExporter(cfg, logger), nil
	})
	r.SpanExporters.Register("logging", func(props *ConfigProperties) (traceexport.SpanExporter, error) {
		cfg, err := otlpConfigFromProperties(props, "traces")
		if err != nil {
			return nil, err
		}
		return newOTLPSpanExporter(cfg, logger), nil
	})

	r.MetricExporters.Register("otlp", func(props *ConfigProperties) (metricexport.MetricExporter, error) {
		cfg, err := otlpConfigFromProperties(props, "metrics")
		if err != nil {
			return nil, err
		}
		return newOTLPMetricExporter(cfg, logger), nil
	})
	r.MetricExporters.Register("logging", func(props *ConfigProperties) (metricexport.MetricExporter, error) {
		cfg, err := otlpConfigFromProperties(props, "metrics")
		if err != nil {
			return nil, err
		}
		return newOTLPMetricExporter(cfg, logger), nil
	})

	r.LogRecordExporters.Register("otlp", func(props *ConfigProperties) (logexport.LogRecordExporter, error) {
		cfg, err := otlpConfigFromProperties(props, "logs")
		if err != nil {
			return nil, err
		}
		return newOTLPLogRecordExporter(cfg, logger), nil
	})
	r.LogRecordExporters.Register("logging", func(props *ConfigProperties) (logexport.LogRecordExporter, error) {
		cfg, err := otlpConfigFromProperties(props, "logs")
		if err != nil {
			return nil, err
		}
		return newOTLPLogRecordExporter(cfg, logger), nil
	})

	r.Samplers.Register("always_on", func(*ConfigProperties) (sdktrace.Sampler, error) {
		return sdktrace.AlwaysSample(), nil
	})
	r.Samplers.Register("always_off", func(*ConfigProperties) (sdktrace.Sampler, error) {
		return sdktrace.NeverSample(), nil
	})
	r.Samplers.Register("traceidratio", func(props *ConfigProperties) (sdktrace.Sampler, error) {
		ratio := props.GetString("otel.traces.sampler.arg", "1.0")
		f, err := strconv.ParseFloat(ratio, 64)
		if err != nil {
			return nil, configErrorf("sampler", "parsing otel.traces.sampler.arg=%q: %w", ratio, err)
		}
		return sdktrace.TraceIDRatioBased(f), nil
	})
	r.Samplers.Register("parentbased_always_on", func(*ConfigProperties) (sdktrace.Sampler, error) {
		return sdktrace.ParentBased(sdktrace.AlwaysSample()), nil
	})

	r.ResourceProviders.Register("host", func(_ context.Context, _ *ConfigProperties) (*resource.Resource, error) {
		host, err := os.Hostname()
		if err != nil {
			return resource.Empty(), nil
		}
		return resource.NewWithAttributes("", attribute.String("host.name", host)), nil
	})
	r.ResourceProviders.Register("process", func(_ context.Context, _ *ConfigProperties) (*resource.Resource, error) {
		return resource.NewWithAttributes("",
			attribute.Int("process.pid", os.Getpid()),
			attribute.StringSlice("process.command_args", os.Args),
		), nil
	})
}
