package autoconfigure

import (
	"github.com/YaoYingLong/eleven-otelcore/sdklog"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric"
	"github.com/YaoYingLong/eleven-otelcore/sdktrace"
)

// TracerProviderBuilder accumulates sdktrace.TracerProviderOption values;
// it is the "tracer-provider-builder" category customizers transform in
// spec.md §4.5 step 2.
type TracerProviderBuilder struct {
	Options []sdktrace.TracerProviderOption
}

func (b *TracerProviderBuilder) AddOption(o sdktrace.TracerProviderOption) {
	b.Options = append(b.Options, o)
}

// MeterProviderBuilder accumulates sdkmetric.Option values; the
// "meter-provider-builder" category.
type MeterProviderBuilder struct {
	Options []sdkmetric.Option
}

func (b *MeterProviderBuilder) AddOption(o sdkmetric.Option) {
	b.Options = append(b.Options, o)
}

// LoggerProviderBuilder accumulates sdklog.LoggerProviderOption values;
// the "logger-provider-builder" category.
type LoggerProviderBuilder struct {
	Options []sdklog.LoggerProviderOption
}

func (b *LoggerProviderBuilder) AddOption(o sdklog.LoggerProviderOption) {
	b.Options = append(b.Options, o)
}
