// Package otelsdk ties the tracer, meter, and logger providers together
// into one handle a host application constructs once and shuts down
// once, the same role go.opentelemetry.io/otel/sdk's top-level
// convenience constructors play over the individually importable
// sdktrace/sdkmetric/sdklog packages.
package otelsdk

import (
	"context"
	"fmt"

	"github.com/YaoYingLong/eleven-otelcore/autoconfigure"
	"github.com/YaoYingLong/eleven-otelcore/propagation"
	"github.com/YaoYingLong/eleven-otelcore/resource"
	"github.com/YaoYingLong/eleven-otelcore/sdklog"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric"
	"github.com/YaoYingLong/eleven-otelcore/sdktrace"
)

// SDK bundles every provider a host application needs plus the resolved
// propagator, mirroring autoconfigure.SDK's shape but constructible
// without going through the nine-step assembly (spec.md §4.5 Non-goal:
// manual, non-autoconfigured setup must still be possible — the
// individual sdktrace/sdkmetric/sdklog packages already allow that; this
// type just gives it one shutdown call).
type SDK struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider
	Propagator     propagation.TextMapPropagator
}

// New builds an SDK from already-constructed providers. Any nil field is
// replaced with a zero-configuration default, so callers can wire only
// the signals they care about.
func New(opts ...Option) *SDK {
	s := &SDK{}
	for _, o := range opts {
		o(s)
	}
	if s.TracerProvider == nil {
		s.TracerProvider = sdktrace.NewTracerProvider()
	}
	if s.MeterProvider == nil {
		s.MeterProvider = sdkmetric.NewMeterProvider()
	}
	if s.LoggerProvider == nil {
		s.LoggerProvider = sdklog.NewLoggerProvider()
	}
	if s.Propagator == nil {
		s.Propagator = propagation.NewCompositeTextMapPropagator()
	}
	return s
}

// Option configures an SDK built via New.
type Option func(*SDK)

func WithTracerProvider(p *sdktrace.TracerProvider) Option {
	return func(s *SDK) { s.TracerProvider = p }
}

func WithMeterProvider(p *sdkmetric.MeterProvider) Option {
	return func(s *SDK) { s.MeterProvider = p }
}

func WithLoggerProvider(p *sdklog.LoggerProvider) Option {
	return func(s *SDK) { s.LoggerProvider = p }
}

func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(s *SDK) { s.Propagator = p }
}

// FromAutoConfigure adapts the result of autoconfigure.Build into an SDK.
func FromAutoConfigure(built *autoconfigure.SDK) *SDK {
	return &SDK{
		TracerProvider: built.TracerProvider,
		MeterProvider:  built.MeterProvider,
		LoggerProvider: built.LoggerProvider,
		Propagator:     built.Propagator,
	}
}

// Resource returns resource.Empty(). The SDK does not hold the resource
// its providers were built with, so the result does not reflect the
// TracerProvider's, MeterProvider's or LoggerProvider's resource, whether
// the SDK came from New or from FromAutoConfigure.
func (s *SDK) Resource() *resource.Resource {
	return resource.Empty()
}

// Shutdown shuts down every provider, returning the first error
// encountered but always attempting all three (spec.md §7: one
// component's failure must not prevent the others from shutting down).
func (s *SDK) Shutdown(ctx context.Context) error {
	var firstErr error
	if s.TracerProvider != nil {
		if err := s.TracerProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutting down tracer provider: %w", err)
		}
	}
	if s.MeterProvider != nil {
		if err := s.MeterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutting down meter provider: %w", err)
		}
	}
	if s.LoggerProvider != nil {
		if err := s.LoggerProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutting down logger provider: %w", err)
		}
	}
	return firstErr
}

// ForceFlush flushes every provider, returning the first error
// encountered but always attempting all three.
func (s *SDK) ForceFlush(ctx context.Context) error {
	var firstErr error
	if s.TracerProvider != nil {
		if err := s.TracerProvider.ForceFlush(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("flushing tracer provider: %w", err)
		}
	}
	if s.MeterProvider != nil {
		if err := s.MeterProvider.ForceFlush(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("flushing meter provider: %w", err)
		}
	}
	if s.LoggerProvider != nil {
		if err := s.LoggerProvider.ForceFlush(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("flushing logger provider: %w", err)
		}
	}
	return firstErr
}
