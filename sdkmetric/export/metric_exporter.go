// Package export holds the MetricExporter contract a MetricReader pushes
// collected ResourceMetrics into (spec.md §4.3, §6).
package export

import (
	"context"

	"github.com/YaoYingLong/eleven-otelcore/metric"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/metricdata"
)

// TemporalitySelector picks the AggregationTemporality a given instrument
// kind should be reported with; an exporter implements this to state its
// preference (e.g. OTLP typically reports CUMULATIVE for everything,
// spec.md §4.3).
type TemporalitySelector func(kind metric.InstrumentKind) metricdata.Temporality

// DefaultTemporalitySelector always returns CUMULATIVE, the conventional
// OTLP default named in spec.md §4.3.
func DefaultTemporalitySelector(metric.InstrumentKind) metricdata.Temporality {
	return metricdata.CumulativeTemporality
}

// MetricExporter sends collected metrics to a backend.
type MetricExporter interface {
	Temporality(kind metric.InstrumentKind) metricdata.Temporality
	Export(ctx context.Context, metrics *metricdata.ResourceMetrics) error
	ForceFlush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
