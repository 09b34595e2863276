// Package metricdata holds the plain-data output shapes produced by a
// collection pass: the point types a MetricExporter/MetricReader consumes
// (spec.md §3, §4.2 — grounded on the Java SDK's
// io.opentelemetry.sdk.metrics.data package).
package metricdata

import (
	"time"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/resource"
)

// Temporality indicates whether a point's value is reset every collection
// (Delta) or accumulates since the instrument was created (Cumulative).
type Temporality int

const (
	CumulativeTemporality Temporality = iota
	DeltaTemporality
)

func (t Temporality) String() string {
	if t == DeltaTemporality {
		return "delta"
	}
	return "cumulative"
}

// Exemplar is a single recorded measurement retained alongside an
// aggregate to let a backend show example raw values (spec.md §4.2
// "Exemplars" subsection).
type Exemplar struct {
	Time               time.Time
	Value              float64
	SpanID             [8]byte
	TraceID            [16]byte
	FilteredAttributes []attribute.KeyValue
}

// DataPoint is one attribute-set's worth of aggregated value within a
// Sum or Gauge.
type DataPoint struct {
	Attributes attribute.Set
	StartTime  time.Time
	Time       time.Time
	Value      float64
	Exemplars  []Exemplar
}

// HistogramDataPoint is one attribute-set's worth of bucketed distribution.
type HistogramDataPoint struct {
	Attributes   attribute.Set
	StartTime    time.Time
	Time         time.Time
	Count        uint64
	Sum          float64
	Min          float64
	Max          float64
	HasMinMax    bool
	Bounds       []float64
	BucketCounts []uint64
	Exemplars    []Exemplar
}

// Sum is a metric whose points are monotonic or non-monotonic totals.
type Sum struct {
	DataPoints  []DataPoint
	Temporality Temporality
	IsMonotonic bool
}

// Gauge is a metric whose points are instantaneous values, not accumulated.
type Gauge struct {
	DataPoints []DataPoint
}

// Histogram is a metric whose points are explicit-bucket distributions.
type Histogram struct {
	DataPoints  []HistogramDataPoint
	Temporality Temporality
}

// Aggregation is the union of possible per-instrument aggregation outputs.
// Exactly one of Sum/Gauge/Histogram is non-nil.
type Aggregation struct {
	Sum       *Sum
	Gauge     *Gauge
	Histogram *Histogram
}

// Metrics is one instrument's output: its descriptor plus its aggregation.
type Metrics struct {
	Name        string
	Description string
	Unit        string
	Data        Aggregation
}

// ScopeMetrics groups Metrics produced by one instrumentation scope.
type ScopeMetrics struct {
	ScopeName    string
	ScopeVersion string
	SchemaURL    string
	Metrics      []Metrics
}

// ResourceMetrics is the full output of one collection pass for one Resource.
type ResourceMetrics struct {
	Resource     *resource.Resource
	ScopeMetrics []ScopeMetrics
}
