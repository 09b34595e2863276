// Package metric is the instrument-facing API surface: instrument
// descriptors, kinds, and the handle interfaces instrumented application
// code calls into. The aggregation, view, and export machinery that turns
// these calls into MetricData lives in sdkmetric — the same API/SDK split
// the teacher enforces between go.opentelemetry.io/otel/metric and
// go.opentelemetry.io/otel/sdk/metric.
package metric

import (
	"context"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
)

// InstrumentKind identifies the shape of an instrument (spec.md §3).
type InstrumentKind int

const (
	InstrumentKindUndefined InstrumentKind = iota
	InstrumentKindCounter
	InstrumentKindUpDownCounter
	InstrumentKindHistogram
	InstrumentKindObservableCounter
	InstrumentKindObservableUpDownCounter
	InstrumentKindObservableGauge
)

func (k InstrumentKind) String() string {
	switch k {
	case InstrumentKindCounter:
		return "Counter"
	case InstrumentKindUpDownCounter:
		return "UpDownCounter"
	case InstrumentKindHistogram:
		return "Histogram"
	case InstrumentKindObservableCounter:
		return "ObservableCounter"
	case InstrumentKindObservableUpDownCounter:
		return "ObservableUpDownCounter"
	case InstrumentKindObservableGauge:
		return "ObservableGauge"
	default:
		return "Undefined"
	}
}

// IsSynchronous reports whether the instrument kind is recorded directly by
// application code, as opposed to sampled via a callback during collection.
func (k InstrumentKind) IsSynchronous() bool {
	switch k {
	case InstrumentKindCounter, InstrumentKindUpDownCounter, InstrumentKindHistogram:
		return true
	default:
		return false
	}
}

// ValueType identifies whether an instrument records int64 or float64.
type ValueType int

const (
	ValueTypeUndefined ValueType = iota
	ValueTypeInt64
	ValueTypeFloat64
)

// Descriptor identifies an instrument. Identity is case-insensitive on
// Name, ignoring Advice (spec.md §3): two Descriptors with the same
// lower-cased Name and Kind/ValueType are the same instrument for
// registration purposes, even if Description/Unit/Advice differ — a
// mismatch on those is a duplicate-registration warning, not a new
// identity.
type Descriptor struct {
	Name        string
	Description string
	Unit        string
	Kind        InstrumentKind
	ValueType   ValueType
	Advice      Advice
}

// Advice carries optional hints an instrument creation call can attach,
// such as explicit histogram bucket boundaries overriding the default
// aggregation (spec.md §4.2 aggregator selection rule).
type Advice struct {
	ExplicitBucketBoundaries []float64
}

// Identity returns the case-insensitive identity key used for duplicate
// detection (spec.md §3).
func (d Descriptor) Identity() DescriptorIdentity {
	return DescriptorIdentity{name: toLower(d.Name), kind: d.Kind, valueType: d.ValueType}
}

type DescriptorIdentity struct {
	name      string
	kind      InstrumentKind
	valueType ValueType
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// RecordOption configures a single synchronous measurement.
type RecordOption interface{ applyRecord(*recordConfig) }

// ObserveOption configures a single asynchronous observation.
type ObserveOption interface{ applyObserve(*recordConfig) }

type recordConfig struct {
	attrs []attribute.KeyValue
}

type attrsOption struct{ kvs []attribute.KeyValue }

func (o attrsOption) applyRecord(c *recordConfig)  { c.attrs = append(c.attrs, o.kvs...) }
func (o attrsOption) applyObserve(c *recordConfig) { c.attrs = append(c.attrs, o.kvs...) }

// WithAttributes attaches attributes to a single Record/Add/Observe call.
func WithAttributes(kvs ...attribute.KeyValue) attrsOption { return attrsOption{kvs: kvs} }

// NewRecordConfig resolves a list of RecordOption into their attribute set.
// Exported for use by sdkmetric's instrument implementations.
func NewRecordConfig(opts []RecordOption) []attribute.KeyValue {
	c := &recordConfig{}
	for _, o := range opts {
		o.applyRecord(c)
	}
	return c.attrs
}

// NewObserveConfig resolves a list of ObserveOption into their attribute set.
func NewObserveConfig(opts []ObserveOption) []attribute.KeyValue {
	c := &recordConfig{}
	for _, o := range opts {
		o.applyObserve(c)
	}
	return c.attrs
}

// Int64Counter records monotonically increasing int64 measurements.
type Int64Counter interface {
	Add(ctx context.Context, incr int64, opts ...RecordOption)
}

// Float64Counter records monotonically increasing float64 measurements.
type Float64Counter interface {
	Add(ctx context.Context, incr float64, opts ...RecordOption)
}

// Int64UpDownCounter records int64 measurements that may rise or fall.
type Int64UpDownCounter interface {
	Add(ctx context.Context, incr int64, opts ...RecordOption)
}

// Float64UpDownCounter records float64 measurements that may rise or fall.
type Float64UpDownCounter interface {
	Add(ctx context.Context, incr float64, opts ...RecordOption)
}

// Int64Histogram records a distribution of int64 measurements.
type Int64Histogram interface {
	Record(ctx context.Context, value int64, opts ...RecordOption)
}

// Float64Histogram records a distribution of float64 measurements.
type Float64Histogram interface {
	Record(ctx context.Context, value float64, opts ...RecordOption)
}

// Observable marks an instrument as eligible for use with a Callback.
type Observable interface {
	observableMarker()
}

// ObservableMarker is embedded by SDK implementations of Int64Observable and
// Float64Observable to satisfy the unexported observableMarker method from
// outside this package.
type ObservableMarker struct{}

func (ObservableMarker) observableMarker() {}

// Int64Observable is an asynchronous int64 instrument (e.g. ObservableGauge,
// ObservableCounter).
type Int64Observable interface {
	Observable
}

// Int64Observer receives observations during a collection pass.
type Int64Observer interface {
	Observe(value int64, opts ...ObserveOption)
}

// Observer is passed to a registered Callback.
type Observer interface {
	ObserveInt64(obs Int64Observable, value int64, opts ...ObserveOption)
	ObserveFloat64(obs Float64Observable, value float64, opts ...ObserveOption)
}

// Float64Observable is an asynchronous float64 instrument.
type Float64Observable interface {
	Observable
}

// Callback is invoked once per collection for every reader it is
// registered against (spec.md §4.2, MeterSharedState.collectAll).
type Callback func(ctx context.Context, obs Observer) error

// Registration is returned by Meter.RegisterCallback; Unregister removes
// the callback.
type Registration interface {
	Unregister() error
}
