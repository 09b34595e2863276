package metric

// MeterProvider provides named Meters; sdkmetric.MeterProvider implements
// this interface.
type MeterProvider interface {
	Meter(scopeName string, opts ...MeterOption) Meter
}

// Meter creates instruments and registers callbacks, scoped to one
// instrumentation scope (spec.md's InstrumentationScopeInfo).
type Meter interface {
	Int64Counter(name string, opts ...InstrumentOption) (Int64Counter, error)
	Float64Counter(name string, opts ...InstrumentOption) (Float64Counter, error)
	Int64UpDownCounter(name string, opts ...InstrumentOption) (Int64UpDownCounter, error)
	Float64UpDownCounter(name string, opts ...InstrumentOption) (Float64UpDownCounter, error)
	Int64Histogram(name string, opts ...InstrumentOption) (Int64Histogram, error)
	Float64Histogram(name string, opts ...InstrumentOption) (Float64Histogram, error)
	Int64ObservableGauge(name string, opts ...InstrumentOption) (Int64Observable, error)
	Int64ObservableCounter(name string, opts ...InstrumentOption) (Int64Observable, error)
	Int64ObservableUpDownCounter(name string, opts ...InstrumentOption) (Int64Observable, error)
	Float64ObservableGauge(name string, opts ...InstrumentOption) (Float64Observable, error)
	Float64ObservableCounter(name string, opts ...InstrumentOption) (Float64Observable, error)
	Float64ObservableUpDownCounter(name string, opts ...InstrumentOption) (Float64Observable, error)
	RegisterCallback(callback Callback, instruments ...Observable) (Registration, error)
}

// MeterOption configures a Meter's instrumentation scope.
type MeterOption interface{ applyMeter(*MeterConfig) }

// MeterConfig holds the resolved scope metadata for a Meter.
type MeterConfig struct {
	Version   string
	SchemaURL string
}

type scopeVersionOption string

func (v scopeVersionOption) applyMeter(c *MeterConfig) { c.Version = string(v) }

// WithInstrumentationVersion sets the instrumentation scope's version.
func WithInstrumentationVersion(v string) MeterOption { return scopeVersionOption(v) }

type schemaURLOption string

func (v schemaURLOption) applyMeter(c *MeterConfig) { c.SchemaURL = string(v) }

// WithSchemaURL sets the instrumentation scope's schema URL.
func WithSchemaURL(v string) MeterOption { return schemaURLOption(v) }

// NewMeterConfig resolves MeterOptions.
func NewMeterConfig(opts ...MeterOption) MeterConfig {
	c := MeterConfig{}
	for _, o := range opts {
		o.applyMeter(&c)
	}
	return c
}

// InstrumentOption configures an instrument at creation time.
type InstrumentOption interface{ applyInstrument(*InstrumentConfig) }

// InstrumentConfig holds resolved instrument-creation options.
type InstrumentConfig struct {
	Description string
	Unit        string
	Advice      Advice
}

type descriptionOption string

func (d descriptionOption) applyInstrument(c *InstrumentConfig) { c.Description = string(d) }

// WithDescription sets an instrument's description.
func WithDescription(d string) InstrumentOption { return descriptionOption(d) }

type unitOption string

func (u unitOption) applyInstrument(c *InstrumentConfig) { c.Unit = string(u) }

// WithUnit sets an instrument's unit.
func WithUnit(u string) InstrumentOption { return unitOption(u) }

type explicitBucketsOption []float64

func (b explicitBucketsOption) applyInstrument(c *InstrumentConfig) {
	c.Advice.ExplicitBucketBoundaries = b
}

// WithExplicitBucketBoundaries overrides the default histogram aggregation
// boundaries via Advice (spec.md §4.2 aggregator selection rule).
func WithExplicitBucketBoundaries(bounds ...float64) InstrumentOption {
	return explicitBucketsOption(bounds)
}

// NewInstrumentConfig resolves InstrumentOptions.
func NewInstrumentConfig(opts ...InstrumentOption) InstrumentConfig {
	c := InstrumentConfig{}
	for _, o := range opts {
		o.applyInstrument(&c)
	}
	return c
}
