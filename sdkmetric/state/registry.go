package state

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/YaoYingLong/eleven-otelcore/internal"
	"github.com/YaoYingLong/eleven-otelcore/metric"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/metricdata"
)

// registeredInstrument pairs the descriptor that won registration for an
// identity with every reader's Storage for it.
type registeredInstrument struct {
	descriptor metric.Descriptor
	storages   map[Reader]Storage
}

// Registry deduplicates instrument registrations by Descriptor.Identity:
// the first registration for an identity wins, and any later registration
// whose Description/Unit/Advice mismatches logs a warning rather than
// creating a second series (spec.md §3's duplicate-instrument-identity
// rule, supplemented into SPEC_FULL.md since spec.md names the rule but
// not its resolution).
type Registry struct {
	mu        sync.Mutex
	instruments map[metric.DescriptorIdentity]*registeredInstrument
	logger    *internal.ThrottlingLogger
}

func NewRegistry(logger *internal.ThrottlingLogger) *Registry {
	if logger == nil {
		logger = internal.NewThrottlingLogger(nil)
	}
	return &Registry{
		instruments: make(map[metric.DescriptorIdentity]*registeredInstrument),
		logger:      logger,
	}
}

// Register associates storage with (descriptor, reader). If an instrument
// with the same identity was already registered with a different
// Description/Unit/Advice, the earlier descriptor is kept and a warning is
// logged.
func (r *Registry) Register(d metric.Descriptor, reader Reader, storage Storage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := d.Identity()
	ri, ok := r.instruments[id]
	if !ok {
		ri = &registeredInstrument{descriptor: d, storages: make(map[Reader]Storage)}
		r.instruments[id] = ri
	} else if ri.descriptor.Description != d.Description || ri.descriptor.Unit != d.Unit ||
		!slices.Equal(ri.descriptor.Advice.ExplicitBucketBoundaries, d.Advice.ExplicitBucketBoundaries) {
		r.logger.Warn("duplicate-instrument-"+d.Name, "duplicate instrument registration with conflicting metadata",
			zap.String("name", d.Name), zap.String("existing_unit", ri.descriptor.Unit), zap.String("new_unit", d.Unit))
	}
	ri.storages[reader] = storage
}

// InstrumentStorage pairs a winning Descriptor with its Storage for one
// reader, the unit CollectAll iterates over.
type InstrumentStorage struct {
	Descriptor metric.Descriptor
	Storage    Storage
}

// StoragesForReader returns every (descriptor, storage) pair registered
// against reader.
func (r *Registry) StoragesForReader(reader Reader) []InstrumentStorage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]InstrumentStorage, 0, len(r.instruments))
	for _, ri := range r.instruments {
		if s, ok := ri.storages[reader]; ok {
			out = append(out, InstrumentStorage{Descriptor: ri.descriptor, Storage: s})
		}
	}
	return out
}

// Reader is the minimal identity a Registry needs to key registrations and
// MeterSharedState needs to drive a collection pass. sdkmetric.MetricReader
// embeds this.
type Reader interface {
	LastCollectTime() time.Time
}

// CallbackRegistration is one Meter.RegisterCallback call: the callback
// function plus the async storages it is declared to observe into.
type CallbackRegistration struct {
	Callback func(ctx context.Context, obs metric.Observer) error
	Targets  []Storage
}

// SharedState sequences collection across every reader registered against
// one MeterProvider, grounded on MeterSharedState.collectAll (spec.md
// §4.2): callbacks run under a single collectLock so two readers never
// invoke application callbacks concurrently, while synchronous Record
// calls are free to proceed at any time.
type SharedState struct {
	registry *Registry

	callbackMu   sync.Mutex
	callbacks    []CallbackRegistration

	collectMu sync.Mutex
}

func NewSharedState(registry *Registry) *SharedState {
	return &SharedState{registry: registry}
}

// RegisterCallback adds a callback; the returned index can be passed to
// UnregisterCallback.
func (s *SharedState) RegisterCallback(cb CallbackRegistration) int {
	s.callbackMu.Lock()
	defer s.callbackMu.Unlock()
	s.callbacks = append(s.callbacks, cb)
	return len(s.callbacks) - 1
}

// UnregisterCallback removes a previously registered callback by index.
func (s *SharedState) UnregisterCallback(idx int) {
	s.callbackMu.Lock()
	defer s.callbackMu.Unlock()
	if idx < 0 || idx >= len(s.callbacks) {
		return
	}
	s.callbacks[idx].Callback = nil
}

// CollectAll runs every registered callback once, then collects every
// storage registered against reader, dropping empty results
// (spec.md §4.2 MeterSharedState.collectAll steps 1-3). providerStart is
// used as a cumulative-temporality storage's start time; a delta storage
// instead starts from the reader's own last collect time.
func (s *SharedState) CollectAll(ctx context.Context, reader Reader, providerStart, collectTime time.Time, observer metric.Observer) []metricdata.Metrics {
	s.callbackMu.Lock()
	callbacks := make([]CallbackRegistration, len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.callbackMu.Unlock()

	s.collectMu.Lock()
	for _, cb := range callbacks {
		if cb.Callback == nil {
			continue
		}
		_ = cb.Callback(ctx, observer)
	}
	s.collectMu.Unlock()

	storages := s.registry.StoragesForReader(reader)
	out := make([]metricdata.Metrics, 0, len(storages))
	for _, is := range storages {
		start := providerStart
		if is.Storage.Temporality() == metricdata.DeltaTemporality {
			start = reader.LastCollectTime()
		}
		agg := is.Storage.Collect(start, collectTime)
		if aggregationIsEmpty(agg) {
			continue
		}
		out = append(out, metricdata.Metrics{
			Name:        is.Descriptor.Name,
			Description: is.Descriptor.Description,
			Unit:        is.Descriptor.Unit,
			Data:        agg,
		})
	}
	return out
}

func aggregationIsEmpty(a metricdata.Aggregation) bool {
	switch {
	case a.Sum != nil:
		return len(a.Sum.DataPoints) == 0
	case a.Gauge != nil:
		return len(a.Gauge.DataPoints) == 0
	case a.Histogram != nil:
		return len(a.Histogram.DataPoints) == 0
	default:
		return true
	}
}
