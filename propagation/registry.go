package propagation

import (
	"context"
	"fmt"
	"sync"
)

// noopPropagator satisfies TextMapPropagator without touching the carrier.
// "tracecontext" and "baggage" register under this implementation: SPEC_FULL.md
// only requires that these names resolve to *some* TextMapPropagator so
// autoconfigure's name-based composition logic has a real target to wire
// up to — the W3C trace-context/baggage wire encodings themselves are an
// explicit Non-goal.
type noopPropagator struct{ fields []string }

func (noopPropagator) Inject(context.Context, TextMapCarrier)                      {}
func (noopPropagator) Extract(ctx context.Context, _ TextMapCarrier) context.Context { return ctx }
func (p noopPropagator) Fields() []string                                          { return p.fields }

// Registry resolves TextMapPropagator implementations by name, the same
// SPI-by-name shape autoconfigure uses for exporters and readers.
type Registry struct {
	mu    sync.Mutex
	byName map[string]TextMapPropagator
}

// NewRegistry returns a Registry pre-populated with "tracecontext" and
// "baggage" entries, the two names spec.md's OTEL_PROPAGATORS default lists.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]TextMapPropagator)}
	r.Register("tracecontext", noopPropagator{fields: []string{"traceparent", "tracestate"}})
	r.Register("baggage", noopPropagator{fields: []string{"baggage"}})
	return r
}

func (r *Registry) Register(name string, p TextMapPropagator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = p
}

// Resolve builds a CompositeTextMapPropagator from a list of registered
// names, in order, erroring on the first unknown name (spec.md §4.7 /
// §4.5's OTEL_PROPAGATORS semantics).
func (r *Registry) Resolve(names []string) (*CompositeTextMapPropagator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	props := make([]TextMapPropagator, 0, len(names))
	for _, name := range names {
		p, ok := r.byName[name]
		if !ok {
			return nil, fmt.Errorf("propagation: unknown propagator %q", name)
		}
		props = append(props, p)
	}
	return NewCompositeTextMapPropagator(props...), nil
}
