package propagation

import (
	"context"
	"testing"
)

func TestRegistryResolvesDefaultNames(t *testing.T) {
	r := NewRegistry()
	p, err := r.Resolve([]string{"tracecontext", "baggage"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	fields := p.Fields()
	if len(fields) != 3 {
		t.Fatalf("got %d fields, want 3 (traceparent, tracestate, baggage), got %v", len(fields), fields)
	}
}

func TestRegistryResolveUnknownName(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Resolve([]string{"b3"}); err == nil {
		t.Fatalf("expected an error resolving an unregistered propagator name")
	}
}

func TestCompositeExtractChainsContext(t *testing.T) {
	r := NewRegistry()
	p, err := r.Resolve([]string{"tracecontext", "baggage"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	carrier := MapCarrier{}
	p.Inject(context.Background(), carrier) // no-op propagators: must not panic
	out := p.Extract(context.Background(), carrier)
	if out == nil {
		t.Fatalf("Extract returned a nil context")
	}
}
