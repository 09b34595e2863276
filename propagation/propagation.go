// Package propagation implements the TextMapPropagator contract and a
// name-keyed SPI registry for resolving propagators by name
// (spec.md §4.7's "referenced only by name" scope — no W3C wire-format
// encode/decode is implemented here, per that Non-goal; this package
// exists so autoconfigure has a real interface to resolve
// "tracecontext,baggage" against).
package propagation

import "context"

// TextMapCarrier abstracts the string-keyed header bag a propagator reads
// from or writes to (an HTTP header map, a messaging envelope, etc).
type TextMapCarrier interface {
	Get(key string) string
	Set(key, value string)
	Keys() []string
}

// MapCarrier is a TextMapCarrier backed by a plain map, useful for tests
// and in-process propagation.
type MapCarrier map[string]string

func (c MapCarrier) Get(key string) string { return c[key] }
func (c MapCarrier) Set(key, value string) { c[key] = value }
func (c MapCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// TextMapPropagator injects and extracts cross-process context (span
// context, baggage) through a TextMapCarrier.
type TextMapPropagator interface {
	Inject(ctx context.Context, carrier TextMapCarrier)
	Extract(ctx context.Context, carrier TextMapCarrier) context.Context
	Fields() []string
}

// CompositeTextMapPropagator runs every wrapped propagator's Inject in
// order, and chains Extract so a later propagator sees the context built
// by every earlier one (mirrors the Java SDK's
// ContextPropagators/TextMapPropagator composite semantics).
type CompositeTextMapPropagator struct {
	propagators []TextMapPropagator
}

func NewCompositeTextMapPropagator(propagators ...TextMapPropagator) *CompositeTextMapPropagator {
	return &CompositeTextMapPropagator{propagators: propagators}
}

func (c *CompositeTextMapPropagator) Inject(ctx context.Context, carrier TextMapCarrier) {
	for _, p := range c.propagators {
		p.Inject(ctx, carrier)
	}
}

func (c *CompositeTextMapPropagator) Extract(ctx context.Context, carrier TextMapCarrier) context.Context {
	for _, p := range c.propagators {
		ctx = p.Extract(ctx, carrier)
	}
	return ctx
}

func (c *CompositeTextMapPropagator) Fields() []string {
	var fields []string
	seen := make(map[string]struct{})
	for _, p := range c.propagators {
		for _, f := range p.Fields() {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			fields = append(fields, f)
		}
	}
	return fields
}
