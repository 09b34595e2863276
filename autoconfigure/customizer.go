package autoconfigure

// Customizer transforms a builder/value of type T, given the properties
// that produced it (spec.md §4.5 step 2; §9 "customizer chain state ...
// equivalently, a slice of factory functions applied in order").
type Customizer[T any] func(x T, props *ConfigProperties) T

// CustomizerChain composes registered customizers in order: Add(f) then
// Add(g) makes Apply(x) equal to g(f(x)) — spec.md §8 property 11, and
// §4.5's "each addXxxCustomizer(f) produces g(x,cfg) = f(prev(x,cfg),cfg)"
// composition rule (read right-to-left: the newest addition wraps, but
// calls into what came before it first, so the oldest customizer still
// runs first on the value).
type CustomizerChain[T any] struct {
	apply Customizer[T]
}

func NewCustomizerChain[T any]() *CustomizerChain[T] {
	return &CustomizerChain[T]{apply: func(x T, _ *ConfigProperties) T { return x }}
}

func (c *CustomizerChain[T]) Add(f Customizer[T]) {
	prev := c.apply
	c.apply = func(x T, props *ConfigProperties) T {
		return f(prev(x, props), props)
	}
}

func (c *CustomizerChain[T]) Apply(x T, props *ConfigProperties) T {
	return c.apply(x, props)
}
