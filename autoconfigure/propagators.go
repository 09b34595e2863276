package autoconfigure

import (
	"github.com/YaoYingLong/eleven-otelcore/propagation"
)

// buildPropagators implements spec.md §4.5 step 8: split otel.propagators
// (default tracecontext,baggage), resolve each name via the
// ConfigurablePropagatorProvider SPI (here, propagation.Registry), then
// apply the propagator customizer to the resulting composite.
func buildPropagators(props *ConfigProperties, registries *SPIRegistries, customizer *AutoConfigurationCustomizer) (propagation.TextMapPropagator, error) {
	names := props.GetStringSlice("otel.propagators", []string{"tracecontext", "baggage"})
	composite, err := registries.Propagators.Resolve(names)
	if err != nil {
		return nil, configErrorf("propagators", "%w", err)
	}
	var p propagation.TextMapPropagator = composite
	p = customizer.Propagator.Apply(p, props)
	return p, nil
}
