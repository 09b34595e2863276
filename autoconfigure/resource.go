package autoconfigure

import (
	"context"

	"github.com/YaoYingLong/eleven-otelcore/resource"
)

// buildResource implements spec.md §4.5 step 3: starting from
// resource.Default() (telemetry.sdk.*, service.name, service.instance.id),
// run every ResourceProvider named in order that is not excluded by
// otel.java.disabled.resource.providers (or, when
// otel.java.enabled.resource.providers is non-empty, not excluded from
// that allow-list), merging each one's output over the accumulated
// resource in that order (later providers override same-key attributes,
// via resource.Merge), then run the resource customizer chain on the
// result.
func buildResource(ctx context.Context, props *ConfigProperties, registries *SPIRegistries, order []string, customizer *CustomizerChain[*resource.Resource]) (*resource.Resource, error) {
	enabled := props.GetStringSlice("otel.java.enabled.resource.providers", nil)
	disabled := props.GetStringSlice("otel.java.disabled.resource.providers", nil)

	allow := toSet(enabled)
	deny := toSet(disabled)

	res := resource.Default()
	for _, name := range order {
		if len(allow) > 0 && !allow[name] {
			continue
		}
		if deny[name] {
			continue
		}
		provider, ok := registries.ResourceProviders.Lookup(name)
		if !ok {
			return nil, configErrorf("resource", "unknown resource provider %q", name)
		}
		detected, err := provider(ctx, props)
		if err != nil {
			return nil, configErrorf("resource", "running resource provider %q: %w", name, err)
		}
		res = resource.Merge(res, detected)
	}

	res = customizer.Apply(res, props)
	return res, nil
}

func toSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}
