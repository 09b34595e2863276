package autoconfigure

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/maps"
	"github.com/spf13/cast"
)

// PropertiesSupplier supplies one layer of configuration. Suppliers merge
// in the order passed to Build, later overwriting earlier (spec.md §4.5
// step 1).
type PropertiesSupplier func() map[string]string

// PropertiesCustomizer observes the properties accumulated so far and
// returns an overrides map overlaid on top of it (spec.md §4.5 step 1).
type PropertiesCustomizer func(current *ConfigProperties) map[string]string

// ConfigProperties is the merged, precedence-resolved configuration
// surface every builder consults (spec.md §6). It is backed by a plain
// map merged layer-by-layer with koanf's maps.Merge, the same helper the
// teacher's confmap package uses to combine layered config sources.
type ConfigProperties struct {
	values map[string]interface{}
}

func newConfigProperties() *ConfigProperties {
	return &ConfigProperties{values: make(map[string]interface{})}
}

func normalizeKey(k string) string { return strings.ToLower(k) }

// mergeStringMap overlays layer onto the accumulated properties; later
// calls win over earlier ones for any shared key, since maps.Merge lets
// its first (src) argument win on conflict and the new layer is passed as
// src (callers overlay in increasing precedence order).
func (c *ConfigProperties) mergeStringMap(layer map[string]string) {
	if len(layer) == 0 {
		return
	}
	overlay := make(map[string]interface{}, len(layer))
	for k, v := range layer {
		overlay[normalizeKey(k)] = v
	}
	// maps.Merge(src, dest) copies src into dest, src winning on conflict;
	// swap roles so the new layer (src) takes precedence over what is
	// already accumulated (dest).
	merged := make(map[string]interface{}, len(c.values))
	for k, v := range c.values {
		merged[k] = v
	}
	maps.Merge(overlay, merged)
	c.values = merged
}

func (c *ConfigProperties) lookup(key string) (interface{}, bool) {
	v, ok := c.values[normalizeKey(key)]
	return v, ok
}

func (c *ConfigProperties) GetString(key, def string) string {
	if v, ok := c.lookup(key); ok {
		return cast.ToString(v)
	}
	return def
}

func (c *ConfigProperties) GetBool(key string, def bool) bool {
	if v, ok := c.lookup(key); ok {
		return cast.ToBool(v)
	}
	return def
}

func (c *ConfigProperties) GetInt(key string, def int) int {
	if v, ok := c.lookup(key); ok {
		return cast.ToInt(v)
	}
	return def
}

func (c *ConfigProperties) GetDuration(key string, def time.Duration) time.Duration {
	if v, ok := c.lookup(key); ok {
		if d, err := cast.ToDurationE(v); err == nil {
			return d
		}
	}
	return def
}

// GetStringSlice splits a comma-separated value (the csv convention named
// throughout spec.md §6 for otel.metrics.exporter, otel.propagators, ...).
func (c *ConfigProperties) GetStringSlice(key string, def []string) []string {
	v, ok := c.lookup(key)
	if !ok {
		return def
	}
	s := cast.ToString(v)
	if s == "" {
		return def
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GetMap returns every key under prefix (with prefix stripped), for
// decoding structured sub-config blocks such as OTLPConfig via
// mapstructure.
func (c *ConfigProperties) GetMap(prefix string) map[string]interface{} {
	prefix = normalizeKey(prefix) + "."
	out := make(map[string]interface{})
	for k, v := range c.values {
		if strings.HasPrefix(k, prefix) {
			out[strings.TrimPrefix(k, prefix)] = v
		}
	}
	return out
}

// resolveProperties implements spec.md §4.5 step 1 plus §6's stated
// precedence (system > environment > suppliers): suppliers merge in
// order, then registered PropertiesCustomizers overlay their overrides in
// registration order, then OTEL_* environment variables, then explicit
// system overrides (highest precedence, supplied by the caller of Build).
func resolveProperties(suppliers []PropertiesSupplier, customizers []PropertiesCustomizer, systemOverrides map[string]string) *ConfigProperties {
	props := newConfigProperties()
	for _, supplier := range suppliers {
		props.mergeStringMap(supplier())
	}
	for _, customize := range customizers {
		props.mergeStringMap(customize(props))
	}
	props.mergeStringMap(environmentLayer())
	props.mergeStringMap(systemOverrides)
	return props
}

// environmentLayer reads OTEL_FOO_BAR style process environment variables
// and maps them to otel.foo.bar property keys.
func environmentLayer() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], "OTEL_") {
			continue
		}
		key := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(parts[0], "OTEL_"), "_", "."))
		out["otel."+key] = parts[1]
	}
	return out
}
