package autoconfigure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPropertyMergePrecedence pins spec.md §8 property 12: supplier
// P1={a:1,b:2}, P2={b:3,c:4}, environment {a:9}, system {}; effective
// a=9 (env wins), b=3 (P2 overrides P1), c=4. The keys carry the otel.
// prefix because the environment layer maps OTEL_A to otel.a.
func TestPropertyMergePrecedence(t *testing.T) {
	p1 := func() map[string]string { return map[string]string{"otel.a": "1", "otel.b": "2"} }
	p2 := func() map[string]string { return map[string]string{"otel.b": "3", "otel.c": "4"} }

	t.Setenv("OTEL_A", "9")

	props := resolveProperties([]PropertiesSupplier{p1, p2}, nil, nil)
	assert.Equal(t, "9", props.GetString("otel.a", ""))
	assert.Equal(t, "3", props.GetString("otel.b", ""))
	assert.Equal(t, "4", props.GetString("otel.c", ""))
}

func TestPropertySystemOverridesWinOverEnvironment(t *testing.T) {
	t.Setenv("OTEL_A", "env-value")
	props := resolveProperties(nil, nil, map[string]string{"otel.a": "system-value"})
	assert.Equal(t, "system-value", props.GetString("otel.a", ""))
}

func TestPropertyCustomizerOverlaysAfterSuppliers(t *testing.T) {
	supplier := func() map[string]string { return map[string]string{"a": "1"} }
	customizer := func(current *ConfigProperties) map[string]string {
		require.Equal(t, "1", current.GetString("a", ""))
		return map[string]string{"a": "2"}
	}
	props := resolveProperties([]PropertiesSupplier{supplier}, []PropertiesCustomizer{customizer}, nil)
	assert.Equal(t, "2", props.GetString("a", ""))
}

func TestGetStringSliceSplitsCSV(t *testing.T) {
	props := resolveProperties([]PropertiesSupplier{
		func() map[string]string { return map[string]string{"otel.propagators": "tracecontext, baggage"} },
	}, nil, nil)
	assert.Equal(t, []string{"tracecontext", "baggage"}, props.GetStringSlice("otel.propagators", nil))
}

func TestGetDurationAndBoolAndInt(t *testing.T) {
	props := resolveProperties([]PropertiesSupplier{
		func() map[string]string {
			return map[string]string{
				"otel.metric.export.interval":                  "30s",
				"otel.sdk.disabled":                             "true",
				"otel.experimental.metrics.cardinality.limit":   "500",
			}
		},
	}, nil, nil)
	assert.Equal(t, 30_000_000_000, int(props.GetDuration("otel.metric.export.interval", 0)))
	assert.True(t, props.GetBool("otel.sdk.disabled", false))
	assert.Equal(t, 500, props.GetInt("otel.experimental.metrics.cardinality.limit", 0))
}
