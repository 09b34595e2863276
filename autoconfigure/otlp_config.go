package autoconfigure

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mitchellh/mapstructure"
)

// RetryConfig mirrors the exponential-backoff retry policy spec.md §6
// names as part of the OTLP common config surface ("retry policy"),
// built on backoff.ExponentialBackOff's field set — the same family the
// teacher's exporterhelper queued-retry sender configures.
type RetryConfig struct {
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

// DefaultRetryConfig mirrors backoff.NewExponentialBackOff's own defaults.
func DefaultRetryConfig() RetryConfig {
	def := backoff.NewExponentialBackOff()
	return RetryConfig{
		InitialInterval: def.InitialInterval,
		MaxInterval:     def.MaxInterval,
		MaxElapsedTime:  def.MaxElapsedTime,
	}
}

// NewBackOff builds a backoff.BackOff from this RetryConfig, for an OTLP
// exporter's retry sender to drive.
func (c RetryConfig) NewBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if c.InitialInterval > 0 {
		b.InitialInterval = c.InitialInterval
	}
	if c.MaxInterval > 0 {
		b.MaxInterval = c.MaxInterval
	}
	if c.MaxElapsedTime > 0 {
		b.MaxElapsedTime = c.MaxElapsedTime
	}
	return b
}

// OTLPConfig is the configuration surface spec.md §6 lists for the OTLP
// exporter family (protocol, endpoint, headers, compression, timeout,
// TLS, retry) without implying any wire encoding is implemented — no
// component in this module speaks the OTLP wire protocol (§1 Non-goal);
// this struct exists only so that surface has somewhere concrete to live
// and be populated from ConfigProperties.
type OTLPConfig struct {
	Protocol    string            `mapstructure:"protocol"`
	Endpoint    string            `mapstructure:"endpoint"`
	Headers     map[string]string `mapstructure:"headers"`
	Compression string            `mapstructure:"compression"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	Insecure    bool              `mapstructure:"insecure"`
	CertFile    string            `mapstructure:"certificate"`
	ClientCert  string            `mapstructure:"client_certificate"`
	ClientKey   string            `mapstructure:"client_key"`
	Retry       RetryConfig       `mapstructure:"retry"`
}

// DefaultOTLPConfig mirrors spec.md §6's stated defaults: grpc protocol,
// 10s timeout is the real SDK's documented default export timeout.
func DefaultOTLPConfig() OTLPConfig {
	return OTLPConfig{
		Protocol: "grpc",
		Endpoint: "http://localhost:4317",
		Timeout:  10 * time.Second,
		Retry:    DefaultRetryConfig(),
	}
}

// otlpConfigFromProperties decodes the otel.exporter.otlp.* (and
// per-signal otel.exporter.otlp.<signal>.*) block into an OTLPConfig via
// mapstructure, the same generic-map-to-struct decode step the teacher
// uses for receiver/processor config.
func otlpConfigFromProperties(props *ConfigProperties, signal string) (OTLPConfig, error) {
	cfg := DefaultOTLPConfig()
	raw := props.GetMap("otel.exporter.otlp")
	signalRaw := props.GetMap("otel.exporter.otlp." + signal)
	for k, v := range signalRaw {
		raw[k] = v
	}
	if len(raw) == 0 {
		return cfg, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return cfg, configErrorf("otlp-config", "building decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return cfg, configErrorf("otlp-config", "decoding otel.exporter.otlp.%s: %w", signal, err)
	}
	return cfg, nil
}
