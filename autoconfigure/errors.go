package autoconfigure

import "fmt"

// ConfigurationError reports a build-time failure: a misspelled exporter
// name, an invalid duration, a non-positive cardinality limit, or a
// missing SPI artifact (spec.md §7). It mirrors the original
// ConfigurationException, wrapping whatever underlying cause triggered it.
type ConfigurationError struct {
	Op  string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("autoconfigure: %s: %v", e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func configErrorf(op, format string, args ...any) error {
	return &ConfigurationError{Op: op, Err: fmt.Errorf(format, args...)}
}
