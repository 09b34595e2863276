// Package resource models the entity producing telemetry (the process, host,
// and SDK that created spans and metrics). It is deliberately minimal: the
// core treats concrete resource detection as an external collaborator
// (spec.md §1) and ships only the illustrative detectors autoconfigure
// needs by default.
package resource

import (
	"context"

	"github.com/google/uuid"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
)

// Resource is an immutable attribute set describing the entity producing
// telemetry, plus an optional schema URL.
type Resource struct {
	attrs     attribute.Set
	schemaURL string
}

// Empty returns a Resource with no attributes.
func Empty() *Resource { return &Resource{} }

// NewWithAttributes builds a Resource from the given attributes and schema URL.
func NewWithAttributes(schemaURL string, kvs ...attribute.KeyValue) *Resource {
	return &Resource{attrs: attribute.NewSet(kvs...), schemaURL: schemaURL}
}

// Attributes returns the resource's attributes in canonical order.
func (r *Resource) Attributes() []attribute.KeyValue {
	if r == nil {
		return nil
	}
	return r.attrs.ToSlice()
}

// Set returns the resource's attributes as an attribute.Set.
func (r *Resource) Set() attribute.Set {
	if r == nil {
		return attribute.NewSet()
	}
	return r.attrs
}

func (r *Resource) SchemaURL() string {
	if r == nil {
		return ""
	}
	return r.schemaURL
}

// Merge combines two resources. Where both define the same attribute, b's
// value wins, matching spec.md §4.5 step 3: "later providers override
// same-key attributes." A's schema URL is kept unless empty.
func Merge(a, b *Resource) *Resource {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	merged := append(append([]attribute.KeyValue{}, a.Attributes()...), b.Attributes()...)
	schemaURL := a.schemaURL
	if schemaURL == "" {
		schemaURL = b.schemaURL
	}
	return NewWithAttributes(schemaURL, merged...)
}

// Detector discovers resource attributes from the runtime environment. It
// mirrors spec.md's ResourceProvider SPI extension point (§6); concrete
// detectors beyond the couple registered by default in autoconfigure are
// out of scope (§1).
type Detector interface {
	Detect(ctx context.Context) (*Resource, error)
}

// Default returns the base resource autoconfigure merges detector output
// over: an SDK language/name/version triple plus a
// generated instance id, grounded on the pack's service/internal/resource
// use of google/uuid for `service.instance.id`.
func Default() *Resource {
	return NewWithAttributes("",
		attribute.String("telemetry.sdk.name", "eleven-otelcore"),
		attribute.String("telemetry.sdk.language", "go"),
		attribute.String("telemetry.sdk.version", "0.1.0"),
		attribute.String("service.name", "unknown_service:go"),
		attribute.String("service.instance.id", uuid.New().String()),
	)
}
