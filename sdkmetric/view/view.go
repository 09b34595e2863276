// Package view implements View registration and lookup: selector matching
// against an instrument's descriptor and scope, name-glob support, and the
// per-reader registry spec.md §4.4 describes (component C4.5).
package view

import (
	"strings"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/metric"
)

// InstrumentSelector matches instruments a View applies to. Zero-valued
// fields are wildcards; Name supports a single trailing/leading/embedded
// "*" glob, matched case-insensitively (spec.md §4.4).
type InstrumentSelector struct {
	InstrumentKind metric.InstrumentKind // InstrumentKindUndefined matches any
	Name           string                // "" matches any
	Unit           string                // "" matches any
	ScopeName      string
	ScopeVersion   string
	SchemaURL      string
}

func (s InstrumentSelector) matches(d metric.Descriptor, scope Scope) bool {
	if s.InstrumentKind != metric.InstrumentKindUndefined && s.InstrumentKind != d.Kind {
		return false
	}
	if s.Unit != "" && s.Unit != d.Unit {
		return false
	}
	if s.Name != "" && !globMatch(strings.ToLower(s.Name), strings.ToLower(d.Name)) {
		return false
	}
	if s.ScopeName != "" && s.ScopeName != scope.Name {
		return false
	}
	if s.ScopeVersion != "" && s.ScopeVersion != scope.Version {
		return false
	}
	if s.SchemaURL != "" && s.SchemaURL != scope.SchemaURL {
		return false
	}
	return true
}

// Scope is the instrumentation-scope half of a selector match.
type Scope struct {
	Name      string
	Version   string
	SchemaURL string
}

// AttributesProcessor filters or transforms the attribute set a
// measurement is recorded against, before it reaches the aggregator.
type AttributesProcessor interface {
	Process(attrs []attribute.KeyValue) []attribute.KeyValue
}

type identityProcessor struct{}

func (identityProcessor) Process(attrs []attribute.KeyValue) []attribute.KeyValue { return attrs }

// IdentityAttributesProcessor passes attributes through unchanged; the
// default when a View does not configure one.
func IdentityAttributesProcessor() AttributesProcessor { return identityProcessor{} }

type allowKeysProcessor struct{ keys map[attribute.Key]struct{} }

func (p allowKeysProcessor) Process(attrs []attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, kv := range attrs {
		if _, ok := p.keys[kv.Key]; ok {
			out = append(out, kv)
		}
	}
	return out
}

// NewAllowKeysProcessor keeps only the named attribute keys, dropping
// everything else (spec.md §4.4's AttributesProcessor, concretized here).
func NewAllowKeysProcessor(keys ...attribute.Key) AttributesProcessor {
	m := make(map[attribute.Key]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return allowKeysProcessor{keys: m}
}

type excludeKeysProcessor struct{ keys map[attribute.Key]struct{} }

func (p excludeKeysProcessor) Process(attrs []attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, kv := range attrs {
		if _, ok := p.keys[kv.Key]; !ok {
			out = append(out, kv)
		}
	}
	return out
}

// NewExcludeKeysProcessor drops the named attribute keys, keeping the rest.
func NewExcludeKeysProcessor(keys ...attribute.Key) AttributesProcessor {
	m := make(map[attribute.Key]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return excludeKeysProcessor{keys: m}
}

// AggregationOverride names an aggregation kind a View forces, instead of
// the instrument-kind default (spec.md §4.2's selection rule).
type AggregationOverride int

const (
	AggregationDefault AggregationOverride = iota
	AggregationDrop
	AggregationSum
	AggregationLastValue
	AggregationExplicitBucketHistogram
)

// View renames/filters/re-aggregates the instruments its Selector matches.
type View struct {
	Selector               InstrumentSelector
	Name                   string // "" keeps the instrument's own name
	Description            string // not applied: collected metrics keep the instrument's own description
	Aggregation            AggregationOverride
	HistogramBounds        []float64
	AttributesProcessor AttributesProcessor
}

// Registry holds the Views registered against one MeterProvider and
// resolves them per-instrument at creation time.
type Registry struct {
	views []View
}

func NewRegistry(views ...View) *Registry {
	return &Registry{views: views}
}

// FindViews returns every registered View whose Selector matches d/scope.
// If none match, it returns a single default View that passes the
// instrument through unmodified (spec.md §4.4).
func (r *Registry) FindViews(d metric.Descriptor, scope Scope) []View {
	var matched []View
	for _, v := range r.views {
		if v.Selector.matches(d, scope) {
			matched = append(matched, v)
		}
	}
	if len(matched) == 0 {
		return []View{defaultView()}
	}
	return matched
}

func defaultView() View {
	return View{AttributesProcessor: IdentityAttributesProcessor()}
}

// globMatch supports a single "*" anywhere in pattern (prefix, suffix, or
// contains); this is the extent of glob spec.md §4.4 asks for.
func globMatch(pattern, name string) bool {
	star := strings.IndexByte(pattern, '*')
	if star == -1 {
		return pattern == name
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) && len(name) >= len(prefix)+len(suffix)
}
