package sdktrace

// SpanLimits bounds the size of a span's attributes, events, and links
// (spec.md §4.5 step 6 names "span-limits" without defining its fields;
// SPEC_FULL.md §SUPPLEMENTED FEATURES pins them here).
type SpanLimits struct {
	AttributeCountLimit        int
	AttributeValueLengthLimit  int
	EventCountLimit            int
	AttributePerEventCountLimit int
	LinkCountLimit             int
	AttributePerLinkCountLimit int
}

// DefaultSpanLimits mirrors the OpenTelemetry SDK's conventional defaults.
func DefaultSpanLimits() SpanLimits {
	return SpanLimits{
		AttributeCountLimit:         128,
		AttributeValueLengthLimit:   -1, // unlimited
		EventCountLimit:             128,
		AttributePerEventCountLimit: 128,
		LinkCountLimit:              128,
		AttributePerLinkCountLimit:  128,
	}
}
