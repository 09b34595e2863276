package view

import (
	"testing"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/metric"
)

func TestFindViewsFallsBackToDefault(t *testing.T) {
	r := NewRegistry()
	views := r.FindViews(metric.Descriptor{Name: "requests"}, Scope{Name: "app"})
	if len(views) != 1 {
		t.Fatalf("got %d views, want 1 default view", len(views))
	}
	if views[0].AttributesProcessor == nil {
		t.Fatalf("default view must carry an identity AttributesProcessor")
	}
}

func TestInstrumentSelectorNameGlob(t *testing.T) {
	r := NewRegistry(View{
		Selector: InstrumentSelector{Name: "http.*"},
		Name:     "renamed",
	})

	matched := r.FindViews(metric.Descriptor{Name: "HTTP.Requests"}, Scope{})
	if len(matched) != 1 || matched[0].Name != "renamed" {
		t.Fatalf("expected case-insensitive glob match to rename instrument, got %+v", matched)
	}

	notMatched := r.FindViews(metric.Descriptor{Name: "grpc.requests"}, Scope{})
	if len(notMatched) != 1 || notMatched[0].Name != "" {
		t.Fatalf("non-matching descriptor should fall back to the default view, got %+v", notMatched)
	}
}

func TestInstrumentSelectorKindAndScope(t *testing.T) {
	r := NewRegistry(View{
		Selector: InstrumentSelector{InstrumentKind: metric.InstrumentKindHistogram, ScopeName: "lib-a"},
		Aggregation: AggregationDrop,
	})

	matched := r.FindViews(metric.Descriptor{Name: "latency", Kind: metric.InstrumentKindHistogram}, Scope{Name: "lib-a"})
	if len(matched) != 1 || matched[0].Aggregation != AggregationDrop {
		t.Fatalf("expected kind+scope match to apply the drop override, got %+v", matched)
	}

	wrongScope := r.FindViews(metric.Descriptor{Name: "latency", Kind: metric.InstrumentKindHistogram}, Scope{Name: "lib-b"})
	if len(wrongScope) != 1 || wrongScope[0].Aggregation != AggregationDefault {
		t.Fatalf("non-matching scope should fall back to the default view, got %+v", wrongScope)
	}
}

func TestAllowAndExcludeKeysProcessors(t *testing.T) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", "GET"),
		attribute.String("http.route", "/users"),
		attribute.Int("http.status_code", 200),
	}

	allow := NewAllowKeysProcessor("http.method")
	got := allow.Process(attrs)
	if len(got) != 1 || got[0].Key != "http.method" {
		t.Fatalf("allow-keys processor kept %+v, want only http.method", got)
	}

	exclude := NewExcludeKeysProcessor("http.route")
	got = exclude.Process(attrs)
	if len(got) != 2 {
		t.Fatalf("exclude-keys processor kept %d attrs, want 2", len(got))
	}
	for _, kv := range got {
		if kv.Key == "http.route" {
			t.Fatalf("exclude-keys processor did not drop http.route")
		}
	}
}
