package sdklog

import (
	"context"
	"testing"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
)

type captureProcessor struct {
	records []LogRecordData
}

func (c *captureProcessor) OnEmit(ctx context.Context, r LogRecordData) { c.records = append(c.records, r) }
func (c *captureProcessor) Shutdown(context.Context) error             { return nil }
func (c *captureProcessor) ForceFlush(context.Context) error           { return nil }

func TestLoggerEmitNotifiesProcessors(t *testing.T) {
	proc := &captureProcessor{}
	provider := NewLoggerProvider(WithLogRecordProcessor(proc))
	logger := provider.Logger("test")

	logger.Emit(context.Background(), RecordOptions{
		Severity:   SeverityInfo,
		Body:       attribute.StringValue("hello"),
		Attributes: []attribute.KeyValue{attribute.String("k", "v")},
	})

	if len(proc.records) != 1 {
		t.Fatalf("got %d records, want 1", len(proc.records))
	}
	if proc.records[0].Body.AsString() != "hello" {
		t.Fatalf("Body = %q, want %q", proc.records[0].Body.AsString(), "hello")
	}
	if proc.records[0].InstrumentationScope.Name != "test" {
		t.Fatalf("scope not set: %+v", proc.records[0].InstrumentationScope)
	}
}

func TestLoggerProviderCachesLoggerByScope(t *testing.T) {
	provider := NewLoggerProvider()
	l1 := provider.Logger("a")
	l2 := provider.Logger("a")
	if l1 != l2 {
		t.Fatalf("expected cached Logger for repeated same-scope calls")
	}
}
