package sdklog

import "context"

// logRecordExporter is declared locally (same method set as
// export.LogRecordExporter) to avoid an import cycle with the export
// subpackage, mirroring sdktrace/processor.go's SpanExporter duplication.
type logRecordExporter interface {
	ExportLogRecords(ctx context.Context, records []LogRecordData) error
	Shutdown(ctx context.Context) error
}

// LogRecordProcessor observes every log record a Logger emits.
type LogRecordProcessor interface {
	OnEmit(ctx context.Context, record LogRecordData)
	Shutdown(ctx context.Context) error
	ForceFlush(ctx context.Context) error
}

// SimpleLogRecordProcessor exports every record synchronously as it is
// emitted; intended for tests and examples, not production throughput.
type SimpleLogRecordProcessor struct {
	exporter logRecordExporter
}

func NewSimpleLogRecordProcessor(exporter logRecordExporter) *SimpleLogRecordProcessor {
	return &SimpleLogRecordProcessor{exporter: exporter}
}

func (p *SimpleLogRecordProcessor) OnEmit(ctx context.Context, record LogRecordData) {
	_ = p.exporter.ExportLogRecords(ctx, []LogRecordData{record})
}

func (p *SimpleLogRecordProcessor) Shutdown(ctx context.Context) error {
	return p.exporter.Shutdown(ctx)
}

func (p *SimpleLogRecordProcessor) ForceFlush(context.Context) error { return nil }
