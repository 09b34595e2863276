// Package export holds the LogRecordExporter contract a LogRecordProcessor
// pushes finished LogRecordData into.
package export

import (
	"context"

	"github.com/YaoYingLong/eleven-otelcore/sdklog"
)

// LogRecordExporter sends finished log records to a backend.
type LogRecordExporter interface {
	ExportLogRecords(ctx context.Context, records []sdklog.LogRecordData) error
	Shutdown(ctx context.Context) error
}
