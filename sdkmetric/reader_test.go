package sdkmetric

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/YaoYingLong/eleven-otelcore/metric"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/metricdata"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/state"
)

type recordingExporter struct {
	mu       sync.Mutex
	exports  []*metricdata.ResourceMetrics
	shutdown bool
}

func (e *recordingExporter) Temporality(kind metric.InstrumentKind) metricdata.Temporality {
	return metricdata.CumulativeTemporality
}

func (e *recordingExporter) Export(ctx context.Context, rm *metricdata.ResourceMetrics) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exports = append(e.exports, rm)
	return nil
}

func (e *recordingExporter) ForceFlush(ctx context.Context) error { return nil }

func (e *recordingExporter) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdown = true
	return nil
}

func (e *recordingExporter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.exports)
}

func TestManualReaderCollectRequiresRegistration(t *testing.T) {
	r := NewManualReader()
	_, err := r.Collect(context.Background())
	if err == nil {
		t.Fatalf("expected an error collecting from an unregistered reader")
	}
}

func TestManualReaderCollectsAfterRegistration(t *testing.T) {
	r := NewManualReader()
	r.register(func(ctx context.Context, reader state.Reader, collectTime time.Time) (*metricdata.ResourceMetrics, error) {
		return &metricdata.ResourceMetrics{}, nil
	})
	rm, err := r.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if rm == nil {
		t.Fatalf("expected a non-nil ResourceMetrics")
	}
}

func TestManualReaderShutdownIsIdempotent(t *testing.T) {
	r := NewManualReader()
	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("first Shutdown: %v", err)
	}
	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}

func TestPeriodicMetricReaderForceFlushExportsImmediately(t *testing.T) {
	exp := &recordingExporter{}
	r := NewPeriodicMetricReader(exp, WithInterval(time.Hour))
	r.register(func(ctx context.Context, reader state.Reader, collectTime time.Time) (*metricdata.ResourceMetrics, error) {
		return &metricdata.ResourceMetrics{}, nil
	})

	if err := r.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}
	if exp.count() != 1 {
		t.Fatalf("exporter received %d exports, want 1", exp.count())
	}
}

func TestPeriodicMetricReaderShutdownFlushesOnceAndIsIdempotent(t *testing.T) {
	exp := &recordingExporter{}
	r := NewPeriodicMetricReader(exp, WithInterval(time.Hour))
	r.register(func(ctx context.Context, reader state.Reader, collectTime time.Time) (*metricdata.ResourceMetrics, error) {
		return &metricdata.ResourceMetrics{}, nil
	})

	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("first Shutdown: %v", err)
	}
	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
	if exp.count() != 1 {
		t.Fatalf("exporter received %d exports across shutdown, want exactly 1", exp.count())
	}
	exp.mu.Lock()
	shutdown := exp.shutdown
	exp.mu.Unlock()
	if !shutdown {
		t.Fatalf("exporter Shutdown was never called")
	}
}
