package state

import (
	"time"

	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/aggregation"
	"github.com/YaoYingLong/eleven-otelcore/sdkmetric/metricdata"
)

// buildAggregation turns a snapshot of handle entries into the concrete
// metricdata.Aggregation their aggregation.Kind implies (spec.md §4.2's
// per-instrument-kind default aggregation, already resolved by the time a
// storage exists).
func buildAggregation[N int64 | float64](
	kind aggregation.Kind,
	monotonic bool,
	temporality metricdata.Temporality,
	histogramBounds []float64,
	start, collectTime time.Time,
	entries []*syncHandleEntry[N],
) metricdata.Aggregation {
	switch kind {
	case aggregation.KindSum:
		points := make([]metricdata.DataPoint, 0, len(entries))
		for _, e := range entries {
			h, ok := e.handle.(aggregation.SumHandle[N])
			if !ok {
				continue
			}
			v := h.Snapshot(temporality == metricdata.DeltaTemporality)
			points = append(points, dataPointFor(e, start, collectTime, v))
		}
		return metricdata.Aggregation{Sum: &metricdata.Sum{
			DataPoints:  points,
			Temporality: temporality,
			IsMonotonic: monotonic,
		}}

	case aggregation.KindLastValue:
		points := make([]metricdata.DataPoint, 0, len(entries))
		for _, e := range entries {
			h, ok := e.handle.(aggregation.LastValueHandle[N])
			if !ok {
				continue
			}
			v, set := h.Snapshot()
			if !set {
				continue
			}
			points = append(points, dataPointFor(e, start, collectTime, v))
		}
		return metricdata.Aggregation{Gauge: &metricdata.Gauge{DataPoints: points}}

	case aggregation.KindExplicitBucketHistogram:
		points := make([]metricdata.HistogramDataPoint, 0, len(entries))
		for _, e := range entries {
			h, ok := e.handle.(aggregation.HistogramHandle[N])
			if !ok {
				continue
			}
			snap := h.Snapshot(temporality == metricdata.DeltaTemporality)
			points = append(points, metricdata.HistogramDataPoint{
				Attributes:   e.attrs,
				StartTime:    start,
				Time:         collectTime,
				Count:        snap.Count,
				Sum:          snap.Sum,
				Min:          snap.Min,
				Max:          snap.Max,
				HasMinMax:    snap.HasMinMax,
				Bounds:       histogramBounds,
				BucketCounts: snap.BucketCounts,
			})
		}
		return metricdata.Aggregation{Histogram: &metricdata.Histogram{
			DataPoints:  points,
			Temporality: temporality,
		}}

	default: // KindDrop
		return metricdata.Aggregation{}
	}
}

func dataPointFor[N int64 | float64](e *syncHandleEntry[N], start, collectTime time.Time, v N) metricdata.DataPoint {
	dp := metricdata.DataPoint{
		Attributes: e.attrs,
		StartTime:  start,
		Time:       collectTime,
		Value:      float64(v),
	}
	e.reservoir.Collect(&dp.Exemplars)
	return dp
}
