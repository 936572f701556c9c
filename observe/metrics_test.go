package observe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newRecordingMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_Success(t *testing.T) {
	m, reader := newRecordingMetrics(t)

	m.RecordExecution(context.Background(), CheckMeta{Name: "db"}, 100*time.Millisecond, nil)

	rm := collect(t, reader)
	if got := sumValue(t, rm, "check.exec.total"); got != 1 {
		t.Errorf("check.exec.total = %d, want 1", got)
	}
	if got := sumValue(t, rm, "check.exec.errors"); got != 0 {
		t.Errorf("check.exec.errors = %d, want 0", got)
	}
}

func TestMetrics_Failure(t *testing.T) {
	m, reader := newRecordingMetrics(t)

	m.RecordExecution(context.Background(), CheckMeta{Name: "disk"}, time.Millisecond, errors.New("disk full"))

	rm := collect(t, reader)
	if got := sumValue(t, rm, "check.exec.errors"); got != 1 {
		t.Errorf("check.exec.errors = %d, want 1", got)
	}
}

func TestMetrics_DurationHistogram(t *testing.T) {
	m, reader := newRecordingMetrics(t)

	m.RecordExecution(context.Background(), CheckMeta{Name: "db"}, 1500*time.Microsecond, nil)

	found := findMetric(collect(t, reader), "check.exec.duration_ms")
	if found == nil {
		t.Fatal("check.exec.duration_ms not found")
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) != 1 {
		t.Fatalf("len(DataPoints) = %d, want 1", len(hist.DataPoints))
	}
	if hist.DataPoints[0].Sum != 1.5 {
		t.Errorf("sum = %v, want 1.5", hist.DataPoints[0].Sum)
	}
}

func TestMetrics_AttributesPerCheck(t *testing.T) {
	m, reader := newRecordingMetrics(t)
	ctx := context.Background()

	m.RecordExecution(ctx, CheckMeta{Name: "db", Type: "postgres"}, time.Millisecond, nil)
	m.RecordExecution(ctx, CheckMeta{Name: "cache", Type: "tcp"}, time.Millisecond, nil)

	sum := findMetric(collect(t, reader), "check.exec.total").Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 2 {
		t.Fatalf("len(DataPoints) = %d, want one per check", len(sum.DataPoints))
	}
	for _, dp := range sum.DataPoints {
		if _, ok := dp.Attributes.Value("check.name"); !ok {
			t.Error("data point missing check.name")
		}
		if _, ok := dp.Attributes.Value("check.type"); !ok {
			t.Error("data point missing check.type")
		}
	}
}

func TestMetrics_Concurrent(t *testing.T) {
	m, reader := newRecordingMetrics(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordExecution(context.Background(), CheckMeta{Name: "db"}, time.Millisecond, nil)
		}()
	}
	wg.Wait()

	if got := sumValue(t, collect(t, reader), "check.exec.total"); got != 50 {
		t.Errorf("check.exec.total = %d, want 50", got)
	}
}
