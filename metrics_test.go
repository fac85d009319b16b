package goDrive

import (
	"sync"
	"testing"
)

func TestMetricsDisabledIsInert(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLoginSuccess)
	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("disabled metrics must not count, got %d", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("disabled snapshot must be empty, got %d counters", len(snap.Counters))
	}
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLoginSuccess)
	if m.Enabled() {
		t.Fatal("nil metrics must report disabled")
	}
	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("nil metrics value = %d, want 0", got)
	}
}

func TestMetricsOutOfRangeIgnored(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(metricIDCount)
	m.Inc(metricIDCount + 100)
	for id := MetricID(0); id < metricIDCount; id++ {
		if got := m.Value(id); got != 0 {
			t.Fatalf("metric %d unexpectedly counted: %d", id, got)
		}
	}
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const workers = 8
	const perWorker = 1000
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricRequestRetry)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricRequestRetry); got != workers*perWorker {
		t.Fatalf("counter = %d, want %d", got, workers*perWorker)
	}

	snap := m.Snapshot()
	if got := snap.Counters[MetricRequestRetry]; got != workers*perWorker {
		t.Fatalf("snapshot counter = %d, want %d", got, workers*perWorker)
	}
}
