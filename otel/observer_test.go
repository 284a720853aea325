package otel_test

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace/noop"

	beltotel "github.com/toolbelt-dev/toolbelt/otel"
	"github.com/toolbelt-dev/toolbelt/tool"
)

// newTestMeter returns a meter backed by a manual reader for collecting metrics in tests.
func newTestMeter() (*metric.ManualReader, *metric.MeterProvider) {
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	return reader, mp
}

// collectMetrics reads all metrics from the reader.
func collectMetrics(t *testing.T, reader *metric.ManualReader) *metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return &rm
}

// findMetric searches for a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, scope := range rm.ScopeMetrics {
		for i := range scope.Metrics {
			if scope.Metrics[i].Name == name {
				return &scope.Metrics[i]
			}
		}
	}
	return nil
}

func TestToolObserverRecordsMetrics(t *testing.T) {
	reader, mp := newTestMeter()
	meter := mp.Meter("test-tool-observer")
	tracer := noop.NewTracerProvider().Tracer("test-tool-observer")

	observer, err := beltotel.NewToolObserver(meter, tracer)
	if err != nil {
		t.Fatalf("NewToolObserver() error = %v", err)
	}

	observer.ObserveInvoke(tool.ToolInvokeObservation{
		ToolName:   "url_fetcher",
		Action:     "fetch",
		Transport:  tool.TransportTypeHTTP,
		Attempts:   2,
		DurationMS: 120,
		Success:    false,
		ErrorCode:  tool.ToolErrorCodeUpstreamFailure,
	})
	observer.ObserveRetry(tool.ToolRetryObservation{
		ToolName:  "url_fetcher",
		Action:    "fetch",
		Transport: tool.TransportTypeHTTP,
		Attempt:   1,
		ErrorCode: tool.ToolErrorCodeUpstreamFailure,
	})
	observer.ObserveHealth(tool.ToolHealthObservation{
		ToolName:       "url_fetcher",
		State:          tool.HealthUnhealthy,
		Status:         tool.StatusUnhealthy,
		FailureCount:   3,
		DurationMS:     45,
		PreviousStatus: tool.StatusReady,
		ErrorCode:      tool.ToolErrorCodeTransportFailure,
	})

	rm := collectMetrics(t, reader)

	invocations := findMetric(rm, "toolbelt.tool.invocations")
	if invocations == nil {
		t.Fatal("toolbelt.tool.invocations metric not found")
	}
	if _, ok := invocations.Data.(metricdata.Sum[int64]); !ok {
		t.Fatalf("toolbelt.tool.invocations type = %T, want Sum[int64]", invocations.Data)
	}

	retries := findMetric(rm, "toolbelt.tool.retries")
	if retries == nil {
		t.Fatal("toolbelt.tool.retries metric not found")
	}
	if _, ok := retries.Data.(metricdata.Sum[int64]); !ok {
		t.Fatalf("toolbelt.tool.retries type = %T, want Sum[int64]", retries.Data)
	}

	health := findMetric(rm, "toolbelt.tool.health.checks")
	if health == nil {
		t.Fatal("toolbelt.tool.health.checks metric not found")
	}
	if _, ok := health.Data.(metricdata.Sum[int64]); !ok {
		t.Fatalf("toolbelt.tool.health.checks type = %T, want Sum[int64]", health.Data)
	}

	latency := findMetric(rm, "toolbelt.tool.latency")
	if latency == nil {
		t.Fatal("toolbelt.tool.latency metric not found")
	}
	if _, ok := latency.Data.(metricdata.Histogram[float64]); !ok {
		t.Fatalf("toolbelt.tool.latency type = %T, want Histogram[float64]", latency.Data)
	}
}

func TestToolObserverCountsInvocationsPerOutcome(t *testing.T) {
	reader, mp := newTestMeter()
	observer, err := beltotel.NewToolObserver(mp.Meter("test"), noop.NewTracerProvider().Tracer("test"))
	if err != nil {
		t.Fatalf("NewToolObserver() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		observer.ObserveInvoke(tool.ToolInvokeObservation{
			ToolName:  "Word Counter Tool",
			Action:    "count",
			Transport: tool.TransportTypeNative,
			Attempts:  1,
			Success:   true,
		})
	}

	rm := collectMetrics(t, reader)
	invocations := findMetric(rm, "toolbelt.tool.invocations")
	if invocations == nil {
		t.Fatal("toolbelt.tool.invocations metric not found")
	}
	sumData, ok := invocations.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("data type = %T, want Sum[int64]", invocations.Data)
	}
	if len(sumData.DataPoints) != 1 {
		t.Fatalf("len(data points) = %d, want 1", len(sumData.DataPoints))
	}
	if sumData.DataPoints[0].Value != 3 {
		t.Fatalf("counter value = %d, want 3", sumData.DataPoints[0].Value)
	}
}

func TestSetupDisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := beltotel.Setup(context.Background(), beltotel.Config{})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if shutdown == nil {
		t.Fatal("Setup() shutdown = nil, want no-op function")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
}
