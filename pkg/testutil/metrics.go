package testutil

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// GatherMetricValue returns the value of a metric from the registry,
// or false when no metric with the given name and labels exists.
func GatherMetricValue(t *testing.T, registry *prometheus.Registry, metricName string, labels map[string]string) (float64, bool) {
	t.Helper()

	metrics, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() != metricName {
			continue
		}

		for _, m := range mf.GetMetric() {
			if !labelsMatch(m.GetLabel(), labels) {
				continue
			}

			switch mf.GetType() {
			case dto.MetricType_GAUGE:
				return m.GetGauge().GetValue(), true
			case dto.MetricType_COUNTER:
				return m.GetCounter().GetValue(), true
			case dto.MetricType_HISTOGRAM:
				return m.GetHistogram().GetSampleSum(), true
			default:
				t.Fatalf("Unsupported metric type: %v", mf.GetType())
			}
		}
	}

	return 0, false
}

// AssertMetricValue validates a Prometheus metric value
func AssertMetricValue(t *testing.T, registry *prometheus.Registry, metricName string, labels map[string]string, expected float64) {
	t.Helper()

	value, ok := GatherMetricValue(t, registry, metricName, labels)
	if !ok {
		t.Errorf("Metric %s with labels %v not found", metricName, labels)
		return
	}

	if value != expected {
		t.Errorf("Metric %s with labels %v: expected %f, got %f", metricName, labels, expected, value)
	}
}

// AssertMetricExists checks if a metric exists with given labels
func AssertMetricExists(t *testing.T, registry *prometheus.Registry, metricName string, labels map[string]string) {
	t.Helper()

	if _, ok := GatherMetricValue(t, registry, metricName, labels); !ok {
		t.Errorf("Metric %s with labels %v not found", metricName, labels)
	}
}

// labelsMatch checks whether the metric's label pairs cover every
// expected label.
func labelsMatch(pairs []*dto.LabelPair, expected map[string]string) bool {
	if len(expected) == 0 {
		return true
	}

	actual := make(map[string]string, len(pairs))
	for _, p := range pairs {
		actual[p.GetName()] = p.GetValue()
	}

	for k, v := range expected {
		if actual[k] != v {
			return false
		}
	}
	return true
}
