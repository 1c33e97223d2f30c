package monitoring

import (
	"testing"
)

func TestMonitor_GetMetrics(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)

	metrics := m.GetMetrics()

	// Check if our metric is present
	value, exists := metrics["test_metric"]
	if !exists {
		t.Fatalf("Expected 'test_metric' to be present in metrics, but it was not")
	}

	// Check value
	if value != 42 {
		t.Errorf("Expected 'test_metric' to be 42, but got %v", value)
	}

	// Check uptime presence
	_, exists = metrics["uptime_seconds"]
	if !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}

func TestMonitor_IncrementMetric(t *testing.T) {
	m := NewMonitor()

	m.IncrementMetric("tool_calls")
	m.IncrementMetric("tool_calls")
	m.IncrementMetric("tool_calls")

	value, exists := m.GetMetric("tool_calls")
	if !exists {
		t.Fatalf("Expected 'tool_calls' to be present in metrics, but it was not")
	}
	if value != 3 {
		t.Errorf("Expected 'tool_calls' to be 3, but got %v", value)
	}
}

func TestMonitor_Reset(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)
	m.Reset()

	if _, exists := m.GetMetric("test_metric"); exists {
		t.Errorf("Expected metrics to be empty after reset")
	}
}
