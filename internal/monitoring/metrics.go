package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector handles metrics collection and reporting
type MetricsCollector struct {
	registry *prometheus.Registry

	toolCalls     *prometheus.CounterVec
	toolDuration  *prometheus.HistogramVec
	storeOps      *prometheus.CounterVec
	expiringItems prometheus.Gauge
	listsCreated  prometheus.Counter
}

// NewMetricsCollector creates a new metrics collector on a private
// registry.
func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	toolCalls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Tool invocations by name and outcome",
		},
		[]string{"tool", "status"},
	)

	toolDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tool_call_duration_seconds",
			Help:    "Time taken to run a tool call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	storeOps := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Record store loads and saves by collection and outcome",
		},
		[]string{"collection", "operation", "status"},
	)

	expiringItems := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "inventory_expiring_items",
			Help: "Items expiring within the report horizon at last check",
		},
	)

	listsCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shopping_lists_created_total",
			Help: "Shopping lists generated since startup",
		},
	)

	for _, metric := range []prometheus.Collector{
		toolCalls, toolDuration, storeOps, expiringItems, listsCreated,
	} {
		registry.MustRegister(metric)
	}

	return &MetricsCollector{
		registry:      registry,
		toolCalls:     toolCalls,
		toolDuration:  toolDuration,
		storeOps:      storeOps,
		expiringItems: expiringItems,
		listsCreated:  listsCreated,
	}
}

// ObserveToolCall records one tool invocation
func (c *MetricsCollector) ObserveToolCall(tool string, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.toolCalls.WithLabelValues(tool, status).Inc()
	c.toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// ObserveStoreOp records one record store load or save
func (c *MetricsCollector) ObserveStoreOp(collection, operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.storeOps.WithLabelValues(collection, operation, status).Inc()
}

// SetExpiringItems records the current expiring item count
func (c *MetricsCollector) SetExpiringItems(n int) {
	c.expiringItems.Set(float64(n))
}

// IncShoppingLists counts a generated shopping list
func (c *MetricsCollector) IncShoppingLists() {
	c.listsCreated.Inc()
}

// Handler exposes the registry in Prometheus text format
func (c *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
