// Package metrics exposes low-cardinality instruments for the command
// bus and the HTTP surface.
package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Config labels the instruments.
type Config struct {
	ServiceName string
	Environment string
}

// BusMetrics tracks the command bus: one series per failure kind, no
// per-operation labels (operation names include user data).
type BusMetrics struct {
	executions prometheus.Counter
	retries    prometheus.Counter
	failures   *prometheus.CounterVec
	queueDepth prometheus.Gauge
}

var (
	busMetricsOnce sync.Once
	busMetrics     *BusMetrics
)

// Bus returns the process-wide bus metrics, registering them on first
// use.
func Bus(cfg Config) *BusMetrics {
	busMetricsOnce.Do(func() {
		busMetrics = newBusMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return busMetrics
}

// ResetBusMetricsForTest clears the singleton between test binaries.
func ResetBusMetricsForTest() {
	busMetricsOnce = sync.Once{}
	busMetrics = nil
}

func newBusMetrics(registerer prometheus.Registerer, cfg Config) *BusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := prometheus.Labels{
		"service":     valueOr(cfg.ServiceName, "ungd"),
		"environment": valueOr(cfg.Environment, "development"),
	}

	m := &BusMetrics{
		executions: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "ung_bus_executions_total",
			Help:        "Tool invocations executed by the command bus.",
			ConstLabels: labels,
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "ung_bus_retries_total",
			Help:        "Retryable failures re-queued at the front of the bus.",
			ConstLabels: labels,
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "ung_bus_failures_total",
			Help:        "Terminal command failures by failure kind.",
			ConstLabels: labels,
		}, []string{"kind"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "ung_bus_queue_depth",
			Help:        "Commands currently waiting in the bus queue.",
			ConstLabels: labels,
		}),
	}

	registerer.MustRegister(m.executions, m.retries, m.failures, m.queueDepth)
	return m
}

func (m *BusMetrics) ObserveExecution() {
	if m == nil {
		return
	}
	m.executions.Inc()
}

func (m *BusMetrics) ObserveRetry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

func (m *BusMetrics) ObserveFailure(kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(kind).Inc()
}

func (m *BusMetrics) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

func valueOr(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
