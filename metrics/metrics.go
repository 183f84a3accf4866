// Package metrics exposes worker activity as Prometheus collectors.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/moffa90/go-spimem/worker"
)

// Run outcomes used as the outcome label.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeStopped = "stopped"
)

// Metrics holds all Prometheus collectors for the worker.
type Metrics struct {
	EventsTotal      *prometheus.CounterVec
	RunsTotal        *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	BytesTransferred *prometheus.CounterVec
	Progress         *prometheus.GaugeVec

	mu      sync.Mutex
	offsets map[string]int64
}

// NewMetrics creates and registers all metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spimem",
			Name:      "events_total",
			Help:      "Total number of worker events by kind.",
		}, []string{"event"}),

		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spimem",
			Name:      "runs_total",
			Help:      "Total number of worker runs.",
		}, []string{"mode", "outcome"}),

		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:                       "spimem",
			Name:                            "run_duration_seconds",
			Help:                            "Worker run duration in seconds.",
			Buckets:                         prometheus.ExponentialBuckets(0.01, 4, 10),
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 0,
		}, []string{"mode"}),

		BytesTransferred: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spimem",
			Name:      "bytes_transferred_total",
			Help:      "Total bytes read from the chip.",
		}, []string{"mode"}),

		Progress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "spimem",
			Name:      "progress_ratio",
			Help:      "Completed fraction of the current run.",
		}, []string{"mode"}),

		offsets: make(map[string]int64),
	}

	reg.MustRegister(
		m.EventsTotal,
		m.RunsTotal,
		m.RunDuration,
		m.BytesTransferred,
		m.Progress,
	)

	return m
}

// Observe counts one worker event. It has the signature of a
// worker.EventCallback.
func (m *Metrics) Observe(ev worker.Event) {
	m.EventsTotal.WithLabelValues(ev.String()).Inc()
}

// ObserveProgress tracks transferred bytes and the completed fraction. It has
// the signature of a worker.ProgressCallback.
func (m *Metrics) ObserveProgress(p worker.Progress) {
	mode := p.Mode.String()
	m.Progress.WithLabelValues(mode).Set(p.Percentage / 100)

	m.mu.Lock()
	last := m.offsets[mode]
	if p.Offset < last {
		// new run
		last = 0
	}
	m.offsets[mode] = p.Offset
	m.mu.Unlock()

	if delta := p.Offset - last; delta > 0 {
		m.BytesTransferred.WithLabelValues(mode).Add(float64(delta))
	}
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(mode worker.Mode, outcome string, d time.Duration) {
	m.mu.Lock()
	delete(m.offsets, mode.String())
	m.mu.Unlock()

	m.RunsTotal.WithLabelValues(mode.String(), outcome).Inc()
	m.RunDuration.WithLabelValues(mode.String()).Observe(d.Seconds())
}

// WriteTextfile writes the gathered metrics to path in the text exposition
// format, for the node_exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
