package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "notes"

// Metrics holds the collectors for the fetch helper, the note store and the
// one-time import. A nil *Metrics records nothing.
type Metrics struct {
	ClientRequests  *prometheus.CounterVec
	ClientDuration  *prometheus.HistogramVec
	StoreOperations *prometheus.CounterVec
	StoreSize       prometheus.Gauge
	ImportedNotes   *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ClientRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http_client",
				Name:      "requests_total",
				Help:      "Outbound requests by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		ClientDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http_client",
				Name:      "request_duration_seconds",
				Help:      "Outbound request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		StoreOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "operations_total",
				Help:      "Note store operations by result",
			},
			[]string{"operation", "result"},
		),
		StoreSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "size",
				Help:      "Notes held in memory after the last reload",
			},
		),
		ImportedNotes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "import",
				Name:      "notes_total",
				Help:      "Notes written by bulk import by result",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) ObserveRequest(method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ClientRequests.WithLabelValues(method, outcome).Inc()
	m.ClientDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) StoreOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StoreOperations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) SetStoreSize(n int) {
	if m == nil {
		return
	}
	m.StoreSize.Set(float64(n))
}

func (m *Metrics) ImportedNote(err error) {
	if m == nil {
		return
	}
	result := "created"
	if err != nil {
		result = "failed"
	}
	m.ImportedNotes.WithLabelValues(result).Inc()
}
