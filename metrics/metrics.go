// Package metrics provides Prometheus metrics for descriptor lifecycles.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters updated by the proxy package.
type Metrics struct {
	// Lifecycle metrics
	ProxiesCreated      prometheus.Counter
	DescriptorsReleased *prometheus.CounterVec
	ReleasePanics       prometheus.Counter

	// Copy metrics
	DeepCopies  prometheus.Counter
	BytesCopied prometheus.Counter

	// View metrics
	BufferRecomputes prometheus.Counter
}

// DefaultMetrics is used by proxies built without WithMetrics. Its collectors
// are not registered anywhere; register them or pass your own instance to
// export them.
var DefaultMetrics = NewMetrics(nil, "columnar")

// NewMetrics creates a new Metrics instance with the given namespace and
// registers it with reg. A nil reg leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProxiesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proxies_created_total",
			Help:      "Total number of descriptor proxies constructed",
		}),
		DescriptorsReleased: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "descriptors_released_total",
			Help:      "Total number of owned descriptors released by kind",
		}, []string{"kind"}),
		ReleasePanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "release_panics_total",
			Help:      "Total number of release callbacks that panicked",
		}),

		DeepCopies: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deep_copies_total",
			Help:      "Total number of deep copies of descriptor pairs",
		}),
		BytesCopied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_copied_total",
			Help:      "Total number of buffer bytes duplicated by deep copies",
		}),

		BufferRecomputes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "buffer_view_recomputes_total",
			Help:      "Total number of buffer view recomputations after mutations",
		}),
	}
}

// RecordRelease records the release of an owned descriptor of the given kind,
// "array" or "schema".
func (m *Metrics) RecordRelease(kind string) {
	m.DescriptorsReleased.WithLabelValues(kind).Inc()
}

// RecordCopy records a deep copy that duplicated n buffer bytes.
func (m *Metrics) RecordCopy(n int) {
	m.DeepCopies.Inc()
	m.BytesCopied.Add(float64(n))
}
