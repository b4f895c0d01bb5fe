package stats

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gogogo1024/mcgate/protocol"
)

// MetricsStore exports packet counts as a Prometheus counter and forwards
// every record to an optional inner Store. Prometheus counters only go up, so
// Reset clears the inner store and leaves the exported series alone.
type MetricsStore struct {
	inner    Store
	registry *prometheus.Registry
	packets  *prometheus.CounterVec
	rejected prometheus.Counter
}

type MetricsOption func(*metricsConfig)

type metricsConfig struct {
	namespace   string
	constLabels prometheus.Labels
}

// WithNamespace sets the metric namespace (default "mcgate").
func WithNamespace(ns string) MetricsOption {
	return func(c *metricsConfig) { c.namespace = ns }
}

// WithConstLabels adds labels to every exported series, e.g. the gateway id.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *metricsConfig) { c.constLabels = labels }
}

// NewMetricsStore builds a MetricsStore on its own registry. inner may be nil.
func NewMetricsStore(inner Store, opts ...MetricsOption) *MetricsStore {
	cfg := metricsConfig{namespace: "mcgate"}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &MetricsStore{
		inner:    inner,
		registry: prometheus.NewRegistry(),
		packets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "packets_decoded_total",
			Help:        "Serverbound packets decoded, by connection state and packet name.",
			ConstLabels: cfg.constLabels,
		}, []string{"state", "packet"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "packets_rejected_total",
			Help:        "Records dropped because the state or packet name was invalid.",
			ConstLabels: cfg.constLabels,
		}),
	}
	m.registry.MustRegister(m.packets, m.rejected)
	return m
}

func (m *MetricsStore) Record(state protocol.State, name string) error {
	if _, err := Key(state, name); err != nil {
		m.rejected.Inc()
		return err
	}
	m.packets.WithLabelValues(state.String(), name).Inc()
	if m.inner == nil {
		return nil
	}
	return m.inner.Record(state, name)
}

func (m *MetricsStore) Snapshot() (map[string]int64, error) {
	if m.inner == nil {
		return map[string]int64{}, nil
	}
	return m.inner.Snapshot()
}

func (m *MetricsStore) Reset() error {
	if m.inner == nil {
		return nil
	}
	return m.inner.Reset()
}

// Inner returns the wrapped store, or nil.
func (m *MetricsStore) Inner() Store { return m.inner }

// Handler serves the registry in the Prometheus text format.
func (m *MetricsStore) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
