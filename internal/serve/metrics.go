package serve

import (
	"net/http"

	"github.com/janekbaraniewski/usagebar/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "usagebar"

// Metrics mirrors published poller states into a private Prometheus registry.
type Metrics struct {
	registry    *prometheus.Registry
	utilization *prometheus.GaugeVec
	cycles      *prometheus.CounterVec
	lastSuccess prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		utilization: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "utilization_percent",
				Help:      "Used percentage of each quota window from the last successful refresh.",
			},
			[]string{"window"},
		),
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refresh_cycles_total",
				Help:      "Refresh cycles by outcome.",
			},
			[]string{"outcome"},
		),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last refresh that reached the usage endpoint.",
		}),
	}
	m.registry.MustRegister(m.utilization, m.cycles, m.lastSuccess)
	return m
}

// Observe records one published state. Demo readings are counted but never exported
// as utilization.
func (m *Metrics) Observe(s core.State) {
	if s.Kind == core.StateUninitialized {
		return
	}
	m.cycles.WithLabelValues(string(s.Kind)).Inc()

	switch s.Kind {
	case core.StateConnected:
		for _, w := range s.Windows() {
			m.utilization.WithLabelValues(string(w.ID)).Set(w.Utilization)
		}
		m.lastSuccess.Set(float64(s.RefreshedAt.UnixNano()) / 1e9)
	default:
		m.utilization.Reset()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
