package server

import (
	"errors"
	"net/http"

	"github.com/muurk/tapcalc/internal/calc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "tapcalc"

// Evaluation outcome label values.
const (
	outcomeOK                = "ok"
	outcomeDivisionByZero    = "division_by_zero"
	outcomeInvalidExpression = "invalid_expression"
)

// Rejection reason label values.
const (
	reasonRateLimited    = "rate_limited"
	reasonInvalidMessage = "invalid_message"
	reasonBinaryFrame    = "binary_frame"
)

// Metrics is the server's Prometheus metric set, kept on its own registry
// so several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	keyEvents      *prometheus.CounterVec
	evaluations    *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	sessionsActive prometheus.Gauge
	sessionsTotal  prometheus.Counter
}

// NewMetrics registers the tapcalc metrics plus Go runtime and process
// collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		keyEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "key_events_total",
			Help:      "Key messages applied to a display, by action.",
		}, []string{"action"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "evaluations_total",
			Help:      "Evaluations by outcome.",
		}, []string{"outcome"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_rejected_total",
			Help:      "Client messages rejected before reaching a display, by reason.",
		}, []string{"reason"}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "sessions_active",
			Help:      "Open WebSocket sessions.",
		}),
		sessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sessions_total",
			Help:      "WebSocket sessions accepted since start.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.keyEvents,
		m.evaluations,
		m.rejected,
		m.sessionsActive,
		m.sessionsTotal,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeKey(action calc.Action) {
	m.keyEvents.WithLabelValues(action.String()).Inc()
}

func (m *Metrics) observeEvaluation(err error) {
	m.evaluations.WithLabelValues(evaluationOutcome(err)).Inc()
}

func (m *Metrics) observeRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

func evaluationOutcome(err error) string {
	var calcErr *calc.Error
	switch {
	case err == nil:
		return outcomeOK
	case errors.As(err, &calcErr) && calcErr.Kind == calc.KindDivisionByZero:
		return outcomeDivisionByZero
	default:
		return outcomeInvalidExpression
	}
}
