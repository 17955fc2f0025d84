package metrics

import "github.com/prometheus/client_golang/prometheus"

// CallMetrics exposes counters/histograms for the collection call flow.
type CallMetrics struct {
	turnsTotal      *prometheus.CounterVec
	callsCompleted  *prometheus.CounterVec
	turnLatency     *prometheus.HistogramVec
	oracleFallbacks *prometheus.CounterVec
}

func NewCallMetrics(reg prometheus.Registerer) *CallMetrics {
	m := &CallMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collections",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total processed call turns",
		}, []string{"stage", "status"}),
		callsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collections",
			Subsystem: "conversation",
			Name:      "calls_completed_total",
			Help:      "Total completed calls by outcome",
		}, []string{"outcome"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "collections",
			Subsystem: "conversation",
			Name:      "turn_latency_seconds",
			Help:      "Latency of call turn processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		oracleFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collections",
			Subsystem: "conversation",
			Name:      "oracle_fallbacks_total",
			Help:      "Times a templated reply was used because the oracle was unavailable",
		}, []string{"component"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.callsCompleted, m.turnLatency, m.oracleFallbacks)
	return m
}

func (m *CallMetrics) ObserveTurn(stage, status string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(stage, status).Inc()
}

func (m *CallMetrics) ObserveCallCompleted(outcome string) {
	if m == nil {
		return
	}
	m.callsCompleted.WithLabelValues(outcome).Inc()
}

func (m *CallMetrics) ObserveTurnLatency(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(stage).Observe(seconds)
}

func (m *CallMetrics) ObserveOracleFallback(component string) {
	if m == nil {
		return
	}
	m.oracleFallbacks.WithLabelValues(component).Inc()
}
