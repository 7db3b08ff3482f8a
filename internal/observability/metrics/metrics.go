// Package metrics exposes Prometheus instrumentation for the bot:
// turn throughput, parser degradation, and booking outcomes.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// BotMetrics exposes counters for the chat and booking flows. All
// observe methods are nil-safe so callers can run uninstrumented.
type BotMetrics struct {
	turnsTotal           prometheus.Counter
	normalizerFallbacks  prometheus.Counter
	extractionModelCalls prometheus.Counter
	bookingOutcomes      *prometheus.CounterVec
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		turnsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trialbot",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total chat turns processed",
		}),
		normalizerFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trialbot",
			Subsystem: "conversation",
			Name:      "normalizer_fallbacks_total",
			Help:      "Conversational replies that failed all parse strategies",
		}),
		extractionModelCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trialbot",
			Subsystem: "extraction",
			Name:      "model_calls_total",
			Help:      "Dedicated field-extraction model calls",
		}),
		bookingOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trialbot",
			Subsystem: "booking",
			Name:      "outcomes_total",
			Help:      "Booking attempts by terminal outcome",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.normalizerFallbacks, m.extractionModelCalls, m.bookingOutcomes)
	return m
}

func (m *BotMetrics) ObserveTurn() {
	if m == nil {
		return
	}
	m.turnsTotal.Inc()
}

func (m *BotMetrics) ObserveNormalizerFallback() {
	if m == nil {
		return
	}
	m.normalizerFallbacks.Inc()
}

func (m *BotMetrics) ObserveExtractionModelCall() {
	if m == nil {
		return
	}
	m.extractionModelCalls.Inc()
}

func (m *BotMetrics) ObserveBookingOutcome(kind string) {
	if m == nil {
		return
	}
	m.bookingOutcomes.WithLabelValues(kind).Inc()
}
