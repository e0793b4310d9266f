package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PayLaterMetrics содержит метрики жизненного цикла заказов PayLater
type PayLaterMetrics struct {
	// Входящие вебхуки по источнику и результату
	WebhooksTotal prometheus.CounterVec

	// Применённые переходы состояний
	TransitionsTotal prometheus.CounterVec

	// Выдача платёжных ссылок
	PaymentLinksTotal     prometheus.CounterVec
	ProviderAttemptsTotal prometheus.CounterVec
	PaymentLinkDuration   prometheus.HistogramVec

	// Ошибки побочных эффектов (email, платформа, kafka)
	SideEffectFailuresTotal prometheus.CounterVec

	// Планировщик
	ExpirySweepDuration prometheus.Histogram
	PendingOrders       prometheus.Gauge
}

// NewPayLaterMetrics registers the collectors on reg. Pass
// prometheus.DefaultRegisterer in production.
func NewPayLaterMetrics(reg prometheus.Registerer) *PayLaterMetrics {
	factory := promauto.With(reg)
	return &PayLaterMetrics{
		WebhooksTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paylater_webhooks_total",
				Help: "Inbound webhooks by source and outcome",
			},
			[]string{"source", "outcome"},
		),

		TransitionsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paylater_transitions_total",
				Help: "Applied order state transitions",
			},
			[]string{"transition"},
		),

		PaymentLinksTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paylater_payment_links_total",
				Help: "Payment link requests by outcome (issued, cached, failed)",
			},
			[]string{"outcome"},
		),

		ProviderAttemptsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paylater_provider_attempts_total",
				Help: "Individual calls to the PayLater provider",
			},
			[]string{"outcome"},
		),

		PaymentLinkDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paylater_payment_link_duration_seconds",
				Help:    "Time to issue a payment link including retries",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"outcome"},
		),

		SideEffectFailuresTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paylater_side_effect_failures_total",
				Help: "Best-effort side effects that failed",
			},
			[]string{"effect"},
		),

		ExpirySweepDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "paylater_expiry_sweep_duration_seconds",
				Help:    "Duration of one expiry sweep",
				Buckets: prometheus.DefBuckets,
			},
		),

		PendingOrders: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "paylater_pending_orders",
				Help: "Orders pending on the provider side at the last sweep",
			},
		),
	}
}

// RecordWebhook записывает обработанный вебхук
func (m *PayLaterMetrics) RecordWebhook(source, outcome string) {
	m.WebhooksTotal.WithLabelValues(source, outcome).Inc()
}

// RecordTransition записывает переход состояния
func (m *PayLaterMetrics) RecordTransition(transition string) {
	m.TransitionsTotal.WithLabelValues(transition).Inc()
}

// RecordPaymentLink записывает результат выдачи ссылки
func (m *PayLaterMetrics) RecordPaymentLink(outcome string, durationSeconds float64) {
	m.PaymentLinksTotal.WithLabelValues(outcome).Inc()
	m.PaymentLinkDuration.WithLabelValues(outcome).Observe(durationSeconds)
}

func (m *PayLaterMetrics) RecordProviderAttempt(outcome string) {
	m.ProviderAttemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *PayLaterMetrics) RecordSideEffectFailure(effect string) {
	m.SideEffectFailuresTotal.WithLabelValues(effect).Inc()
}

// RecordSweep записывает длительность прохода планировщика
func (m *PayLaterMetrics) RecordSweep(durationSeconds float64, pending int) {
	m.ExpirySweepDuration.Observe(durationSeconds)
	m.PendingOrders.Set(float64(pending))
}
