// Package metrics содержит счетчики Prometheus для бизнес-событий.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Gateway webhook events by type and outcome (applied/dropped/ignored).",
		},
		[]string{"type", "outcome"},
	)

	checkoutSessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_sessions_total",
			Help: "Checkout sessions created, labeled by plan.",
		},
		[]string{"plan"},
	)
)

// MustRegister регистрирует счетчики в реестре по умолчанию (идемпотентно).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			webhookEventsTotal,
			checkoutSessionsTotal,
		)
	})
}

// IncWebhookEvent учитывает обработанное событие шлюза.
func IncWebhookEvent(eventType, outcome string) {
	webhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

// IncCheckoutSession учитывает созданную checkout-сессию.
func IncCheckoutSession(plan string) {
	checkoutSessionsTotal.WithLabelValues(plan).Inc()
}
