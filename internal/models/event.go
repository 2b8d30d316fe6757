package models

import "time"

// Типы событий, которые шлюз доставляет на webhook.
// Неизвестные типы принимаются и игнорируются.
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventPaymentSucceeded    = "payment.succeeded"
	EventCheckoutCompleted   = "checkout.session.completed"
)

// GatewayEvent распарсенное событие жизненного цикла подписки.
// Ключом служит идентификатор customer: шлюз не гарантирует порядок
// доставки, поэтому номер события для слияния не используется.
type GatewayEvent struct {
	ID               string
	Type             string
	CustomerID       string
	Status           string
	CurrentPeriodEnd *time.Time
}
