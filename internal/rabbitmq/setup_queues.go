package rabbitmq

// QueueConfig связка очереди и ключа маршрутизации в exchange "notifications".
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Имена очередей воркера рассылки.
const (
	ExpiryQueue    = "subscription_expiring_queue"
	ResetCodeQueue = "password_reset_queue"
)

// GetNotificationQueues возвращает очереди, которые обслуживает sender.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: ExpiryQueue, RoutingKey: "expiring"},
		{QueueName: ResetCodeQueue, RoutingKey: "reset-code"},
	}
}
