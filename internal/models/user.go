// Package models содержит доменные структуры сервиса: запись о пользователе
// с его подпиской, каталог планов и события платежного шлюза.
package models

import "time"

// Статусы подписки, которые хранилище принимает от шлюза.
// Шлюз является единственным источником правды о текущем статусе,
// поэтому значения записываются как есть; локально сервис принудительно
// выставляет только "inactive".
const (
	SubscriptionInactive = "inactive"
	SubscriptionActive   = "active"
)

// User представляет запись о пользователе и состоянии его подписки.
// Запись уникальна по email; статус и дата окончания меняются только
// обработчиком событий шлюза и подтверждением checkout-сессии.
type User struct {
	UID                 string     // Уникальный идентификатор пользователя
	Email               string     // Электронная почта (уникальная)
	PasswordHash        string     // Хэш пароля, пустой до регистрации через checkout
	Role                string     // Роль пользователя, admin или user
	GatewayCustomerID   *string    // Идентификатор customer на стороне шлюза
	SubscriptionStatus  string     // Статус подписки, по умолчанию inactive
	SubscriptionEndDate *time.Time // Дата окончания оплаченного периода
	LastSessionID       *string    // Последняя подтвержденная checkout-сессия
	ResetCode           *string    // Код восстановления пароля
	ResetCodeExpiry     *time.Time // Срок действия кода восстановления
}

// ResetCodeMessage сообщение для воркера рассылки с кодом восстановления.
type ResetCodeMessage struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ExpiryInfo сообщение для воркера рассылки о скором окончании подписки.
type ExpiryInfo struct {
	Email   string    `json:"email"`
	EndDate time.Time `json:"end_date"`
}
