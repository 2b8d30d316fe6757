// Package paymentgateway реализует клиент платежного шлюза: операции
// с customer, подписками и checkout-сессиями. Шлюз рассматривается как
// внешний сервис со своими отказами; клиент не делает ретраев.
package paymentgateway

import (
	"errors"
	"fmt"
)

// Customer объект customer на стороне шлюза.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Subscription подписка на стороне шлюза.
type Subscription struct {
	ID               string `json:"id"`
	CustomerID       string `json:"customer"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"` // unix-секунды
}

// CheckoutSession одноразовая сессия оплаты одного плана.
type CheckoutSession struct {
	ID            string `json:"id"`
	CustomerID    string `json:"customer"`
	PaymentStatus string `json:"payment_status"` // paid | unpaid
	URL           string `json:"url"`
}

// PriceData цена плана в параметрах создания сессии.
type PriceData struct {
	Currency      string `json:"currency"`
	ProductName   string `json:"product_name"`
	UnitAmount    int    `json:"unit_amount"`
	Interval      string `json:"interval"`
	IntervalCount int    `json:"interval_count,omitempty"`
}

// CreateSessionRequest параметры создания checkout-сессии.
type CreateSessionRequest struct {
	Customer   string    `json:"customer"`
	Mode       string    `json:"mode"`
	PriceData  PriceData `json:"price_data"`
	SuccessURL string    `json:"success_url"`
	CancelURL  string    `json:"cancel_url"`
}

// APIError ошибка, возвращаемая API шлюза в теле ответа.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway: %s (code=%s, status=%d)", e.Message, e.Code, e.StatusCode)
}

// IsNotFound сообщает, что шлюз не нашел запрошенный объект
// (код resource_missing либо HTTP 404).
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == "resource_missing" || apiErr.StatusCode == 404
	}
	return false
}
