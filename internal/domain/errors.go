// Package domain содержит общие ошибки бизнес-уровня.
//
// Ошибки используются сервисами и мапятся обработчиками на HTTP статусы:
// валидационные и идемпотентные ошибки — 400, отсутствие записей — 404,
// ошибки шлюза и хранилища — 500.
package domain

import "errors"

var (
	// ErrUserNotFound запись о пользователе отсутствует в хранилище.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionNotFound checkout-сессия не найдена на стороне шлюза.
	ErrSessionNotFound = errors.New("checkout session not found")
	// ErrCustomerMissing шлюз сообщил, что customer больше не существует.
	ErrCustomerMissing = errors.New("gateway customer missing")
	// ErrUnknownPlan план подписки не описан в каталоге.
	ErrUnknownPlan = errors.New("unknown subscription plan")
	// ErrPaymentIncomplete оплата checkout-сессии еще не завершена.
	ErrPaymentIncomplete = errors.New("payment is not completed")
	// ErrAlreadyProcessed сессия уже была подтверждена ранее (повторный вызов).
	ErrAlreadyProcessed = errors.New("session already processed")
	// ErrInvalidCredentials неверная пара логин/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrResetCodeInvalid код восстановления не совпадает или отсутствует.
	ErrResetCodeInvalid = errors.New("invalid reset code")
	// ErrResetCodeExpired истек срок действия кода восстановления.
	ErrResetCodeExpired = errors.New("reset code expired")
)
