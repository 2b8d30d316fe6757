// Package reconciler применяет события жизненного цикла подписок
// из платежного шлюза к записям пользователей. События применяются
// идемпотентно по идентификатору customer, без учета порядка доставки.
package reconciler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fademebets/fademebets-backend/internal/lib/sl"
	"github.com/fademebets/fademebets-backend/internal/metrics"
	"github.com/fademebets/fademebets-backend/internal/models"
)

// EntitlementRepository описывает операции хранилища, нужные реконсилеру.
type EntitlementRepository interface {
	UpdateSubscriptionState(ctx context.Context, customerID, status string, endDate *time.Time) (int64, error)
	MarkSubscriptionInactive(ctx context.Context, customerID string) (int64, error)
}

// Service обработчик событий платежного шлюза.
type Service struct {
	repo EntitlementRepository
	log  *slog.Logger
}

// New создает новый сервис сверки событий.
func New(repo EntitlementRepository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// eventPayload формат тела вебхука шлюза.
type eventPayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID               string `json:"id"`
			Customer         string `json:"customer"`
			Status           string `json:"status"`
			CurrentPeriodEnd int64  `json:"current_period_end"`
		} `json:"object"`
	} `json:"data"`
}

// ProcessEvent разбирает тело вебхука и применяет событие к хранилищу.
// Подпись должна быть проверена вызывающей стороной до разбора тела.
// Неизвестные типы событий и события для неизвестных customer
// принимаются и игнорируются, чтобы шлюз не повторял доставку.
func (s *Service) ProcessEvent(ctx context.Context, raw []byte) error {
	const op = "reconciler.ProcessEvent"

	var payload eventPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.log.Error("failed to parse webhook payload", sl.Err(err))
		metrics.IncWebhookEvent("unparsable", "ignored")
		return nil
	}

	event := models.GatewayEvent{
		ID:         payload.ID,
		Type:       payload.Type,
		CustomerID: payload.Data.Object.Customer,
		Status:     payload.Data.Object.Status,
	}
	if payload.Data.Object.CurrentPeriodEnd > 0 {
		t := time.Unix(payload.Data.Object.CurrentPeriodEnd, 0).UTC()
		event.CurrentPeriodEnd = &t
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("event_id", event.ID),
		slog.String("event_type", event.Type),
	)

	switch event.Type {
	case models.EventSubscriptionCreated, models.EventSubscriptionUpdated:
		rows, err := s.repo.UpdateSubscriptionState(ctx, event.CustomerID, event.Status, event.CurrentPeriodEnd)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if rows == 0 {
			log.Warn("event for unknown customer dropped",
				slog.String("customer_id", event.CustomerID))
			metrics.IncWebhookEvent(event.Type, "dropped")
			return nil
		}
		log.Info("subscription state updated",
			slog.String("customer_id", event.CustomerID),
			slog.String("status", event.Status))
		metrics.IncWebhookEvent(event.Type, "applied")

	case models.EventSubscriptionDeleted:
		rows, err := s.repo.MarkSubscriptionInactive(ctx, event.CustomerID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if rows == 0 {
			log.Warn("event for unknown customer dropped",
				slog.String("customer_id", event.CustomerID))
			metrics.IncWebhookEvent(event.Type, "dropped")
			return nil
		}
		log.Info("subscription deactivated",
			slog.String("customer_id", event.CustomerID))
		metrics.IncWebhookEvent(event.Type, "applied")

	case models.EventPaymentSucceeded, models.EventCheckoutCompleted:
		log.Info("informational event received")
		metrics.IncWebhookEvent(event.Type, "ignored")

	default:
		log.Info("unknown event type ignored")
		metrics.IncWebhookEvent("unknown", "ignored")
	}

	return nil
}
