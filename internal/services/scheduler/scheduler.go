// Package scheduler периодически ищет подписки с истекающим сроком
// и публикует уведомления для воркера рассылки.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/fademebets/fademebets-backend/internal/lib/sl"
	"github.com/fademebets/fademebets-backend/internal/models"
)

// EntitlementRepository описывает операции хранилища, нужные планировщику.
type EntitlementRepository interface {
	FindSubscriptionsExpiringTomorrow(ctx context.Context) ([]models.ExpiryInfo, error)
}

// NotificationPublisher публикует сообщения для воркера рассылки.
type NotificationPublisher interface {
	Publish(routingKey string, message any) error
}

// Service планировщик уведомлений об истечении подписки.
type Service struct {
	repo      EntitlementRepository
	publisher NotificationPublisher
	log       *slog.Logger
	interval  time.Duration
}

// New создает новый экземпляр планировщика.
func New(repo EntitlementRepository, publisher NotificationPublisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
		interval:  12 * time.Hour,
	}
}

// Run запускает периодический поиск истекающих подписок.
// Статус подписки планировщик никогда не меняет.
func (s *Service) Run(ctx context.Context) {
	s.notifyExpiring(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.notifyExpiring(ctx)
		}
	}
}

func (s *Service) notifyExpiring(ctx context.Context) {
	s.log.Info("starting scan for subscriptions expiring tomorrow")
	expiring, err := s.repo.FindSubscriptionsExpiringTomorrow(ctx)
	if err != nil {
		s.log.Error("failed to find expiring subscriptions", sl.Err(err))
		return
	}
	if len(expiring) == 0 {
		s.log.Info("no expiring subscriptions found")
		return
	}
	s.log.Info("found expiring subscriptions", "count", len(expiring))
	for _, info := range expiring {
		if err = s.publisher.Publish("expiring", info); err != nil {
			s.log.Error("failed to publish expiry message", sl.Err(err))
		}
	}
}
