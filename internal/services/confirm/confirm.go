// Package confirm реализует клиентский путь подтверждения оплаты:
// проверку checkout-сессии в шлюзе и активацию подписки, если
// асинхронное событие еще не пришло.
package confirm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fademebets/fademebets-backend/internal/domain"
	"github.com/fademebets/fademebets-backend/internal/lib/interval"
	"github.com/fademebets/fademebets-backend/internal/models"
	"github.com/fademebets/fademebets-backend/internal/paymentgateway"
)

// EntitlementRepository описывает операции хранилища, нужные подтверждению.
type EntitlementRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ConfirmSubscription(ctx context.Context, userUID string, endDate time.Time, sessionID string) error
}

// Gateway описывает операции платежного шлюза, нужные подтверждению.
type Gateway interface {
	GetCheckoutSession(ctx context.Context, id string) (*paymentgateway.CheckoutSession, error)
}

// TokenMaker выпускает токены доступа для активированных пользователей.
type TokenMaker interface {
	GenerateToken(email, userUID, subscriptionStatus string) (string, error)
}

// Result результат успешного подтверждения сессии.
type Result struct {
	SubscriptionEndDate time.Time
	Token               string
}

// Service обработчик подтверждения checkout-сессий.
type Service struct {
	repo    EntitlementRepository
	gateway Gateway
	maker   TokenMaker
	log     *slog.Logger
	now     func() time.Time
}

// New создает новый сервис подтверждения.
func New(repo EntitlementRepository, gateway Gateway, maker TokenMaker, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		gateway: gateway,
		maker:   maker,
		log:     log,
		now:     time.Now,
	}
}

// ConfirmSession проверяет оплату сессии и активирует подписку пользователя.
// Повторное подтверждение той же сессии отклоняется с ErrAlreadyProcessed
// без повторного продления периода.
func (s *Service) ConfirmSession(ctx context.Context, sessionID, email string, plan models.Plan) (*Result, error) {
	const op = "confirm.ConfirmSession"

	session, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if session.PaymentStatus != "paid" {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrPaymentIncomplete)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.LastSessionID != nil && *user.LastSessionID == sessionID {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrAlreadyProcessed)
	}

	endDate, err := interval.PeriodEnd(s.now().UTC(), plan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.ConfirmSubscription(ctx, user.UID, endDate, sessionID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.maker.GenerateToken(user.Email, user.UID, models.SubscriptionActive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription confirmed",
		slog.String("op", op),
		slog.String("email", user.Email),
		slog.String("session_id", sessionID),
		slog.Time("end_date", endDate))

	return &Result{
		SubscriptionEndDate: endDate,
		Token:               token,
	}, nil
}
