// Package checkout реализует оркестрацию оформления подписки:
// создание клиента в платежном шлюзе, отмену старых подписок
// и создание checkout-сессии для выбранного плана.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fademebets/fademebets-backend/internal/domain"
	"github.com/fademebets/fademebets-backend/internal/lib/sl"
	"github.com/fademebets/fademebets-backend/internal/metrics"
	"github.com/fademebets/fademebets-backend/internal/models"
	"github.com/fademebets/fademebets-backend/internal/paymentgateway"
)

// EntitlementRepository описывает операции хранилища, нужные оркестратору.
type EntitlementRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	RegisterUser(ctx context.Context, user models.User) (string, error)
	SetGatewayCustomerID(ctx context.Context, userUID, customerID string) error
}

// Gateway описывает операции платежного шлюза, нужные оркестратору.
type Gateway interface {
	CreateCustomer(ctx context.Context, email string) (*paymentgateway.Customer, error)
	GetCustomer(ctx context.Context, id string) (*paymentgateway.Customer, error)
	ListActiveSubscriptions(ctx context.Context, customerID string) ([]paymentgateway.Subscription, error)
	CancelSubscription(ctx context.Context, id string) error
	CreateCheckoutSession(ctx context.Context, req paymentgateway.CreateSessionRequest) (*paymentgateway.CheckoutSession, error)
}

// Service оркестратор оформления подписки.
type Service struct {
	repo       EntitlementRepository
	gateway    Gateway
	log        *slog.Logger
	successURL string
	cancelURL  string
}

// New создает новый сервис оформления подписки.
func New(repo EntitlementRepository, gateway Gateway, log *slog.Logger, successURL, cancelURL string) *Service {
	return &Service{
		repo:       repo,
		gateway:    gateway,
		log:        log,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateSession создает checkout-сессию для пары email/план и возвращает её идентификатор.
// Повторный вызов безопасен на уровне записи пользователя, но каждая сессия новая.
func (s *Service) CreateSession(ctx context.Context, email string, plan models.Plan) (string, error) {
	const op = "checkout.CreateSession"

	price, err := models.PriceFor(plan)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		uid, regErr := s.repo.RegisterUser(ctx, models.User{
			Email:              email,
			Role:               "user",
			SubscriptionStatus: models.SubscriptionInactive,
		})
		if regErr != nil {
			return "", fmt.Errorf("%s: %w", op, regErr)
		}
		user = &models.User{
			UID:                uid,
			Email:              email,
			SubscriptionStatus: models.SubscriptionInactive,
		}
	} else if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.cancelActiveSubscriptions(ctx, customerID)

	session, err := s.gateway.CreateCheckoutSession(ctx, paymentgateway.CreateSessionRequest{
		Customer: customerID,
		Mode:     "subscription",
		PriceData: paymentgateway.PriceData{
			Currency:      price.Currency,
			ProductName:   price.ProductName,
			UnitAmount:    price.UnitAmount,
			Interval:      price.Interval,
			IntervalCount: price.IntervalCount,
		},
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	metrics.IncCheckoutSession(string(plan))
	return session.ID, nil
}

// ensureCustomer гарантирует существование customer в шлюзе для пользователя.
// Если сохраненный идентификатор больше не резолвится, создается новый
// и запись в хранилище обновляется.
func (s *Service) ensureCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.GatewayCustomerID != nil {
		customer, err := s.gateway.GetCustomer(ctx, *user.GatewayCustomerID)
		if err == nil {
			return customer.ID, nil
		}
		if !errors.Is(err, domain.ErrCustomerMissing) {
			return "", err
		}
		s.log.Warn("stored gateway customer missing, recreating",
			slog.String("email", user.Email),
			slog.String("stale_customer_id", *user.GatewayCustomerID))
	}

	customer, err := s.gateway.CreateCustomer(ctx, user.Email)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetGatewayCustomerID(ctx, user.UID, customer.ID); err != nil {
		return "", err
	}
	return customer.ID, nil
}

// cancelActiveSubscriptions отменяет все активные подписки customer в шлюзе.
// Ошибки не прерывают оформление, только логируются.
func (s *Service) cancelActiveSubscriptions(ctx context.Context, customerID string) {
	subs, err := s.gateway.ListActiveSubscriptions(ctx, customerID)
	if err != nil {
		s.log.Warn("failed to list active subscriptions",
			slog.String("customer_id", customerID), sl.Err(err))
		return
	}
	for _, sub := range subs {
		if err := s.gateway.CancelSubscription(ctx, sub.ID); err != nil {
			s.log.Warn("failed to cancel old subscription",
				slog.String("subscription_id", sub.ID), sl.Err(err))
		}
	}
}
