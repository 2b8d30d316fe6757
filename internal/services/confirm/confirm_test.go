package confirm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fademebets/fademebets-backend/internal/domain"
	"github.com/fademebets/fademebets-backend/internal/models"
	"github.com/fademebets/fademebets-backend/internal/paymentgateway"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) ConfirmSubscription(ctx context.Context, userUID string, endDate time.Time, sessionID string) error {
	args := m.Called(ctx, userUID, endDate, sessionID)
	return args.Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetCheckoutSession(ctx context.Context, id string) (*paymentgateway.CheckoutSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentgateway.CheckoutSession), args.Error(1)
}

type MockTokenMaker struct {
	mock.Mock
}

func (m *MockTokenMaker) GenerateToken(email, userUID, subscriptionStatus string) (string, error) {
	args := m.Called(email, userUID, subscriptionStatus)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func strPtr(s string) *string { return &s }

func TestService_ConfirmSession(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		sessionID     string
		email         string
		plan          models.Plan
		setupMocks    func(*MockRepository, *MockGateway, *MockTokenMaker)
		expectedEnd   time.Time
		expectedToken string
		expectedError error
	}{
		{
			name:      "monthly plan extends period by one month",
			sessionID: "cs_1",
			email:     "a@x.com",
			plan:      models.PlanMonthly,
			setupMocks: func(r *MockRepository, g *MockGateway, tm *MockTokenMaker) {
				g.On("GetCheckoutSession", mock.Anything, "cs_1").
					Return(&paymentgateway.CheckoutSession{ID: "cs_1", PaymentStatus: "paid"}, nil).Once()
				r.On("GetUserByEmail", mock.Anything, "a@x.com").
					Return(&models.User{UID: "uid-1", Email: "a@x.com"}, nil).Once()
				r.On("ConfirmSubscription", mock.Anything, "uid-1", now.AddDate(0, 1, 0), "cs_1").
					Return(nil).Once()
				tm.On("GenerateToken", "a@x.com", "uid-1", models.SubscriptionActive).
					Return("jwt-token", nil).Once()
			},
			expectedEnd:   now.AddDate(0, 1, 0),
			expectedToken: "jwt-token",
		},
		{
			name:      "quarterly plan extends period by three months",
			sessionID: "cs_2",
			email:     "a@x.com",
			plan:      models.PlanQuarterly,
			setupMocks: func(r *MockRepository, g *MockGateway, tm *MockTokenMaker) {
				g.On("GetCheckoutSession", mock.Anything, "cs_2").
					Return(&paymentgateway.CheckoutSession{ID: "cs_2", PaymentStatus: "paid"}, nil).Once()
				r.On("GetUserByEmail", mock.Anything, "a@x.com").
					Return(&models.User{UID: "uid-1", Email: "a@x.com"}, nil).Once()
				r.On("ConfirmSubscription", mock.Anything, "uid-1", now.AddDate(0, 3, 0), "cs_2").
					Return(nil).Once()
				tm.On("GenerateToken", "a@x.com", "uid-1", models.SubscriptionActive).
					Return("jwt-token", nil).Once()
			},
			expectedEnd:   now.AddDate(0, 3, 0),
			expectedToken: "jwt-token",
		},
		{
			name:      "unpaid session rejected",
			sessionID: "cs_3",
			email:     "a@x.com",
			plan:      models.PlanMonthly,
			setupMocks: func(_ *MockRepository, g *MockGateway, _ *MockTokenMaker) {
				g.On("GetCheckoutSession", mock.Anything, "cs_3").
					Return(&paymentgateway.CheckoutSession{ID: "cs_3", PaymentStatus: "unpaid"}, nil).Once()
			},
			expectedError: domain.ErrPaymentIncomplete,
		},
		{
			name:      "unknown session",
			sessionID: "cs_gone",
			email:     "a@x.com",
			plan:      models.PlanMonthly,
			setupMocks: func(_ *MockRepository, g *MockGateway, _ *MockTokenMaker) {
				g.On("GetCheckoutSession", mock.Anything, "cs_gone").
					Return(nil, fmt.Errorf("paymentgateway.GetCheckoutSession: %w", domain.ErrSessionNotFound)).Once()
			},
			expectedError: domain.ErrSessionNotFound,
		},
		{
			name:      "unknown user",
			sessionID: "cs_4",
			email:     "nobody@x.com",
			plan:      models.PlanMonthly,
			setupMocks: func(r *MockRepository, g *MockGateway, _ *MockTokenMaker) {
				g.On("GetCheckoutSession", mock.Anything, "cs_4").
					Return(&paymentgateway.CheckoutSession{ID: "cs_4", PaymentStatus: "paid"}, nil).Once()
				r.On("GetUserByEmail", mock.Anything, "nobody@x.com").
					Return(nil, fmt.Errorf("storage.GetUserByEmail: %w", domain.ErrUserNotFound)).Once()
			},
			expectedError: domain.ErrUserNotFound,
		},
		{
			name:      "replayed session rejected without re-extension",
			sessionID: "cs_5",
			email:     "a@x.com",
			plan:      models.PlanMonthly,
			setupMocks: func(r *MockRepository, g *MockGateway, _ *MockTokenMaker) {
				g.On("GetCheckoutSession", mock.Anything, "cs_5").
					Return(&paymentgateway.CheckoutSession{ID: "cs_5", PaymentStatus: "paid"}, nil).Once()
				r.On("GetUserByEmail", mock.Anything, "a@x.com").
					Return(&models.User{UID: "uid-1", Email: "a@x.com", LastSessionID: strPtr("cs_5")}, nil).Once()
			},
			expectedError: domain.ErrAlreadyProcessed,
		},
		{
			name:      "unknown plan",
			sessionID: "cs_6",
			email:     "a@x.com",
			plan:      models.Plan("weekly"),
			setupMocks: func(r *MockRepository, g *MockGateway, _ *MockTokenMaker) {
				g.On("GetCheckoutSession", mock.Anything, "cs_6").
					Return(&paymentgateway.CheckoutSession{ID: "cs_6", PaymentStatus: "paid"}, nil).Once()
				r.On("GetUserByEmail", mock.Anything, "a@x.com").
					Return(&models.User{UID: "uid-1", Email: "a@x.com"}, nil).Once()
			},
			expectedError: domain.ErrUnknownPlan,
		},
		{
			name:      "store failure surfaces as error",
			sessionID: "cs_7",
			email:     "a@x.com",
			plan:      models.PlanMonthly,
			setupMocks: func(r *MockRepository, g *MockGateway, _ *MockTokenMaker) {
				g.On("GetCheckoutSession", mock.Anything, "cs_7").
					Return(&paymentgateway.CheckoutSession{ID: "cs_7", PaymentStatus: "paid"}, nil).Once()
				r.On("GetUserByEmail", mock.Anything, "a@x.com").
					Return(&models.User{UID: "uid-1", Email: "a@x.com"}, nil).Once()
				r.On("ConfirmSubscription", mock.Anything, "uid-1", mock.Anything, "cs_7").
					Return(errors.New("db down")).Once()
			},
			expectedError: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			gateway := new(MockGateway)
			maker := new(MockTokenMaker)
			tt.setupMocks(repo, gateway, maker)

			svc := New(repo, gateway, maker, newNoopLogger())
			svc.now = func() time.Time { return now }

			got, err := svc.ConfirmSession(context.Background(), tt.sessionID, tt.email, tt.plan)

			if tt.expectedError != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, tt.expectedEnd, got.SubscriptionEndDate)
				assert.Equal(t, tt.expectedToken, got.Token)
			}

			repo.AssertExpectations(t)
			gateway.AssertExpectations(t)
			maker.AssertExpectations(t)
		})
	}
}

func TestService_ConfirmSession_SecondCallLeavesEndDateUnchanged(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	repo := new(MockRepository)
	gateway := new(MockGateway)
	maker := new(MockTokenMaker)

	gateway.On("GetCheckoutSession", mock.Anything, "cs_1").
		Return(&paymentgateway.CheckoutSession{ID: "cs_1", PaymentStatus: "paid"}, nil).Twice()
	repo.On("GetUserByEmail", mock.Anything, "a@x.com").
		Return(&models.User{UID: "uid-1", Email: "a@x.com"}, nil).Once()
	repo.On("ConfirmSubscription", mock.Anything, "uid-1", now.AddDate(0, 1, 0), "cs_1").
		Return(nil).Once()
	maker.On("GenerateToken", "a@x.com", "uid-1", models.SubscriptionActive).
		Return("jwt-token", nil).Once()

	// Второй вызов видит запись с уже зафиксированной сессией.
	endDate := now.AddDate(0, 1, 0)
	repo.On("GetUserByEmail", mock.Anything, "a@x.com").
		Return(&models.User{
			UID:                 "uid-1",
			Email:               "a@x.com",
			SubscriptionStatus:  models.SubscriptionActive,
			SubscriptionEndDate: &endDate,
			LastSessionID:       strPtr("cs_1"),
		}, nil).Once()

	svc := New(repo, gateway, maker, newNoopLogger())
	svc.now = func() time.Time { return now }

	first, err := svc.ConfirmSession(context.Background(), "cs_1", "a@x.com", models.PlanMonthly)
	require.NoError(t, err)
	assert.Equal(t, endDate, first.SubscriptionEndDate)

	second, err := svc.ConfirmSession(context.Background(), "cs_1", "a@x.com", models.PlanMonthly)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAlreadyProcessed))
	assert.Nil(t, second)

	// ConfirmSubscription вызван ровно один раз: период не продлен повторно.
	repo.AssertNumberOfCalls(t, "ConfirmSubscription", 1)
}
