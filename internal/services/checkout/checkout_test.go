package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

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

func (m *MockRepository) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) SetGatewayCustomerID(ctx context.Context, userUID, customerID string) error {
	args := m.Called(ctx, userUID, customerID)
	return args.Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCustomer(ctx context.Context, email string) (*paymentgateway.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentgateway.Customer), args.Error(1)
}

func (m *MockGateway) GetCustomer(ctx context.Context, id string) (*paymentgateway.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentgateway.Customer), args.Error(1)
}

func (m *MockGateway) ListActiveSubscriptions(ctx context.Context, customerID string) ([]paymentgateway.Subscription, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]paymentgateway.Subscription), args.Error(1)
}

func (m *MockGateway) CancelSubscription(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req paymentgateway.CreateSessionRequest) (*paymentgateway.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentgateway.CheckoutSession), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func strPtr(s string) *string { return &s }

func TestService_CreateSession(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		plan          models.Plan
		setupMocks    func(*MockRepository, *MockGateway)
		expectedID    string
		expectedError error
	}{
		{
			name:  "new user - record and customer created",
			email: "a@x.com",
			plan:  models.PlanMonthly,
			setupMocks: func(r *MockRepository, g *MockGateway) {
				r.On("GetUserByEmail", mock.Anything, "a@x.com").
					Return(nil, fmt.Errorf("storage.GetUserByEmail: %w", domain.ErrUserNotFound)).Once()
				r.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.Email == "a@x.com" && u.SubscriptionStatus == models.SubscriptionInactive
				})).Return("uid-1", nil).Once()
				g.On("CreateCustomer", mock.Anything, "a@x.com").
					Return(&paymentgateway.Customer{ID: "cus_1", Email: "a@x.com"}, nil).Once()
				r.On("SetGatewayCustomerID", mock.Anything, "uid-1", "cus_1").Return(nil).Once()
				g.On("ListActiveSubscriptions", mock.Anything, "cus_1").
					Return([]paymentgateway.Subscription{}, nil).Once()
				g.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req paymentgateway.CreateSessionRequest) bool {
					return req.Customer == "cus_1" && req.Mode == "subscription" &&
						req.PriceData.UnitAmount == 299 && req.PriceData.Interval == "month"
				})).Return(&paymentgateway.CheckoutSession{ID: "cs_1"}, nil).Once()
			},
			expectedID: "cs_1",
		},
		{
			name:  "existing customer - old subscriptions cancelled",
			email: "b@x.com",
			plan:  models.PlanYearly,
			setupMocks: func(r *MockRepository, g *MockGateway) {
				r.On("GetUserByEmail", mock.Anything, "b@x.com").Return(&models.User{
					UID:               "uid-2",
					Email:             "b@x.com",
					GatewayCustomerID: strPtr("cus_2"),
				}, nil).Once()
				g.On("GetCustomer", mock.Anything, "cus_2").
					Return(&paymentgateway.Customer{ID: "cus_2", Email: "b@x.com"}, nil).Once()
				g.On("ListActiveSubscriptions", mock.Anything, "cus_2").
					Return([]paymentgateway.Subscription{
						{ID: "sub_1", CustomerID: "cus_2", Status: "active"},
						{ID: "sub_2", CustomerID: "cus_2", Status: "active"},
					}, nil).Once()
				g.On("CancelSubscription", mock.Anything, "sub_1").Return(nil).Once()
				g.On("CancelSubscription", mock.Anything, "sub_2").Return(nil).Once()
				g.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req paymentgateway.CreateSessionRequest) bool {
					return req.PriceData.UnitAmount == 2999 && req.PriceData.Interval == "year"
				})).Return(&paymentgateway.CheckoutSession{ID: "cs_2"}, nil).Once()
			},
			expectedID: "cs_2",
		},
		{
			name:  "stale customer id - self-healing recreates customer",
			email: "c@x.com",
			plan:  models.PlanQuarterly,
			setupMocks: func(r *MockRepository, g *MockGateway) {
				r.On("GetUserByEmail", mock.Anything, "c@x.com").Return(&models.User{
					UID:               "uid-3",
					Email:             "c@x.com",
					GatewayCustomerID: strPtr("cus_stale"),
				}, nil).Once()
				g.On("GetCustomer", mock.Anything, "cus_stale").
					Return(nil, fmt.Errorf("paymentgateway.GetCustomer: %w", domain.ErrCustomerMissing)).Once()
				g.On("CreateCustomer", mock.Anything, "c@x.com").
					Return(&paymentgateway.Customer{ID: "cus_fresh"}, nil).Once()
				r.On("SetGatewayCustomerID", mock.Anything, "uid-3", "cus_fresh").Return(nil).Once()
				g.On("ListActiveSubscriptions", mock.Anything, "cus_fresh").
					Return([]paymentgateway.Subscription{}, nil).Once()
				g.On("CreateCheckoutSession", mock.Anything, mock.Anything).
					Return(&paymentgateway.CheckoutSession{ID: "cs_3"}, nil).Once()
			},
			expectedID: "cs_3",
		},
		{
			name:  "cancel failure does not abort checkout",
			email: "d@x.com",
			plan:  models.PlanMonthly,
			setupMocks: func(r *MockRepository, g *MockGateway) {
				r.On("GetUserByEmail", mock.Anything, "d@x.com").Return(&models.User{
					UID:               "uid-4",
					Email:             "d@x.com",
					GatewayCustomerID: strPtr("cus_4"),
				}, nil).Once()
				g.On("GetCustomer", mock.Anything, "cus_4").
					Return(&paymentgateway.Customer{ID: "cus_4"}, nil).Once()
				g.On("ListActiveSubscriptions", mock.Anything, "cus_4").
					Return([]paymentgateway.Subscription{{ID: "sub_9"}}, nil).Once()
				g.On("CancelSubscription", mock.Anything, "sub_9").
					Return(errors.New("gateway timeout")).Once()
				g.On("CreateCheckoutSession", mock.Anything, mock.Anything).
					Return(&paymentgateway.CheckoutSession{ID: "cs_4"}, nil).Once()
			},
			expectedID: "cs_4",
		},
		{
			name:          "unknown plan",
			email:         "e@x.com",
			plan:          models.Plan("weekly"),
			setupMocks:    func(_ *MockRepository, _ *MockGateway) {},
			expectedError: domain.ErrUnknownPlan,
		},
		{
			name:  "gateway customer lookup fails hard",
			email: "f@x.com",
			plan:  models.PlanMonthly,
			setupMocks: func(r *MockRepository, g *MockGateway) {
				r.On("GetUserByEmail", mock.Anything, "f@x.com").Return(&models.User{
					UID:               "uid-6",
					Email:             "f@x.com",
					GatewayCustomerID: strPtr("cus_6"),
				}, nil).Once()
				g.On("GetCustomer", mock.Anything, "cus_6").
					Return(nil, errors.New("gateway unavailable")).Once()
			},
			expectedError: errors.New("gateway unavailable"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			gateway := new(MockGateway)
			tt.setupMocks(repo, gateway)

			svc := New(repo, gateway, newNoopLogger(),
				"https://example.com/success", "https://example.com/cancel")

			gotID, err := svc.CreateSession(context.Background(), tt.email, tt.plan)

			if tt.expectedError != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				assert.Empty(t, gotID)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, gotID)
			}

			repo.AssertExpectations(t)
			gateway.AssertExpectations(t)
		})
	}
}

func TestService_CreateSession_IdempotentCustomerCreation(t *testing.T) {
	// Повторное оформление для того же email не создает второго customer:
	// после первого вызова запись уже хранит идентификатор шлюза.
	repo := new(MockRepository)
	gateway := new(MockGateway)

	repo.On("GetUserByEmail", mock.Anything, "a@x.com").
		Return(nil, fmt.Errorf("storage.GetUserByEmail: %w", domain.ErrUserNotFound)).Once()
	repo.On("RegisterUser", mock.Anything, mock.Anything).Return("uid-1", nil).Once()
	gateway.On("CreateCustomer", mock.Anything, "a@x.com").
		Return(&paymentgateway.Customer{ID: "cus_1"}, nil).Once()
	repo.On("SetGatewayCustomerID", mock.Anything, "uid-1", "cus_1").Return(nil).Once()

	repo.On("GetUserByEmail", mock.Anything, "a@x.com").Return(&models.User{
		UID:               "uid-1",
		Email:             "a@x.com",
		GatewayCustomerID: strPtr("cus_1"),
	}, nil).Once()
	gateway.On("GetCustomer", mock.Anything, "cus_1").
		Return(&paymentgateway.Customer{ID: "cus_1"}, nil).Once()

	gateway.On("ListActiveSubscriptions", mock.Anything, "cus_1").
		Return([]paymentgateway.Subscription{}, nil).Twice()
	gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return(&paymentgateway.CheckoutSession{ID: "cs_1"}, nil).Once()
	gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return(&paymentgateway.CheckoutSession{ID: "cs_2"}, nil).Once()

	svc := New(repo, gateway, newNoopLogger(), "https://s", "https://c")

	first, err := svc.CreateSession(context.Background(), "a@x.com", models.PlanMonthly)
	require.NoError(t, err)
	second, err := svc.CreateSession(context.Background(), "a@x.com", models.PlanMonthly)
	require.NoError(t, err)

	assert.Equal(t, "cs_1", first)
	assert.Equal(t, "cs_2", second)
	gateway.AssertNumberOfCalls(t, "CreateCustomer", 1)
	repo.AssertExpectations(t)
	gateway.AssertExpectations(t)
}
