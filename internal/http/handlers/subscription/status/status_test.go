package status

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fademebets/fademebets-backend/internal/domain"
	"github.com/fademebets/fademebets-backend/internal/http/middlewarectx"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) SubscriptionStatus(ctx context.Context, userUID string) (string, error) {
	args := m.Called(ctx, userUID)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestStatusHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		ctxUID         any
		mockStatus     string
		mockErr        error
		wantStatusCode int
		wantData       map[string]any
		wantError      string
	}{
		{
			name:           "active subscription",
			ctxUID:         "uid-123",
			mockStatus:     "active",
			wantStatusCode: http.StatusOK,
			wantData:       map[string]any{"subscription_status": "active"},
		},
		{
			name:           "no uid in context",
			ctxUID:         nil,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
		{
			name:           "user not found",
			ctxUID:         "uid-gone",
			mockErr:        fmt.Errorf("auth.SubscriptionStatus: %w", domain.ErrUserNotFound),
			wantStatusCode: http.StatusNotFound,
			wantError:      "user not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.mockStatus != "" || tt.mockErr != nil {
				serviceMock.On("SubscriptionStatus", mock.Anything, tt.ctxUID.(string)).
					Return(tt.mockStatus, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodGet, "/subscription/status", nil)
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.ctxUID != nil {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.ctxUID)
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			}
			if tt.wantData != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				for k, v := range tt.wantData {
					assert.Equal(t, v, data[k])
				}
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
