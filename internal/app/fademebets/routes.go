// Package fademebets предоставляет маршруты для основного приложения.
package fademebets

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/fademebets/fademebets-backend/internal/http/handlers/auth/changepassword"
	"github.com/fademebets/fademebets-backend/internal/http/handlers/auth/forgotpassword"
	"github.com/fademebets/fademebets-backend/internal/http/handlers/auth/login"
	"github.com/fademebets/fademebets-backend/internal/http/handlers/auth/register"
	"github.com/fademebets/fademebets-backend/internal/http/handlers/auth/resetpassword"
	checkoutconfirm "github.com/fademebets/fademebets-backend/internal/http/handlers/checkout/confirm"
	checkoutcreate "github.com/fademebets/fademebets-backend/internal/http/handlers/checkout/create"
	"github.com/fademebets/fademebets-backend/internal/http/handlers/health"
	oddslist "github.com/fademebets/fademebets-backend/internal/http/handlers/odds/list"
	"github.com/fademebets/fademebets-backend/internal/http/handlers/odds/standings"
	"github.com/fademebets/fademebets-backend/internal/http/handlers/payment/webhook"
	"github.com/fademebets/fademebets-backend/internal/http/handlers/subscription/cancel"
	"github.com/fademebets/fademebets-backend/internal/http/handlers/subscription/status"
	"github.com/fademebets/fademebets-backend/internal/http/middlewarectx"
	authservice "github.com/fademebets/fademebets-backend/internal/services/auth"
	checkoutservice "github.com/fademebets/fademebets-backend/internal/services/checkout"
	confirmservice "github.com/fademebets/fademebets-backend/internal/services/confirm"
	oddsservice "github.com/fademebets/fademebets-backend/internal/services/odds"
	reconcilerservice "github.com/fademebets/fademebets-backend/internal/services/reconciler"
)

// Services собирает сервисы, которые обслуживают HTTP-обработчики.
type Services struct {
	Auth       *authservice.Service
	Checkout   *checkoutservice.Service
	Confirm    *confirmservice.Service
	Reconciler *reconcilerservice.Service
	Odds       *oddsservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, services *Services, maker middlewarectx.TokenParser, webhookSecret string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, services.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, services.Auth).ServeHTTP)
		r.Post("/auth/forgot-password", forgotpassword.New(logger, services.Auth).ServeHTTP)
		r.Post("/auth/reset-password", resetpassword.New(logger, services.Auth).ServeHTTP)

		r.Post("/checkout", checkoutcreate.New(logger, services.Checkout).ServeHTTP)
		r.Post("/checkout/confirm", checkoutconfirm.New(logger, services.Confirm).ServeHTTP)

		r.Get("/odds", oddslist.New(logger, services.Odds).ServeHTTP)
		r.Get("/standings/{league}", standings.New(logger, services.Odds).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/subscription/status", status.New(logger, services.Auth).ServeHTTP)
			r.Post("/subscription/cancel", cancel.New(logger, services.Auth).ServeHTTP)
			r.Post("/auth/change-password", changepassword.New(logger, services.Auth).ServeHTTP)
		})

		// Webhook endpoint (без аутентификации)
		r.Post("/payments/webhook", webhook.New(logger, services.Reconciler, webhookSecret).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
