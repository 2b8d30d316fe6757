// Package fademebets собирает основное HTTP-приложение: хранилище, кеш,
// брокер сообщений, клиенты внешних API и маршруты.
package fademebets

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/streadway/amqp"

	"github.com/fademebets/fademebets-backend/internal/cache"
	"github.com/fademebets/fademebets-backend/internal/config"
	"github.com/fademebets/fademebets-backend/internal/lib/jwt"
	"github.com/fademebets/fademebets-backend/internal/metrics"
	"github.com/fademebets/fademebets-backend/internal/migrations"
	"github.com/fademebets/fademebets-backend/internal/paymentgateway"
	"github.com/fademebets/fademebets-backend/internal/rabbitmq"
	authservice "github.com/fademebets/fademebets-backend/internal/services/auth"
	checkoutservice "github.com/fademebets/fademebets-backend/internal/services/checkout"
	confirmservice "github.com/fademebets/fademebets-backend/internal/services/confirm"
	oddsservice "github.com/fademebets/fademebets-backend/internal/services/odds"
	reconcilerservice "github.com/fademebets/fademebets-backend/internal/services/reconciler"
	"github.com/fademebets/fademebets-backend/internal/storage/repository"

	"github.com/go-chi/chi"
)

// App агрегирует ресурсы основного HTTP-приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New создает приложение: подключает хранилище, прогоняет миграции,
// инициализирует кеш, брокер и клиентов внешних API, собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch, "notifications")

	gatewayClient := paymentgateway.NewClient(cfg.GatewayAPIURL, cfg.GatewaySecretKey)
	oddsClient := oddsservice.NewClient(cfg.OddsAPIURL, cfg.OddsAPIKey)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.New(db, jwtMaker, publisher, logger)
	checkoutService := checkoutservice.New(db, gatewayClient, logger, cfg.SuccessURL, cfg.CancelURL)
	confirmService := confirmservice.New(db, gatewayClient, jwtMaker, logger)
	reconcilerService := reconcilerservice.New(db, logger)
	oddsService := oddsservice.New(oddsClient, cacheRedis, logger, cfg.OddsCacheTTL)

	metrics.MustRegister()

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:       authService,
		Checkout:   checkoutService,
		Confirm:    confirmService,
		Reconciler: reconcilerService,
		Odds:       oddsService,
	}, jwtMaker, cfg.WebhookSecret)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.ch.Close(); cerr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", cerr))
		}
		if cerr := a.conn.Close(); cerr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", cerr))
		}
		_ = a.db.DB.Close()
		return err
	}
}
