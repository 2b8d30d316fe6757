// Package create реализует HTTP-обработчик для создания checkout-сессий.
//
// Handler принимает JSON-запрос с email и планом подписки, валидирует их,
// вызывает оркестратор checkout через сервис и возвращает ID созданной сессии
// в JSON-формате.
//
// В случае ошибок формируются соответствующие HTTP-ответы с описанием проблемы.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/fademebets/fademebets-backend/internal/domain"
	"github.com/fademebets/fademebets-backend/internal/http/response"
	"github.com/fademebets/fademebets-backend/internal/lib/sl"
	"github.com/fademebets/fademebets-backend/internal/models"
)

// Request — структура входных данных для создания checkout-сессии.
type Request struct {
	Email string `json:"email" validate:"required,email"`
	Plan  string `json:"plan" validate:"required,oneof=monthly quarterly yearly"`
}

// Handler управляет HTTP-запросами на создание checkout-сессий.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики оркестрации checkout
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания checkout-сессии.
type Service interface {
	CreateSession(ctx context.Context, email string, plan models.Plan) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать checkout-сессию
// @Description Создает checkout-сессию платежного шлюза для выбранного плана. Возвращает ID сессии.
// @Tags Checkout
// @Accept  json
// @Produce  json
// @Param request body Request true "Email и план подписки"
// @Success 200 {object} map[string]any "Успешное создание сессии"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON, ошибка валидации или неизвестный план"
// @Failure 500 {object} response.ErrorResponse "Ошибка шлюза или хранилища"
// @Router /checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("email", req.Email), slog.String("plan", req.Plan))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	sessionID, err := h.service.CreateSession(r.Context(), req.Email, models.Plan(req.Plan))
	if err != nil {
		if errors.Is(err, domain.ErrUnknownPlan) {
			log.Error("unknown subscription plan", slog.String("plan", req.Plan))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown subscription plan"))
			return
		}
		log.Error("failed to create checkout session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create checkout session"))
		return
	}

	log.Info("checkout session created", slog.String("session_id", sessionID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": sessionID,
	}))
}
