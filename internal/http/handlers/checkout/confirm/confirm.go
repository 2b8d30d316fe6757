// Package confirm реализует HTTP-обработчик подтверждения checkout-сессии.
//
// Handler принимает JSON-запрос с идентификатором сессии, email и планом,
// проверяет оплату сессии через сервис и возвращает дату окончания подписки
// вместе с новым JWT токеном.
package confirm

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
	confirmservice "github.com/fademebets/fademebets-backend/internal/services/confirm"
)

// Request — структура входных данных для подтверждения checkout-сессии.
type Request struct {
	SessionID string `json:"session_id" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Plan      string `json:"plan" validate:"required,oneof=monthly quarterly yearly"`
}

// Handler управляет HTTP-запросами на подтверждение checkout-сессии.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики подтверждения сессии
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики подтверждения сессии.
type Service interface {
	ConfirmSession(ctx context.Context, sessionID, email string, plan models.Plan) (*confirmservice.Result, error)
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
// @Summary Подтвердить checkout-сессию
// @Description Проверяет оплату сессии, активирует подписку и возвращает дату окончания и JWT.
// @Tags Checkout
// @Accept  json
// @Produce  json
// @Param request body Request true "Сессия, email и план"
// @Success 200 {object} map[string]any "Подписка активирована"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации, сессия не оплачена или уже обработана"
// @Failure 404 {object} response.ErrorResponse "Сессия или пользователь не найдены"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /checkout/confirm [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.confirm"
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
	log.Info("request body decoded", slog.String("session_id", req.SessionID))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	result, err := h.service.ConfirmSession(r.Context(), req.SessionID, req.Email, models.Plan(req.Plan))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			log.Error("checkout session not found", slog.String("session_id", req.SessionID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("checkout session not found"))
		case errors.Is(err, domain.ErrUserNotFound):
			log.Error("user not found", slog.String("email", req.Email))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.Is(err, domain.ErrPaymentIncomplete):
			log.Error("checkout session is not paid", slog.String("session_id", req.SessionID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("payment is not completed"))
		case errors.Is(err, domain.ErrAlreadyProcessed):
			log.Error("checkout session already processed", slog.String("session_id", req.SessionID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("session already processed"))
		case errors.Is(err, domain.ErrUnknownPlan):
			log.Error("unknown subscription plan", slog.String("plan", req.Plan))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown subscription plan"))
		default:
			log.Error("failed to confirm checkout session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not confirm checkout session"))
		}
		return
	}

	log.Info("checkout session confirmed", slog.String("session_id", req.SessionID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message":               "subscription activated",
		"subscription_end_date": result.SubscriptionEndDate,
		"token":                 result.Token,
	}))
}
