// Package webhook реализует HTTP-обработчик событий платежного шлюза.
//
// Handler читает сырое тело запроса, проверяет подпись из заголовка
// X-Api-Signature до разбора JSON и передает событие сервису сверки.
// Ответ 400 возвращается только при ошибке подписи: шлюз повторяет
// доставку до подтверждения, поэтому все остальные события подтверждаются.
package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/fademebets/fademebets-backend/internal/http/response"
	"github.com/fademebets/fademebets-backend/internal/lib/signature"
	"github.com/fademebets/fademebets-backend/internal/lib/sl"
)

// Service описывает интерфейс сверки событий шлюза с хранилищем.
type Service interface {
	ProcessEvent(ctx context.Context, raw []byte) error
}

// Handler управляет HTTP-запросами webhook платежного шлюза.
type Handler struct {
	log           *slog.Logger // Логгер для записи информации и ошибок
	service       Service      // Сервис сверки событий
	webhookSecret string       // Секрет для проверки подписи
}

// New создает новый Handler с переданными логгером, сервисом и секретом.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
	}
}

// ServeHTTP godoc
// @Summary Принять событие платежного шлюза
// @Description Проверяет подпись X-Api-Signature и применяет событие к состоянию подписки.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Success 200 {object} map[string]any "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись"
// @Failure 500 {object} response.ErrorResponse "Ошибка хранилища"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("could not read request body"))
		return
	}
	defer func() {
		_ = r.Body.Close()
	}()

	// Подпись проверяется по сырому телу, до любого разбора JSON.
	sig := r.Header.Get("X-Api-Signature")
	if !signature.Verify(body, sig, h.webhookSecret) {
		log.Error("invalid or missing webhook signature")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid webhook signature"))
		return
	}

	if err := h.service.ProcessEvent(r.Context(), body); err != nil {
		log.Error("failed to process webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process webhook event"))
		return
	}

	log.Info("webhook event acknowledged")
	render.JSON(w, r, map[string]any{"received": true})
}
