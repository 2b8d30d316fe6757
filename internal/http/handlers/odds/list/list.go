// Package list реализует HTTP-обработчик выдачи коэффициентов по всем активным лигам.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/fademebets/fademebets-backend/internal/http/response"
	"github.com/fademebets/fademebets-backend/internal/lib/sl"
	"github.com/fademebets/fademebets-backend/internal/services/odds"
)

// Handler обрабатывает HTTP-запросы списка коэффициентов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс агрегатора коэффициентов.
type Service interface {
	GetOdds(ctx context.Context) ([]odds.Game, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Коэффициенты по активным лигам
// @Description Возвращает матчи с коэффициентами h2h по всем активным видам спорта.
// @Tags Odds
// @Produce  json
// @Success 200 {object} map[string]any "Список матчей"
// @Failure 500 {object} response.ErrorResponse "Ошибка внешнего API"
// @Router /odds [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.odds.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	games, err := h.service.GetOdds(r.Context())
	if err != nil {
		log.Error("failed to fetch odds", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not fetch odds"))
		return
	}

	log.Info("odds fetched", slog.Int("games", len(games)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"games": games,
	}))
}
