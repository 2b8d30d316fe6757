// Package standings реализует HTTP-обработчик выдачи результатов матчей лиги.
package standings

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/fademebets/fademebets-backend/internal/http/response"
	"github.com/fademebets/fademebets-backend/internal/lib/sl"
	"github.com/fademebets/fademebets-backend/internal/services/odds"
)

// Handler обрабатывает HTTP-запросы результатов матчей лиги.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс агрегатора результатов матчей.
type Service interface {
	GetStandings(ctx context.Context, league string) ([]odds.Score, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Результаты матчей лиги
// @Description Возвращает результаты последних матчей выбранной лиги (nfl, nba, mlb, nhl).
// @Tags Odds
// @Produce  json
// @Param league path string true "Лига"
// @Success 200 {object} map[string]any "Результаты матчей"
// @Failure 400 {object} response.ErrorResponse "Неизвестная лига"
// @Failure 500 {object} response.ErrorResponse "Ошибка внешнего API"
// @Router /standings/{league} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.odds.standings"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	league := strings.ToLower(chi.URLParam(r, "league"))

	scores, err := h.service.GetStandings(r.Context(), league)
	if err != nil {
		if strings.Contains(err.Error(), "unknown league") {
			log.Error("unknown league requested", slog.String("league", league))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown league"))
			return
		}
		log.Error("failed to fetch standings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not fetch standings"))
		return
	}

	log.Info("standings fetched", slog.String("league", league), slog.Int("scores", len(scores)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"league": league,
		"scores": scores,
	}))
}
