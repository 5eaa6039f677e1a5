// Package remove содержит обработчик мягкого удаления события.
package remove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/event-reminder/internal/http-server/mware"
	"github.com/magabrotheeeer/event-reminder/internal/http-server/response"
	"github.com/magabrotheeeer/event-reminder/internal/lib/sl"
)

// Remover мягко удаляет событие вместе с его напоминаниями.
type Remover interface {
	Remove(ctx context.Context, userUID string, id int) (int, error)
}

// New возвращает обработчик удаления события.
// @Summary Удалить событие вместе с его напоминаниями
// @Tags events
// @Security BearerAuth
// @Produce json
// @Param   id path int true "Идентификатор события"
// @Success 200 {object} response.Response "Событие удалено"
// @Failure 404 {object} response.Response "Событие не найдено"
// @Router /events/{id} [delete]
func New(log *slog.Logger, remover Remover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.remove.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userUID, ok := mware.UserUID(r.Context())
		if !ok {
			log.Error("missing user uid in context")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}

		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			log.Error("invalid event id", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid event id"))
			return
		}

		count, err := remover.Remove(r.Context(), userUID, id)
		if err != nil {
			log.Error("failed to remove event", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to remove event"))
			return
		}
		if count == 0 {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("event not found"))
			return
		}

		log.Info("removed event", slog.Int("id", id))
		render.JSON(w, r, response.OK())
	}
}
