// Package remove содержит обработчик удаления напоминания.
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

// Remover деактивирует напоминание пользователя.
type Remover interface {
	Remove(ctx context.Context, userUID string, id int) (int, error)
}

// New возвращает обработчик удаления напоминания.
// @Summary Удалить напоминание
// @Tags reminders
// @Security BearerAuth
// @Produce json
// @Param   id path int true "Идентификатор напоминания"
// @Success 200 {object} response.Response "Напоминание удалено"
// @Failure 404 {object} response.Response "Напоминание не найдено"
// @Router /reminders/{id} [delete]
func New(log *slog.Logger, remover Remover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reminder.remove.New"

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
			log.Error("invalid reminder id", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid reminder id"))
			return
		}

		count, err := remover.Remove(r.Context(), userUID, id)
		if err != nil {
			log.Error("failed to remove reminder", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to remove reminder"))
			return
		}
		if count == 0 {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("reminder not found"))
			return
		}

		log.Info("removed reminder", slog.Int("id", id))
		render.JSON(w, r, response.OK())
	}
}
