// Package list содержит обработчик получения списка напоминаний.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/event-reminder/internal/http-server/mware"
	"github.com/magabrotheeeer/event-reminder/internal/http-server/response"
	"github.com/magabrotheeeer/event-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/event-reminder/internal/models"
)

// Lister возвращает активные напоминания пользователя.
type Lister interface {
	List(ctx context.Context, userUID string, limit, offset int) ([]*models.Reminder, error)
}

// New возвращает обработчик списка напоминаний.
// @Summary Получить список напоминаний пользователя
// @Tags reminders
// @Security BearerAuth
// @Produce json
// @Param   limit  query int false "Количество записей (по умолчанию 50)"
// @Param   offset query int false "Смещение"
// @Success 200 {object} response.Response "Список напоминаний"
// @Failure 401 {object} response.Response "Не авторизован"
// @Router /reminders [get]
func New(log *slog.Logger, lister Lister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reminder.list.New"

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

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil && v > 0 {
				limit = v
			}
		}
		offset := 0
		if raw := r.URL.Query().Get("offset"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
				offset = v
			}
		}

		reminders, err := lister.List(r.Context(), userUID, limit, offset)
		if err != nil {
			log.Error("failed to list reminders", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to list reminders"))
			return
		}

		log.Info("listed reminders", slog.Int("count", len(reminders)))
		render.JSON(w, r, response.OKWithData(reminders))
	}
}
