// Package list содержит обработчик списка событий пользователя.
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

// Lister возвращает события пользователя.
type Lister interface {
	List(ctx context.Context, userUID string, limit, offset int) ([]*models.Event, error)
}

// New возвращает обработчик списка событий.
// @Summary Получить список событий пользователя
// @Tags events
// @Security BearerAuth
// @Produce json
// @Param   limit  query int false "Количество записей (по умолчанию 50)"
// @Param   offset query int false "Смещение"
// @Success 200 {object} response.Response "Список событий"
// @Failure 401 {object} response.Response "Не авторизован"
// @Router /events [get]
func New(log *slog.Logger, lister Lister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.list.New"

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
		offset := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
				limit = parsed
			}
		}
		if v := r.URL.Query().Get("offset"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
				offset = parsed
			}
		}

		events, err := lister.List(r.Context(), userUID, limit, offset)
		if err != nil {
			log.Error("failed to list events", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to list events"))
			return
		}

		render.JSON(w, r, response.OKWithData(events))
	}
}
