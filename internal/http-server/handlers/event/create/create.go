// Package create содержит обработчик создания события.
package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/event-reminder/internal/http-server/mware"
	"github.com/magabrotheeeer/event-reminder/internal/http-server/response"
	"github.com/magabrotheeeer/event-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/event-reminder/internal/models"
)

// Creater создаёт событие пользователя.
type Creater interface {
	Create(ctx context.Context, userUID string, req models.DummyEvent) (int, error)
}

// New возвращает обработчик создания события.
// @Summary Создать событие
// @Tags events
// @Security BearerAuth
// @Accept  json
// @Produce json
// @Param   event body models.DummyEvent true "Название, тип и дата события (DD-MM-YYYY)"
// @Success 201 {object} response.Response "Идентификатор события"
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Failure 401 {object} response.Response "Не авторизован"
// @Router /events [post]
func New(log *slog.Logger, creater Creater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.create.New"

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

		var req models.DummyEvent
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if err := validator.New().Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)
			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		id, err := creater.Create(r.Context(), userUID, req)
		if err != nil {
			log.Error("failed to create event", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to create event"))
			return
		}

		log.Info("created new event", slog.Int("id", id))
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.OKWithData(map[string]any{
			"id": id,
		}))
	}
}
