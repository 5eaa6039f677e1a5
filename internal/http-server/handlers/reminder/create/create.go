// Package create содержит обработчик создания напоминаний.
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

// Creater создаёт напоминания для события. Каналы, недоступные тарифу
// пользователя, отбрасываются без ошибки, поэтому ответ содержит
// фактически созданные записи.
type Creater interface {
	Create(ctx context.Context, userUID string, req models.DummyReminder) ([]*models.Reminder, error)
}

// New возвращает обработчик создания напоминаний.
// @Summary Создать напоминания для события
// @Description Каналы фильтруются по тарифу пользователя: недоступные отбрасываются без ошибки
// @Tags reminders
// @Security BearerAuth
// @Accept  json
// @Produce json
// @Param   reminder body models.DummyReminder true "Событие, срок и каналы доставки"
// @Success 201 {object} response.Response "Созданные напоминания"
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Failure 401 {object} response.Response "Не авторизован"
// @Router /reminders [post]
func New(log *slog.Logger, creater Creater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reminder.create.New"

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

		var req models.DummyReminder
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

		created, err := creater.Create(r.Context(), userUID, req)
		if err != nil {
			log.Error("failed to create reminders", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to create reminders"))
			return
		}

		log.Info("created reminders", slog.Int("count", len(created)))
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.OKWithData(created))
	}
}
