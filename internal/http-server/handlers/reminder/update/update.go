// Package update содержит обработчик обновления напоминания.
package update

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/event-reminder/internal/http-server/mware"
	"github.com/magabrotheeeer/event-reminder/internal/http-server/response"
	"github.com/magabrotheeeer/event-reminder/internal/lib/sl"
)

// Request описывает тело запроса на обновление напоминания.
type Request struct {
	DaysBefore int    `json:"days_before" validate:"min=0"`
	Channel    string `json:"channel" validate:"required,oneof=email sms whatsapp"`
}

// Updater обновляет напоминание пользователя.
type Updater interface {
	Update(ctx context.Context, userUID string, id int, daysBefore int, channel string) (int, error)
}

// New возвращает обработчик обновления напоминания.
// @Summary Изменить срок или канал напоминания
// @Tags reminders
// @Security BearerAuth
// @Accept  json
// @Produce json
// @Param   id path int true "Идентификатор напоминания"
// @Param   updateRequest body Request true "Новый срок и канал"
// @Success 200 {object} response.Response "Напоминание обновлено"
// @Failure 400 {object} response.Response "Канал недоступен на тарифе"
// @Failure 404 {object} response.Response "Напоминание не найдено"
// @Router /reminders/{id} [put]
func New(log *slog.Logger, updater Updater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reminder.update.New"

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

		var req Request
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

		count, err := updater.Update(r.Context(), userUID, id, req.DaysBefore, req.Channel)
		if err != nil {
			log.Error("failed to update reminder", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to update reminder"))
			return
		}
		if count == 0 {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("reminder not found"))
			return
		}

		log.Info("updated reminder", slog.Int("id", id))
		render.JSON(w, r, response.OK())
	}
}
