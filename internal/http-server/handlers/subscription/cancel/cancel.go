// Package cancel содержит обработчик отмены подписки.
package cancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/event-reminder/internal/http-server/mware"
	"github.com/magabrotheeeer/event-reminder/internal/http-server/response"
	"github.com/magabrotheeeer/event-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/event-reminder/internal/services/settlement"
)

// Canceler отменяет активную подписку пользователя.
type Canceler interface {
	Cancel(ctx context.Context, userUID string) error
}

// New возвращает обработчик отмены подписки.
// @Summary Отменить активную подписку
// @Description Тариф возвращается на free, запись подписки сохраняется
// @Tags subscriptions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response "Подписка отменена"
// @Failure 404 {object} response.Response "Активная подписка не найдена"
// @Router /subscriptions/cancel [post]
func New(log *slog.Logger, canceler Canceler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.subscription.cancel.New"

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

		if err := canceler.Cancel(r.Context(), userUID); err != nil {
			if errors.Is(err, settlement.ErrNoActiveSubscription) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("no active subscription"))
				return
			}
			log.Error("failed to cancel subscription", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to cancel subscription"))
			return
		}

		log.Info("subscription cancelled")
		render.JSON(w, r, response.OK())
	}
}
