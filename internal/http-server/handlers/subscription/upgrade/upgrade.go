// Package upgrade содержит обработчик запроса платного тарифа.
package upgrade

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/event-reminder/internal/http-server/mware"
	"github.com/magabrotheeeer/event-reminder/internal/http-server/response"
	"github.com/magabrotheeeer/event-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/event-reminder/internal/models"
	"github.com/magabrotheeeer/event-reminder/internal/services/settlement"
)

// Request описывает тело запроса на оплату тарифа.
type Request struct {
	Tier string `json:"tier" validate:"required,oneof=premium business"`
}

// Upgrader инициирует оплату и возвращает адрес платёжной страницы.
type Upgrader interface {
	RequestUpgrade(ctx context.Context, userUID string, tier models.Tier) (string, error)
}

// New возвращает обработчик запроса платного тарифа.
// @Summary Запросить переход на платный тариф
// @Description Создает ожидающую подписку и возвращает URL страницы оплаты
// @Tags subscriptions
// @Security BearerAuth
// @Accept  json
// @Produce json
// @Param   upgradeRequest body Request true "Целевой тариф (premium или business)"
// @Success 200 {object} response.Response "URL для перенаправления на оплату"
// @Failure 400 {object} response.Response "Недопустимый тариф"
// @Failure 409 {object} response.Response "Подписка уже активна"
// @Failure 502 {object} response.Response "Платежный провайдер недоступен"
// @Router /subscriptions/upgrade [post]
func New(log *slog.Logger, upgrader Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.subscription.upgrade.New"

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

		redirectURL, err := upgrader.RequestUpgrade(r.Context(), userUID, models.Tier(req.Tier))
		if err != nil {
			switch {
			case errors.Is(err, settlement.ErrActiveSubscriptionExists):
				log.Info("upgrade rejected: active subscription exists")
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error("active subscription already exists"))
			case errors.Is(err, settlement.ErrInvalidTier):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("tier is not payable"))
			case errors.Is(err, settlement.ErrPaymentInitiation):
				log.Error("payment initiation failed", sl.Err(err))
				render.Status(r, http.StatusBadGateway)
				render.JSON(w, r, response.Error("payment provider unavailable"))
			default:
				log.Error("failed to request upgrade", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to request upgrade"))
			}
			return
		}

		log.Info("payment page issued", slog.String("tier", req.Tier))
		render.JSON(w, r, response.OKWithData(map[string]string{"redirect_url": redirectURL}))
	}
}
