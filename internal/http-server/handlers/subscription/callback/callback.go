// Package callback содержит обработчик редиректа платёжного провайдера.
package callback

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/event-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/event-reminder/internal/services/settlement"
)

// Settler обрабатывает результат оплаты по callback провайдера.
type Settler interface {
	HandleCallback(ctx context.Context, subscriptionID int, callbackStatus string) (settlement.Outcome, error)
}

// RedirectURLs — адреса фронтенда для перенаправления пользователя
// после обработки callback.
type RedirectURLs struct {
	Success   string
	Cancelled string
	Failed    string
}

// New возвращает обработчик callback провайдера. Запрос не требует
// авторизации: провайдер перенаправляет сюда браузер пользователя,
// подписка идентифицируется query-параметром.
// @Summary Callback платежного провайдера
// @Tags subscriptions
// @Param   subscription query int    true "Идентификатор подписки"
// @Param   Status       query string true "Результат оплаты (OK или NOK)"
// @Success 302 "Перенаправление на страницу результата"
// @Router /payments/callback [get]
func New(log *slog.Logger, settler Settler, urls RedirectURLs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.subscription.callback.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		subscriptionID, err := strconv.Atoi(r.URL.Query().Get("subscription"))
		if err != nil {
			log.Error("invalid subscription id in callback", sl.Err(err))
			http.Redirect(w, r, urls.Failed, http.StatusFound)
			return
		}
		status := r.URL.Query().Get("Status")

		outcome, err := settler.HandleCallback(r.Context(), subscriptionID, status)
		if err != nil {
			log.Error("failed to handle payment callback", sl.Err(err))
			http.Redirect(w, r, urls.Failed, http.StatusFound)
			return
		}

		switch outcome.Kind {
		case settlement.OutcomeActivated:
			log.Info("payment settled", slog.Int("subscription_id", subscriptionID))
			http.Redirect(w, r, urls.Success, http.StatusFound)
		case settlement.OutcomeCancelled:
			log.Info("payment cancelled", slog.Int("subscription_id", subscriptionID))
			http.Redirect(w, r, urls.Cancelled, http.StatusFound)
		default:
			log.Info("payment failed", slog.Int("subscription_id", subscriptionID),
				slog.String("reason", outcome.Reason))
			http.Redirect(w, r, urls.Failed, http.StatusFound)
		}
	}
}
