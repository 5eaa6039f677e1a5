// Package dispatchrun содержит административный обработчик ручного
// запуска цикла рассылки.
package dispatchrun

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/event-reminder/internal/http-server/response"
	"github.com/magabrotheeeer/event-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/event-reminder/internal/services/dispatch"
)

// Runner выполняет один цикл рассылки вне расписания.
type Runner interface {
	RunCycle(ctx context.Context) (dispatch.Stats, error)
}

// New возвращает обработчик ручного запуска рассылки. Доступен только
// администратору; цикл идёт через тот же журнал доставки, что и
// плановые запуски, поэтому повторный вызов в тот же день ничего
// не отправляет повторно.
// @Summary Запустить цикл рассылки напоминаний вручную
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response "Статистика цикла (sent, failed, skipped)"
// @Failure 403 {object} response.Response "Требуется роль администратора"
// @Failure 500 {object} response.Response "Цикл завершился ошибкой"
// @Router /dispatch/run [post]
func New(log *slog.Logger, runner Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dispatchrun.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		stats, err := runner.RunCycle(r.Context())
		if err != nil {
			log.Error("dispatch cycle failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("dispatch cycle failed"))
			return
		}

		log.Info("dispatch cycle finished",
			slog.Int("sent", stats.Sent),
			slog.Int("failed", stats.Failed),
			slog.Int("skipped", stats.Skipped))
		render.JSON(w, r, response.OKWithData(stats))
	}
}
