// Package reminder предоставляет маршруты сервиса напоминаний.
package reminder

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/event-reminder/internal/config"
	"github.com/magabrotheeeer/event-reminder/internal/http-server/handlers/auth/login"
	"github.com/magabrotheeeer/event-reminder/internal/http-server/handlers/auth/register"
	"github.com/magabrotheeeer/event-reminder/internal/http-server/handlers/dispatchrun"
	eventcreate "github.com/magabrotheeeer/event-reminder/internal/http-server/handlers/event/create"
	eventlist "github.com/magabrotheeeer/event-reminder/internal/http-server/handlers/event/list"
	eventremove "github.com/magabrotheeeer/event-reminder/internal/http-server/handlers/event/remove"
	"github.com/magabrotheeeer/event-reminder/internal/http-server/handlers/health"
	remindercreate "github.com/magabrotheeeer/event-reminder/internal/http-server/handlers/reminder/create"
	reminderlist "github.com/magabrotheeeer/event-reminder/internal/http-server/handlers/reminder/list"
	reminderremove "github.com/magabrotheeeer/event-reminder/internal/http-server/handlers/reminder/remove"
	reminderupdate "github.com/magabrotheeeer/event-reminder/internal/http-server/handlers/reminder/update"
	"github.com/magabrotheeeer/event-reminder/internal/http-server/handlers/subscription/callback"
	"github.com/magabrotheeeer/event-reminder/internal/http-server/handlers/subscription/cancel"
	"github.com/magabrotheeeer/event-reminder/internal/http-server/handlers/subscription/upgrade"
	"github.com/magabrotheeeer/event-reminder/internal/http-server/mware"
	"github.com/magabrotheeeer/event-reminder/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/event-reminder/internal/services/auth"
	dispatchservice "github.com/magabrotheeeer/event-reminder/internal/services/dispatch"
	eventservice "github.com/magabrotheeeer/event-reminder/internal/services/event"
	reminderservice "github.com/magabrotheeeer/event-reminder/internal/services/reminder"
	settlementservice "github.com/magabrotheeeer/event-reminder/internal/services/settlement"
	"github.com/magabrotheeeer/event-reminder/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, jwtMaker jwt.Maker,
	db *repository.Storage,
	authService *authservice.Service,
	eventService *eventservice.Service,
	reminderService *reminderservice.Service,
	settlementService *settlementservice.Service,
	dispatcher *dispatchservice.Dispatcher,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	redirects := callback.RedirectURLs{
		Success:   cfg.SuccessURL,
		Cancelled: cfg.CancelledURL,
		Failed:    cfg.FailedURL,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService))
		r.Post("/login", login.New(logger, authService))

		// Callback платёжного провайдера: редирект браузера
		// пользователя, без JWT.
		r.Get("/payments/callback", callback.New(logger, settlementService, redirects))

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(mware.JWTMiddleware(jwtMaker, logger))
			r.Use(mware.RateLimitMiddleware(logger))

			r.Post("/events", eventcreate.New(logger, eventService))
			r.Get("/events", eventlist.New(logger, eventService))
			r.Delete("/events/{id}", eventremove.New(logger, eventService))

			r.Post("/reminders", remindercreate.New(logger, reminderService))
			r.Get("/reminders", reminderlist.New(logger, reminderService))
			r.Put("/reminders/{id}", reminderupdate.New(logger, reminderService))
			r.Delete("/reminders/{id}", reminderremove.New(logger, reminderService))

			r.Post("/subscriptions/upgrade", upgrade.New(logger, settlementService))
			r.Post("/subscriptions/cancel", cancel.New(logger, settlementService))

			// Административные конечные точки
			r.Group(func(r chi.Router) {
				r.Use(mware.RequireAdmin(logger))
				r.Post("/dispatch/run", dispatchrun.New(logger, dispatcher))
			})
		})
	})

	r.Get("/health", health.New(logger, db))
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
