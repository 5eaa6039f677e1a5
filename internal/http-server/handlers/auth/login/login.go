// Package login содержит обработчик входа пользователя.
package login

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/event-reminder/internal/http-server/response"
	"github.com/magabrotheeeer/event-reminder/internal/lib/sl"
)

// Request данные запроса входа.
type Request struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Authenticator проверяет учётные данные и выдаёт токен.
type Authenticator interface {
	Login(ctx context.Context, username, rawPassword string) (token, role string, err error)
}

// New возвращает обработчик входа.
// @Summary Вход пользователя
// @Tags auth
// @Accept  json
// @Produce json
// @Param   loginRequest body Request true "Имя пользователя и пароль"
// @Success 200 {object} response.Response "JWT-токен"
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Failure 401 {object} response.Response "Неверные учетные данные"
// @Router /login [post]
func New(log *slog.Logger, auth Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

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

		token, role, err := auth.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			log.Error("failed to login", sl.Err(err))
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid credentials"))
			return
		}

		log.Info("user logged in", slog.String("username", req.Username))
		render.JSON(w, r, response.OKWithData(map[string]any{
			"token": token,
			"role":  role,
		}))
	}
}
