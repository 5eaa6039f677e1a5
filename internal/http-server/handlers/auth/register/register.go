// Package register содержит обработчик регистрации пользователя.
package register

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

// Request данные запроса регистрации.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
}

// Registrar регистрирует нового пользователя.
type Registrar interface {
	Register(ctx context.Context, email, username, rawPassword string, phone *string) (string, error)
}

// New возвращает обработчик регистрации.
// @Summary Регистрация нового пользователя
// @Tags auth
// @Accept  json
// @Produce json
// @Param   registerRequest body Request true "Данные для регистрации"
// @Success 201 {object} response.Response "Пользователь создан"
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /register [post]
func New(log *slog.Logger, registrar Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

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

		var phone *string
		if req.Phone != "" {
			phone = &req.Phone
		}
		uid, err := registrar.Register(r.Context(), req.Email, req.Username, req.Password, phone)
		if err != nil {
			log.Error("failed to register user", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to register user"))
			return
		}

		log.Info("registered new user", slog.String("uid", uid))
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.OKWithData(map[string]any{
			"uid": uid,
		}))
	}
}
