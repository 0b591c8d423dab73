// Package create предоставляет HTTP‑обработчик создания пользователя.
// Создание — две зависимые записи: аккаунт у внешнего провайдера
// и документ в хранилище.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/subpanel/subscription-admin/internal/apperrors"
	"github.com/subpanel/subscription-admin/internal/http/response"
	"github.com/subpanel/subscription-admin/internal/lib/sl"
	"github.com/subpanel/subscription-admin/internal/models"
)

// UserCreater заводит пользователя у провайдера и в хранилище.
type UserCreater interface {
	Create(ctx context.Context, req models.DummyCreateUser) (*models.User, error)
}

type Handler struct {
	log      *slog.Logger
	service  UserCreater
	validate *validator.Validate
}

func New(log *slog.Logger, service UserCreater) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает POST‑запрос на создание пользователя.
//
// @Summary Создать пользователя
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.DummyCreateUser true "Данные пользователя"
// @Success 200 {object} response.Response "Созданный пользователь"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Провайдер отклонил запрос"
// @Router /admin/users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCreateUser
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("invalid request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		if validateErr, ok := err.(validator.ValidationErrors); ok {
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}
		render.JSON(w, r, response.Error("invalid request"))
		return
	}

	user, err := h.service.Create(r.Context(), req)
	if err != nil {
		var partial *apperrors.PartialCompletionError
		if errors.As(err, &partial) {
			log.Error("user creation partially completed", sl.Err(err))
			render.Status(r, response.StatusCode(err))
			render.JSON(w, r, response.Error(partial.Error()))
			return
		}
		log.Error("failed to create user", sl.Err(err))
		render.Status(r, response.StatusCode(err))
		render.JSON(w, r, response.Error("failed to create user"))
		return
	}

	log.Info("user created", slog.String("user_id", user.ID))
	render.JSON(w, r, response.StatusOKWithData(user))
}
