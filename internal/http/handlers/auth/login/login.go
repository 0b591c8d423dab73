// Package login предоставляет HTTP‑обработчик входа сотрудника панели.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/subpanel/subscription-admin/internal/http/response"
	"github.com/subpanel/subscription-admin/internal/lib/sl"
	authservice "github.com/subpanel/subscription-admin/internal/services/auth"
)

// StaffLoginer проверяет учётные данные и выдает токен сессии.
type StaffLoginer interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// DummyLoginRequest используется для приёма данных формы входа.
type DummyLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Handler struct {
	log      *slog.Logger
	service  StaffLoginer
	validate *validator.Validate
}

func New(log *slog.Logger, service StaffLoginer) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает POST‑запрос на вход.
//
// @Summary Вход сотрудника
// @Tags auth
// @Accept json
// @Produce json
// @Param request body DummyLoginRequest true "Учётные данные"
// @Success 200 {object} response.Response "JWT токен сессии"
// @Failure 401 {object} response.ErrorResponse "Неверные учётные данные"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req DummyLoginRequest
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

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, authservice.ErrInvalidCredentials) {
		log.Info("invalid credentials", slog.String("username", req.Username))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid username or password"))
		return
	}
	if err != nil {
		log.Error("failed to login", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to login"))
		return
	}

	log.Info("staff logged in", slog.String("username", req.Username))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
	}))
}
