// Package register предоставляет HTTP‑обработчик регистрации сотрудника панели.
package register

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/subpanel/subscription-admin/internal/http/response"
	"github.com/subpanel/subscription-admin/internal/lib/sl"
)

// StaffRegistrar заводит учётную запись сотрудника.
type StaffRegistrar interface {
	Register(ctx context.Context, username, email, password, role string) (string, error)
}

// DummyRegisterRequest используется для приёма данных формы регистрации.
type DummyRegisterRequest struct {
	Username string `json:"username" validate:"required,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,alphanum"`
}

type Handler struct {
	log      *slog.Logger
	service  StaffRegistrar
	validate *validator.Validate
}

func New(log *slog.Logger, service StaffRegistrar) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает POST‑запрос на регистрацию сотрудника.
//
// @Summary Регистрация сотрудника
// @Tags auth
// @Accept json
// @Produce json
// @Param request body DummyRegisterRequest true "Данные сотрудника"
// @Success 200 {object} response.Response "UID учётной записи"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req DummyRegisterRequest
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
	if req.Role == "" {
		req.Role = "admin"
	}

	uid, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		log.Error("failed to register staff account", sl.Err(err))
		render.Status(r, response.StatusCode(err))
		render.JSON(w, r, response.Error("failed to register"))
		return
	}

	log.Info("staff account registered", slog.String("username", req.Username))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid": uid,
	}))
}
