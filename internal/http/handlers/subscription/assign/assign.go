// Package assign предоставляет HTTP‑обработчик назначения подписки
// пользователю.
package assign

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

// SubscriptionAssigner выполняет воркфлоу назначения подписки.
type SubscriptionAssigner interface {
	Assign(ctx context.Context, req models.DummyAssign) (*models.AssignmentResult, error)
}

type Handler struct {
	log      *slog.Logger
	service  SubscriptionAssigner
	validate *validator.Validate
}

func New(log *slog.Logger, service SubscriptionAssigner) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает POST‑запрос на назначение подписки.
//
// @Summary Назначить подписку пользователю
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param request body models.DummyAssign true "Пользователь и план"
// @Success 200 {object} response.Response "Результат назначения"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Частичное выполнение"
// @Router /admin/subscriptions/assign [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.assign"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyAssign
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

	result, err := h.service.Assign(r.Context(), req)
	if err != nil {
		var partial *apperrors.PartialCompletionError
		if errors.As(err, &partial) {
			log.Error("assignment partially completed", sl.Err(err))
			render.Status(r, response.StatusCode(err))
			render.JSON(w, r, response.Error(partial.Error()))
			return
		}
		log.Error("failed to assign subscription", sl.Err(err))
		render.Status(r, response.StatusCode(err))
		render.JSON(w, r, response.Error("failed to assign subscription"))
		return
	}

	log.Info("subscription assigned",
		slog.String("user_id", result.UserID),
		slog.String("plan_id", result.PlanID))
	render.JSON(w, r, response.StatusOKWithData(result))
}
