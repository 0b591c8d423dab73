// Package remove предоставляет HTTP‑обработчик удаления пользователя.
// Удаление необратимо и требует явного подтверждения в теле запроса.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/subpanel/subscription-admin/internal/apperrors"
	"github.com/subpanel/subscription-admin/internal/http/response"
	"github.com/subpanel/subscription-admin/internal/lib/sl"
)

// UserDeleter удаляет аккаунт провайдера и документ пользователя.
type UserDeleter interface {
	Delete(ctx context.Context, id string) error
}

// DummyConfirmRequest используется для приёма подтверждения операции.
type DummyConfirmRequest struct {
	Confirm bool `json:"confirm"`
}

type Handler struct {
	log     *slog.Logger
	service UserDeleter
}

func New(log *slog.Logger, service UserDeleter) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP обрабатывает DELETE‑запрос на удаление пользователя.
//
// @Summary Удалить пользователя
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "Ключ документа пользователя"
// @Param request body DummyConfirmRequest true "Подтверждение"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Операция не подтверждена"
// @Router /admin/users/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req DummyConfirmRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}
	if !req.Confirm {
		log.Info("operation was not confirmed")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("operation must be confirmed"))
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		var partial *apperrors.PartialCompletionError
		if errors.As(err, &partial) {
			log.Error("user deletion partially completed", slog.String("user_id", id), sl.Err(err))
			render.Status(r, response.StatusCode(err))
			render.JSON(w, r, response.Error(partial.Error()))
			return
		}
		log.Error("failed to delete user", slog.String("user_id", id), sl.Err(err))
		render.Status(r, response.StatusCode(err))
		render.JSON(w, r, response.Error("failed to delete user"))
		return
	}

	log.Info("user deleted", slog.String("user_id", id))
	render.JSON(w, r, response.OK())
}
