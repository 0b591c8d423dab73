// Package lifecycle предоставляет HTTP‑обработчики операций жизненного
// цикла пользователя: активация, деактивация и отвязка устройства.
// Каждая операция требует явного подтверждения в теле запроса,
// как и подтверждающий диалог в старом клиенте панели.
package lifecycle

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/subpanel/subscription-admin/internal/http/response"
	"github.com/subpanel/subscription-admin/internal/lib/sl"
)

// UserLifecycler выполняет операции жизненного цикла пользователя.
type UserLifecycler interface {
	Activate(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
	UnlinkDevice(ctx context.Context, id string) error
}

// DummyConfirmRequest используется для приёма подтверждения операции.
type DummyConfirmRequest struct {
	Confirm bool `json:"confirm"`
}

type action struct {
	name string
	call func(UserLifecycler, context.Context, string) error
}

type Handler struct {
	log     *slog.Logger
	service UserLifecycler
	action  action
}

// NewActivate возвращает обработчик активации аккаунта.
func NewActivate(log *slog.Logger, service UserLifecycler) *Handler {
	return &Handler{log: log, service: service, action: action{
		name: "activate",
		call: UserLifecycler.Activate,
	}}
}

// NewDeactivate возвращает обработчик деактивации аккаунта.
func NewDeactivate(log *slog.Logger, service UserLifecycler) *Handler {
	return &Handler{log: log, service: service, action: action{
		name: "deactivate",
		call: UserLifecycler.Deactivate,
	}}
}

// NewUnlinkDevice возвращает обработчик отвязки устройства.
func NewUnlinkDevice(log *slog.Logger, service UserLifecycler) *Handler {
	return &Handler{log: log, service: service, action: action{
		name: "unlink-device",
		call: UserLifecycler.UnlinkDevice,
	}}
}

// ServeHTTP обрабатывает POST‑запрос операции жизненного цикла.
//
// @Summary Операция жизненного цикла пользователя
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "Ключ документа пользователя"
// @Param request body DummyConfirmRequest true "Подтверждение"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Операция не подтверждена"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /admin/users/{id}/activate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.lifecycle"

	log := h.log.With(
		slog.String("op", op),
		slog.String("action", h.action.name),
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
	if err := h.action.call(h.service, r.Context(), id); err != nil {
		log.Error("lifecycle operation failed", slog.String("user_id", id), sl.Err(err))
		render.Status(r, response.StatusCode(err))
		render.JSON(w, r, response.Error("failed to "+h.action.name))
		return
	}

	log.Info("lifecycle operation finished", slog.String("user_id", id))
	render.JSON(w, r, response.OK())
}
