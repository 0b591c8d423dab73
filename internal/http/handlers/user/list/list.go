// Package list предоставляет HTTP‑обработчик списка пользователей
// с их текущими подписками.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/subpanel/subscription-admin/internal/http/response"
	"github.com/subpanel/subscription-admin/internal/lib/sl"
	"github.com/subpanel/subscription-admin/internal/models"
)

// UserLister возвращает пользователей вместе с подписками.
type UserLister interface {
	List(ctx context.Context) ([]models.UserWithSubscription, error)
}

type Handler struct {
	log     *slog.Logger
	service UserLister
}

func New(log *slog.Logger, service UserLister) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP обрабатывает GET‑запрос списка пользователей.
//
// @Summary Список пользователей с подписками
// @Tags users
// @Produce json
// @Success 200 {object} response.Response "Пользователи"
// @Failure 502 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		render.Status(r, response.StatusCode(err))
		render.JSON(w, r, response.Error("failed to list users"))
		return
	}

	log.Info("listed users", slog.Int("count", len(users)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"users_count": len(users),
		"users":       users,
	}))
}
