// Package list предоставляет HTTP‑обработчик каталога тарифных планов.
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

// PlanLister возвращает каталог тарифных планов.
type PlanLister interface {
	Plans(ctx context.Context) ([]models.Plan, error)
}

type Handler struct {
	log     *slog.Logger
	service PlanLister
}

func New(log *slog.Logger, service PlanLister) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP обрабатывает GET‑запрос каталога планов.
//
// @Summary Каталог тарифных планов
// @Tags plans
// @Produce json
// @Success 200 {object} response.Response "Планы"
// @Failure 502 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /admin/plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.service.Plans(r.Context())
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		render.Status(r, response.StatusCode(err))
		render.JSON(w, r, response.Error("failed to list plans"))
		return
	}

	log.Info("listed plans", slog.Int("count", len(plans)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plans_count": len(plans),
		"plans":       plans,
	}))
}
