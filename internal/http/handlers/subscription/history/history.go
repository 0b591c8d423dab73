// Package history предоставляет HTTP‑обработчик истории подписок.
package history

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

// HistoryLister возвращает все записи истории подписок.
type HistoryLister interface {
	History(ctx context.Context) ([]models.HistoryRecord, error)
}

type Handler struct {
	log     *slog.Logger
	service HistoryLister
}

func New(log *slog.Logger, service HistoryLister) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP обрабатывает GET‑запрос истории подписок.
//
// @Summary История назначений подписок
// @Tags subscriptions
// @Produce json
// @Success 200 {object} response.Response "Записи истории"
// @Failure 502 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /admin/subscriptions/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.history"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	records, err := h.service.History(r.Context())
	if err != nil {
		log.Error("failed to list history", sl.Err(err))
		render.Status(r, response.StatusCode(err))
		render.JSON(w, r, response.Error("failed to list history"))
		return
	}

	log.Info("listed history records", slog.Int("count", len(records)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"records_count": len(records),
		"records":       records,
	}))
}
