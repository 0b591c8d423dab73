// Package reconciler собирает сервис фоновой сверки: хранилище,
// подключение к RabbitMQ и периодический запуск проходов.
package reconciler

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/subpanel/subscription-admin/internal/config"
	"github.com/subpanel/subscription-admin/internal/lib/rabbitmq"
	"github.com/subpanel/subscription-admin/internal/lib/sl"
	reconcilerservice "github.com/subpanel/subscription-admin/internal/services/reconciler"
	"github.com/subpanel/subscription-admin/internal/storage/repository"
)

type App struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	db      *repository.Storage
	service *reconcilerservice.Service
	logger  *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitConnection.ConnectionString,
		cfg.RabbitConnection.Retries, cfg.RabbitConnection.RetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetPanelQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	service := reconcilerservice.New(logger, db, rabbitmq.NewEventBus(ch), cfg.Reconciler.Interval)

	return &App{
		conn:    conn,
		ch:      ch,
		db:      db,
		service: service,
		logger:  logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.service.Run(ctx)

	a.logger.Info("reconciler shutting down gracefully")
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	return nil
}
