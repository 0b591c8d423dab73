// Package sender собирает сервис уведомлений: подключение к RabbitMQ,
// SMTP транспорт и потребителя очереди находок сверки.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/subpanel/subscription-admin/internal/config"
	"github.com/subpanel/subscription-admin/internal/lib/rabbitmq"
	"github.com/subpanel/subscription-admin/internal/lib/sl"
	"github.com/subpanel/subscription-admin/internal/lib/smtp"
	senderservice "github.com/subpanel/subscription-admin/internal/services/sender"
)

type App struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	service *senderservice.Service
	logger  *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
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

	transport := smtp.NewTransport(cfg.SMTPConnection, logger)
	service := senderservice.New(logger, transport, cfg.OperatorEmail)

	return &App{
		conn:    conn,
		ch:      ch,
		service: service,
		logger:  logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeMessages(ctx, a.ch, rabbitmq.QueueReconciliation, a.service.HandleMessage)
	if err != nil {
		a.logger.Error("failed to start reconciliation queue consumer", sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
