// Package adminpanel собирает HTTP‑сервис админ-панели: хранилище,
// кеш, шину событий, внешнего провайдера аутентификации и маршруты.
package adminpanel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/subpanel/subscription-admin/internal/cache"
	"github.com/subpanel/subscription-admin/internal/config"
	"github.com/subpanel/subscription-admin/internal/identityprovider"
	"github.com/subpanel/subscription-admin/internal/lib/jwt"
	"github.com/subpanel/subscription-admin/internal/lib/rabbitmq"
	"github.com/subpanel/subscription-admin/internal/lib/sl"
	"github.com/subpanel/subscription-admin/internal/migrations"
	assignmentservice "github.com/subpanel/subscription-admin/internal/services/assignment"
	authservice "github.com/subpanel/subscription-admin/internal/services/auth"
	directoryservice "github.com/subpanel/subscription-admin/internal/services/directory"
	"github.com/subpanel/subscription-admin/internal/storage/repository"
)

type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	amqpConn *amqp.Connection
	amqpCh   *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
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
	events := rabbitmq.NewEventBus(ch)

	maker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	provider := identityprovider.NewClient(cfg.IdentityProvider.APIURL, cfg.IdentityProvider.APIKey)

	authService := authservice.New(logger, db, maker)
	directoryService := directoryservice.New(logger, db, cacheRedis, provider, events, cfg.PickMostRecent)
	assignmentService := assignmentservice.New(logger, db, cacheRedis, events)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, maker, db, authService, directoryService, assignmentService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		amqpConn: conn,
		amqpCh:   ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.amqpCh.Close(); closeErr != nil {
			a.logger.Error("failed to close channel", sl.Err(closeErr))
		}
		if closeErr := a.amqpConn.Close(); closeErr != nil {
			a.logger.Error("failed to close connection", sl.Err(closeErr))
		}
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", sl.Err(closeErr))
		}
		return err
	}
}
