// Package reminder собирает HTTP-приложение сервиса напоминаний:
// хранилище, кеш, RabbitMQ, бизнес-сервисы и роутер.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/event-reminder/internal/cache"
	"github.com/magabrotheeeer/event-reminder/internal/config"
	"github.com/magabrotheeeer/event-reminder/internal/lib/jwt"
	"github.com/magabrotheeeer/event-reminder/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/event-reminder/internal/migrations"
	"github.com/magabrotheeeer/event-reminder/internal/models"
	"github.com/magabrotheeeer/event-reminder/internal/notify"
	"github.com/magabrotheeeer/event-reminder/internal/paymentprovider"
	authservice "github.com/magabrotheeeer/event-reminder/internal/services/auth"
	dispatchservice "github.com/magabrotheeeer/event-reminder/internal/services/dispatch"
	eventservice "github.com/magabrotheeeer/event-reminder/internal/services/event"
	reminderservice "github.com/magabrotheeeer/event-reminder/internal/services/reminder"
	settlementservice "github.com/magabrotheeeer/event-reminder/internal/services/settlement"
	"github.com/magabrotheeeer/event-reminder/internal/storage/repository"
)

// App представляет HTTP-приложение сервиса напоминаний.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New создает новый экземпляр App: подключает хранилище, применяет
// миграции, инициализирует кеш и RabbitMQ, собирает сервисы и роутер.
// Недоступный RabbitMQ не мешает запуску: квитанции тогда не публикуются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := migrations.Run(db.DB, "./migrations"); err != nil {
		db.DB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		db.DB.Close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	var conn *amqp.Connection
	var ch *amqp.Channel
	conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		logger.Warn("RabbitMQ unavailable, receipts will not be published", slog.Any("err", err))
	} else {
		ch, err = rabbitmq.SetupChannel(conn, rabbitmq.GetReceiptQueues())
		if err != nil {
			logger.Warn("failed to setup RabbitMQ channel, receipts will not be published", slog.Any("err", err))
			_ = conn.Close()
			conn = nil
		}
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	senders := notify.Registry{
		models.ChannelEmail:    notify.NewEmailSender(cfg.SMTP, logger),
		models.ChannelSMS:      notify.NewSMSSender(cfg.SMSGateway, logger),
		models.ChannelWhatsApp: notify.NewWhatsAppSender(logger),
	}
	providerClient := paymentprovider.NewClient(cfg.MerchantID, cfg.PaymentAPIURL)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, falling back to UTC", slog.String("timezone", cfg.Timezone))
		loc = time.UTC
	}

	authService := authservice.New(db, jwtMaker)
	eventService := eventservice.New(db, loc, logger)
	reminderService := reminderservice.New(db, cacheRedis, logger)
	dispatcher := dispatchservice.New(db, senders, logger)
	settlementService := settlementservice.New(db, providerClient, cfg.CallbackURL, ch, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, jwtMaker, db,
		authService, eventService, reminderService, settlementService, dispatcher)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста.
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
		a.closeResources()
		return err
	}
}

func (a *App) closeResources() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", slog.Any("err", err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", slog.Any("err", err))
		}
	}
	a.db.DB.Close()
}
