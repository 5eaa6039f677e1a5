// Package scheduler собирает приложение планировщика рассылки напоминаний.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/event-reminder/internal/config"
	"github.com/magabrotheeeer/event-reminder/internal/models"
	"github.com/magabrotheeeer/event-reminder/internal/notify"
	dispatchservice "github.com/magabrotheeeer/event-reminder/internal/services/dispatch"
	schedulerservice "github.com/magabrotheeeer/event-reminder/internal/services/scheduler"
	"github.com/magabrotheeeer/event-reminder/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	scheduler *schedulerservice.Scheduler
	db        *repository.Storage
	logger    *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := db.CheckDatabaseReady()
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(db); err != nil {
		db.DB.Close()
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		db.DB.Close()
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	senders := notify.Registry{
		models.ChannelEmail:    notify.NewEmailSender(cfg.SMTP, logger),
		models.ChannelSMS:      notify.NewSMSSender(cfg.SMSGateway, logger),
		models.ChannelWhatsApp: notify.NewWhatsAppSender(logger),
	}

	dispatcher := dispatchservice.New(db, senders, logger)
	opts := schedulerservice.Options{
		Location:      loc,
		DailyHour:     cfg.DailyHour,
		SweepInterval: cfg.SweepInterval,
	}
	logger.Info("scheduler configured", slog.String("schedule", opts.String()))

	return &App{
		scheduler: schedulerservice.New(dispatcher, logger, opts),
		db:        db,
		logger:    logger,
	}, nil
}

// Run запускает планировщик и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	a.scheduler.Run(ctx)

	a.logger.Info("shutting down scheduler service")
	a.db.DB.Close()
	return nil
}
