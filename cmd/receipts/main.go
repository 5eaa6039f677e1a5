// Package main содержит точку входа сервиса отправки квитанций.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	receiptsapp "github.com/magabrotheeeer/event-reminder/internal/app/receipts"
	"github.com/magabrotheeeer/event-reminder/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting receipts service", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := receiptsapp.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize receipts app", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("receipts app stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("receipts app stopped gracefully")
}
