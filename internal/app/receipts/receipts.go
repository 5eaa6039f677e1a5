// Package receipts собирает приложение-консьюмер квитанций об оплате.
package receipts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/event-reminder/internal/config"
	"github.com/magabrotheeeer/event-reminder/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/event-reminder/internal/notify"
	receiptsservice "github.com/magabrotheeeer/event-reminder/internal/services/receipts"
)

// App представляет приложение отправки квитанций.
type App struct {
	conn           *amqp.Connection
	ch             *amqp.Channel
	receiptService *receiptsservice.Service
	logger         *slog.Logger
}

// New создает новый экземпляр приложения квитанций.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetReceiptQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	emailSender := notify.NewEmailSender(cfg.SMTP, logger)
	receiptService := receiptsservice.New(emailSender, logger)

	return &App{
		conn:           conn,
		ch:             ch,
		receiptService: receiptService,
		logger:         logger,
	}, nil
}

// Run запускает консьюмер очереди квитанций и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeMessages(ctx, a.ch, "receipt.payment", a.receiptService.SendReceipt)
	if err != nil {
		a.logger.Error("failed to start receipt queue consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("receipts service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}
