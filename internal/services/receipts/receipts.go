// Package receipts содержит воркер отправки квитанций об оплате,
// потребляющий события об активированных подписках из RabbitMQ.
package receipts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/event-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/event-reminder/internal/models"
	"github.com/magabrotheeeer/event-reminder/internal/notify"
)

// Service отправляет квитанции об оплате на почту.
type Service struct {
	sender notify.Sender
	log    *slog.Logger
}

// New создает новый экземпляр Service.
func New(sender notify.Sender, log *slog.Logger) *Service {
	return &Service{
		sender: sender,
		log:    log,
	}
}

// SendReceipt разбирает событие из очереди и отправляет квитанцию.
// Ошибка возвращается вызывающему потребителю, который вернёт сообщение
// в очередь.
func (s *Service) SendReceipt(body []byte) error {
	var receipt models.Receipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		s.log.Error("failed to unmarshal receipt", sl.Err(err))
		return fmt.Errorf("error unmarshalling receipt: %w", err)
	}

	msg := notify.Message{
		To:      receipt.Email,
		Subject: "Квитанция об оплате подписки",
		Body: fmt.Sprintf("Здравствуйте, %s!\n\nВаша подписка %s активирована.\nСумма: %d\nНомер операции: %s\n\nСпасибо, что пользуетесь сервисом.",
			receipt.Username, receipt.Tier, receipt.Amount, receipt.PaymentRef),
	}
	if err := s.sender.Send(context.Background(), msg); err != nil {
		s.log.Error("failed to send receipt email", sl.Err(err))
		return err
	}

	s.log.Info("receipt sent", slog.String("to", receipt.Email))
	return nil
}
