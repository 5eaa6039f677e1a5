package notify

import (
	"context"
	"fmt"
	"log/slog"
)

// WhatsAppSender — заглушка для WhatsApp Business API. Реальной отправки
// нет: при наличии номера телефона адаптер логирует намерение и сообщает
// об успехе. Это осознанное ограничение, зафиксированное тестами;
// подключение боевого API сведётся к замене тела Send.
type WhatsAppSender struct {
	log *slog.Logger
}

// NewWhatsAppSender создает новый экземпляр WhatsAppSender.
func NewWhatsAppSender(log *slog.Logger) *WhatsAppSender {
	return &WhatsAppSender{log: log}
}

// Send проверяет наличие номера телефона и логирует намерение отправки.
func (s *WhatsAppSender) Send(_ context.Context, msg Message) error {
	const op = "notify.WhatsAppSender.Send"

	if msg.Phone == nil || *msg.Phone == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingPhone)
	}

	s.log.Info("whatsapp stub: message accepted",
		slog.String("to", *msg.Phone), slog.String("subject", msg.Subject))
	return nil
}
