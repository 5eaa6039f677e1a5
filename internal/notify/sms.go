package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/magabrotheeeer/event-reminder/internal/config"
	"github.com/magabrotheeeer/event-reminder/internal/lib/sl"
)

// SMSSender отправляет напоминания через REST-шлюз SMS.
// Требует номер телефона получателя; без настроенных учётных данных
// шлюза работает в демо-режиме.
type SMSSender struct {
	cfg        config.SMSGateway
	log        *slog.Logger
	httpClient *http.Client
}

// NewSMSSender создает новый экземпляр SMSSender.
func NewSMSSender(cfg config.SMSGateway, log *slog.Logger) *SMSSender {
	return &SMSSender{
		cfg:        cfg,
		log:        log,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured сообщает, заданы ли учётные данные шлюза.
func (s *SMSSender) Configured() bool {
	return s.cfg.SMSUsername != "" && s.cfg.SMSPassword != ""
}

type smsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	To       string `json:"to"`
	From     string `json:"from"`
	Text     string `json:"text"`
	IsFlash  bool   `json:"isflash"`
}

type smsResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Send выполняет один исходящий вызов шлюза и трактует поле status
// в JSON-ответе: 1 — доставлено, всё остальное — ошибка.
func (s *SMSSender) Send(ctx context.Context, msg Message) error {
	const op = "notify.SMSSender.Send"

	if msg.Phone == nil || *msg.Phone == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingPhone)
	}

	if !s.Configured() {
		s.log.Info("sms adapter not configured, demo mode",
			slog.String("to", *msg.Phone))
		return nil
	}

	payload := smsRequest{
		Username: s.cfg.SMSUsername,
		Password: s.cfg.SMSPassword,
		To:       *msg.Phone,
		From:     s.cfg.SMSFrom,
		Text:     msg.Body,
		IsFlash:  false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.SMSGatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Error("failed to call sms gateway", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var result smsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if result.Status != 1 {
		s.log.Error("sms gateway rejected message",
			slog.Int("status", result.Status), slog.String("message", result.Message))
		return fmt.Errorf("%s: gateway status %d", op, result.Status)
	}

	s.log.Info("sms sent successfully", "to", *msg.Phone)
	return nil
}
