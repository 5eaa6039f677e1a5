// Package notify содержит адаптеры каналов доставки напоминаний.
// Каждый адаптер сам решает, настроен ли он: ненастроенный канал
// логирует намерение и сообщает об успехе (демо-режим), чтобы отсутствие
// боевых учётных данных не блокировало цикл отправки и не засоряло
// журнал доставки ложными ошибками.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/event-reminder/internal/models"
)

// ErrMissingPhone возвращается, когда канал требует номер телефона,
// а у получателя его нет.
var ErrMissingPhone = errors.New("recipient has no phone number")

// Message описывает одно уведомление для отправки.
type Message struct {
	To      string  // Адрес электронной почты получателя
	Phone   *string // Телефон получателя, может отсутствовать
	Subject string  // Тема сообщения
	Body    string  // Текст сообщения
}

// Sender описывает единую операцию отправки для всех каналов.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Registry выбирает адаптер по каналу. Новый канал — это новый адаптер
// плюс одна запись в таблице.
type Registry map[models.Channel]Sender

// Get возвращает адаптер для канала.
func (r Registry) Get(channel models.Channel) (Sender, bool) {
	s, ok := r[channel]
	return s, ok
}

// BuildMessage собирает текст напоминания из фиксированного шаблона.
// Содержимое не настраивается: подставляются только название, тип,
// дата события и число оставшихся дней.
func BuildMessage(d *models.DueReminder, daysUntil int) Message {
	var body string
	switch daysUntil {
	case 0:
		body = fmt.Sprintf("Сегодня: %s (%s), %s.",
			d.EventTitle, d.EventType, d.EventDate.Format("02.01.2006"))
	default:
		body = fmt.Sprintf("Напоминаем: %s (%s) наступит %s, осталось дней: %d.",
			d.EventTitle, d.EventType, d.EventDate.Format("02.01.2006"), daysUntil)
	}
	return Message{
		To:      d.Email,
		Phone:   d.Phone,
		Subject: "Напоминание: " + d.EventTitle,
		Body:    body,
	}
}
