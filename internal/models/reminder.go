package models

import "time"

// Channel обозначает канал доставки напоминания.
type Channel string

// Поддерживаемые каналы доставки.
const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// ValidChannel проверяет, что строка является известным каналом.
func ValidChannel(s string) bool {
	switch Channel(s) {
	case ChannelEmail, ChannelSMS, ChannelWhatsApp:
		return true
	}
	return false
}

// Reminder представляет настройку напоминания для события.
// LastSentAt — журнал доставки: отметка ставится только после
// подтверждённой успешной отправки и никогда не уменьшается.
type Reminder struct {
	ID         int        // Идентификатор напоминания
	EventID    int        // Событие, к которому привязано напоминание
	DaysBefore int        // За сколько дней до события напоминать
	Channel    Channel    // Канал доставки
	IsActive   bool       // Мягкое удаление
	LastSentAt *time.Time // Время последней успешной отправки, nil — ещё не отправлялось
}

// DummyReminder используется для приёма данных из JSON-запроса.
// Один запрос может описывать несколько каналов: для каждого
// разрешённого тарифом канала будет создана отдельная запись.
type DummyReminder struct {
	EventID    int      `json:"event_id" validate:"required"`
	DaysBefore int      `json:"days_before" validate:"min=0"`
	Channels   []string `json:"channels" validate:"required,min=1"`
}

// DueReminder — строка-кандидат для планировщика: напоминание,
// соединённое с данными события и владельца. Выбирается одним
// запросом, чтобы цикл отправки не ходил в базу за каждым полем.
type DueReminder struct {
	Reminder
	EventDate  time.Time // Дата события
	EventTitle string    // Название события
	EventType  EventType // Тип события
	UserUID    string    // Владелец
	Email      string    // Адрес для email-канала
	Phone      *string   // Телефон для sms/whatsapp, может отсутствовать
	Tier       Tier      // Текущий тариф владельца на момент выборки
}
