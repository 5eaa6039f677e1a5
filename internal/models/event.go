package models

import "time"

// EventType классифицирует событие, о котором нужно напоминать.
type EventType string

// Поддерживаемые типы событий.
const (
	EventBirthday  EventType = "birthday"
	EventInsurance EventType = "insurance"
	EventContract  EventType = "contract"
	EventCheck     EventType = "check"
	EventOther     EventType = "other"
)

// ValidEventType проверяет, что строка является известным типом события.
func ValidEventType(s string) bool {
	switch EventType(s) {
	case EventBirthday, EventInsurance, EventContract, EventCheck, EventOther:
		return true
	}
	return false
}

// Event представляет датированное событие пользователя.
// Неактивное событие (IsActive=false) исключается из выборки
// планировщика вместе со всеми своими напоминаниями.
type Event struct {
	ID        int       // Идентификатор события
	UserUID   string    // Владелец события
	Title     string    // Название события
	EventDate time.Time // Дата события
	Type      EventType // Тип события
	IsActive  bool      // Мягкое удаление
}

// DummyEvent используется для приёма данных из JSON-запроса,
// даты приходят строками и парсятся вручную.
type DummyEvent struct {
	Title     string `json:"title" validate:"required"`
	EventDate string `json:"event_date" validate:"required"` // Формат 02-01-2006
	Type      string `json:"type" validate:"required"`
}
