// Package models содержит доменные структуры сервиса напоминаний:
// пользователей, события, напоминания и подписки.
package models

// Tier обозначает текущий тарифный план пользователя.
type Tier string

// Возможные тарифные планы.
const (
	TierFree     Tier = "free"
	TierPremium  Tier = "premium"
	TierBusiness Tier = "business"
)

// Paid сообщает, является ли тариф платным.
func (t Tier) Paid() bool {
	return t == TierPremium || t == TierBusiness
}

// User представляет зарегистрированного пользователя системы.
// Поле Tier — единственный источник истины о текущем тарифе,
// именно его читает tiergate при отправке напоминаний.
type User struct {
	UID          string  // Уникальный идентификатор пользователя
	Email        string  // Электронная почта
	Username     string  // Имя пользователя (уникальное)
	PasswordHash string  // Хэш пароля пользователя
	Role         string  // Роль пользователя, admin или user
	Phone        *string // Телефон для SMS и WhatsApp, может отсутствовать
	Tier         Tier    // Текущий тарифный план
}
