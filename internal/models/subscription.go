package models

import "time"

// Subscription представляет платную подписку пользователя.
//
// Жизненный цикл: строка создаётся в состоянии PENDING (IsActive=false,
// PaymentRef пустой) перед уходом пользователя на страницу оплаты.
// После подтверждённой провайдером верификации строка становится ACTIVE
// (IsActive=true, PaymentRef заполнен). Неподтверждённые строки удаляются,
// отменённые остаются в истории с IsActive=false.
type Subscription struct {
	ID               int       // Идентификатор подписки
	UserUID          string    // Владелец подписки
	Tier             Tier      // Оплачиваемый тариф, premium или business
	Amount           int       // Стоимость в минорных единицах валюты
	EndDate          time.Time // Дата окончания оплаченного периода
	IsActive         bool      // true только у подписки, дающей права прямо сейчас
	PaymentAuthority string    // Authority-токен провайдера, выданный на шаге request
	PaymentRef       *string   // Референс провайдера после успешной верификации
	CreatedAt        time.Time // Время создания строки
}

// Receipt — событие об активированной подписке, публикуемое в очередь
// для отправки квитанции на почту.
type Receipt struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Tier       Tier   `json:"tier"`
	Amount     int    `json:"amount"`
	PaymentRef string `json:"payment_ref"`
}
