// Package tiergate сопоставляет тарифный план пользователя с набором
// разрешённых каналов доставки. Проверка выполняется дважды: при создании
// и обновлении напоминания (лишние каналы молча отбрасываются) и повторно
// при отправке по актуальному тарифу, чтобы даунгрейд сразу отключал
// платные каналы без миграции данных.
package tiergate

import "github.com/magabrotheeeer/event-reminder/internal/models"

var (
	freeChannels = []models.Channel{models.ChannelEmail}
	paidChannels = []models.Channel{models.ChannelEmail, models.ChannelSMS, models.ChannelWhatsApp}
)

// Allowed возвращает каналы, доступные для тарифа.
// Неизвестный тариф получает набор бесплатного плана.
func Allowed(tier models.Tier) []models.Channel {
	if tier.Paid() {
		return paidChannels
	}
	return freeChannels
}

// Permits сообщает, разрешён ли канал для тарифа.
func Permits(tier models.Tier, channel models.Channel) bool {
	for _, c := range Allowed(tier) {
		if c == channel {
			return true
		}
	}
	return false
}

// Filter возвращает только те из запрошенных каналов, которые разрешены
// тарифом. Порядок сохраняется, дубликаты убираются.
func Filter(tier models.Tier, channels []models.Channel) []models.Channel {
	seen := make(map[models.Channel]struct{}, len(channels))
	var result []models.Channel
	for _, c := range channels {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		if Permits(tier, c) {
			result = append(result, c)
		}
	}
	return result
}
