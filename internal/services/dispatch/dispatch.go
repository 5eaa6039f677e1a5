// Package dispatch реализует один цикл отправки напоминаний:
// выборка кандидатов, фильтр по сроку, проверка журнала доставки,
// проверка тарифа и вызов адаптера канала. Повторов внутри цикла нет:
// неудачная отправка ждёт следующего естественного цикла.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/event-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/event-reminder/internal/metrics"
	"github.com/magabrotheeeer/event-reminder/internal/models"
	"github.com/magabrotheeeer/event-reminder/internal/notify"
	"github.com/magabrotheeeer/event-reminder/internal/tiergate"
)

// CandidateRepository определяет методы хранилища, нужные циклу отправки.
type CandidateRepository interface {
	// ListDueCandidates возвращает пул кандидатов: активные напоминания
	// активных событий с датой не раньше сегодняшней.
	ListDueCandidates(ctx context.Context) ([]*models.DueReminder, error)
	// MarkReminderSent ставит отметку журнала доставки.
	MarkReminderSent(ctx context.Context, id int, sentAt time.Time) (int, error)
}

// Stats — итог одного цикла отправки.
type Stats struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Dispatcher выполняет циклы отправки напоминаний.
type Dispatcher struct {
	repo    CandidateRepository
	senders notify.Registry
	log     *slog.Logger
	now     func() time.Time
}

// New создает новый экземпляр Dispatcher.
func New(repo CandidateRepository, senders notify.Registry, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		repo:    repo,
		senders: senders,
		log:     log,
		now:     time.Now,
	}
}

// DaysUntil считает число календарных дней до события: обе даты
// обрезаются до начала суток, время внутри дня не влияет на результат.
// Событие сегодняшнего дня даёт 0 независимо от часа.
func DaysUntil(eventDate, now time.Time) int {
	today := truncateToMidnight(now)
	eventDay := truncateToMidnight(eventDate.In(now.Location()))
	diff := eventDay.Sub(today)
	if diff <= 0 {
		return 0
	}
	days := int(diff / (24 * time.Hour))
	// Переходы на летнее время дают остаток, округляем вверх.
	if diff%(24*time.Hour) > 12*time.Hour {
		days++
	}
	return days
}

// DueToday сообщает, должно ли напоминание сработать в этом цикле:
// либо наступил настроенный срок, либо день события. Ветка daysUntil == 0
// гарантирует уведомление в сам день события, даже если настроенный срок
// был пропущен.
func DueToday(r *models.DueReminder, now time.Time) bool {
	daysUntil := DaysUntil(r.EventDate, now)
	return daysUntil == r.DaysBefore || daysUntil == 0
}

// shouldSendToday проверяет журнал доставки: напоминание отправляется
// не чаще одного раза в календарные сутки.
func shouldSendToday(lastSentAt *time.Time, now time.Time) bool {
	return lastSentAt == nil || lastSentAt.Before(truncateToMidnight(now))
}

func truncateToMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// RunCycle выполняет один полный цикл отправки и возвращает счётчики.
// Ошибка выборки пула прерывает цикл; ошибка отправки одного напоминания
// логируется и не мешает остальным.
func (d *Dispatcher) RunCycle(ctx context.Context) (Stats, error) {
	const op = "dispatch.RunCycle"

	candidates, err := d.repo.ListDueCandidates(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}

	now := d.now()
	var stats Stats
	for _, c := range candidates {
		if !DueToday(c, now) {
			continue
		}
		if !shouldSendToday(c.LastSentAt, now) {
			continue
		}
		// Повторная проверка по актуальному тарифу: после даунгрейда
		// платный канал пропускается, запись не удаляется.
		if !tiergate.Permits(c.Tier, c.Channel) {
			d.log.Info("channel not allowed for current tier, skipping",
				slog.Int("reminder_id", c.ID),
				slog.String("channel", string(c.Channel)),
				slog.String("tier", string(c.Tier)))
			metrics.RemindersSkipped.WithLabelValues(string(c.Channel)).Inc()
			stats.Skipped++
			continue
		}

		sender, ok := d.senders.Get(c.Channel)
		if !ok {
			d.log.Error("no sender registered for channel",
				slog.String("channel", string(c.Channel)))
			metrics.RemindersFailed.WithLabelValues(string(c.Channel)).Inc()
			stats.Failed++
			continue
		}

		msg := notify.BuildMessage(c, DaysUntil(c.EventDate, now))
		if err := sender.Send(ctx, msg); err != nil {
			d.log.Error("failed to send reminder", slog.Int("reminder_id", c.ID),
				slog.String("channel", string(c.Channel)), sl.Err(err))
			metrics.RemindersFailed.WithLabelValues(string(c.Channel)).Inc()
			stats.Failed++
			continue
		}

		if _, err := d.repo.MarkReminderSent(ctx, c.ID, now); err != nil {
			// Отправка уже состоялась: возможен повтор на следующем цикле.
			// Это принятое поведение "не чаще раза в день на happy path".
			d.log.Error("failed to mark reminder as sent",
				slog.Int("reminder_id", c.ID), sl.Err(err))
		}
		metrics.RemindersSent.WithLabelValues(string(c.Channel)).Inc()
		stats.Sent++
	}

	metrics.DispatchCycles.Inc()
	d.log.Info("dispatch cycle finished",
		slog.Int("sent", stats.Sent), slog.Int("failed", stats.Failed),
		slog.Int("skipped", stats.Skipped))
	return stats, nil
}
