// Package scheduler содержит планировщик циклов отправки напоминаний.
// Планировщик — явный долгоживущий объект со своим жизненным циклом:
// зависимости внедряются при создании, остановка — через отмену контекста.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/event-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/event-reminder/internal/services/dispatch"
)

// Dispatcher выполняет один цикл отправки.
type Dispatcher interface {
	RunCycle(ctx context.Context) (dispatch.Stats, error)
}

// Options настраивают расписание планировщика.
type Options struct {
	Location      *time.Location // Часовой пояс ежедневного запуска
	DailyHour     int            // Час ежедневного запуска по местному времени
	SweepInterval time.Duration  // Интервал дополнительных проходов
}

// Scheduler будит цикл отправки по двум независимым расписаниям:
// раз в сутки в фиксированный час и дополнительно каждые SweepInterval.
// Обе ветки идут через один и тот же журнал доставки, поэтому лишний
// проход для уже отправленных напоминаний — пустая операция.
type Scheduler struct {
	dispatcher Dispatcher
	log        *slog.Logger
	opts       Options

	// Сериализация циклов: пересекающийся тик пропускается,
	// а не ждёт — иначе два цикла могли бы отправить одно
	// напоминание дважды до фиксации журнала.
	mu sync.Mutex
}

// New создает новый экземпляр Scheduler.
func New(dispatcher Dispatcher, log *slog.Logger, opts Options) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = 6 * time.Hour
	}
	return &Scheduler{
		dispatcher: dispatcher,
		log:        log,
		opts:       opts,
	}
}

// Run запускает оба расписания и блокируется до отмены контекста.
// Первый цикл выполняется сразу при старте.
func (s *Scheduler) Run(ctx context.Context) {
	s.RunOnce(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.runDaily(ctx)
	}()
	go func() {
		defer wg.Done()
		s.runSweep(ctx)
	}()
	wg.Wait()
}

// RunOnce выполняет один цикл с защитой от параллельного запуска.
// Возвращает false, если другой цикл уже выполняется.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if !s.mu.TryLock() {
		s.log.Warn("dispatch cycle already running, skipping tick")
		return false
	}
	defer s.mu.Unlock()

	defer func() {
		// Паника внутри цикла не должна убивать долгоживущий процесс.
		if r := recover(); r != nil {
			s.log.Error("dispatch cycle panicked", slog.Any("panic", r))
		}
	}()

	stats, err := s.dispatcher.RunCycle(ctx)
	if err != nil {
		s.log.Error("dispatch cycle failed", sl.Err(err))
		return true
	}
	s.log.Info("dispatch cycle completed",
		slog.Int("sent", stats.Sent), slog.Int("failed", stats.Failed),
		slog.Int("skipped", stats.Skipped))
	return true
}

func (s *Scheduler) runDaily(ctx context.Context) {
	for {
		wait := untilNextDailyRun(time.Now().In(s.opts.Location), s.opts.DailyHour)
		s.log.Info("next daily dispatch scheduled",
			slog.String("in", wait.String()))
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			s.RunOnce(ctx)
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (s *Scheduler) runSweep(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// untilNextDailyRun возвращает время до ближайшего запуска в час hour.
func untilNextDailyRun(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// String описывает расписание планировщика для логов.
func (o Options) String() string {
	return fmt.Sprintf("daily at %02d:00 %s, sweep every %s",
		o.DailyHour, o.Location, o.SweepInterval)
}
