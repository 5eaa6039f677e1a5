// Package reminder содержит бизнес-логику управления напоминаниями,
// включая фильтрацию каналов по тарифу и кеширование чтений.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/event-reminder/internal/models"
	"github.com/magabrotheeeer/event-reminder/internal/tiergate"
)

// Repository определяет методы хранилища для напоминаний.
type Repository interface {
	CreateReminder(ctx context.Context, r models.Reminder) (int, error)
	ReadReminder(ctx context.Context, id int) (*models.Reminder, error)
	ListReminders(ctx context.Context, userUID string, limit, offset int) ([]*models.Reminder, error)
	UpdateReminder(ctx context.Context, r models.Reminder, id int) (int, error)
	DeactivateReminder(ctx context.Context, id int, userUID string) (int, error)
	OwnsEvent(ctx context.Context, eventID int, userUID string) (bool, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует операции над напоминаниями.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создаёт напоминания для события: по одной записи на каждый
// запрошенный канал, разрешённый текущим тарифом владельца. Каналы,
// недоступные тарифу, молча отбрасываются — в хранилище никогда не
// попадает канал, на который пользователь не имеет права.
// Возвращает созданные записи.
func (s *Service) Create(ctx context.Context, userUID string, req models.DummyReminder) ([]*models.Reminder, error) {
	const op = "reminder.Create"

	if req.DaysBefore < 0 {
		return nil, fmt.Errorf("%s: days_before must be non-negative", op)
	}

	owns, err := s.repo.OwnsEvent(ctx, req.EventID, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !owns {
		return nil, fmt.Errorf("%s: event not found", op)
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var requested []models.Channel
	for _, raw := range req.Channels {
		if !models.ValidChannel(raw) {
			return nil, fmt.Errorf("%s: unknown channel: %s", op, raw)
		}
		requested = append(requested, models.Channel(raw))
	}
	allowed := tiergate.Filter(user.Tier, requested)
	if len(allowed) < len(requested) {
		s.log.Info("dropped channels not allowed for tier",
			slog.String("tier", string(user.Tier)),
			slog.Int("requested", len(requested)), slog.Int("allowed", len(allowed)))
	}

	var created []*models.Reminder
	for _, channel := range allowed {
		r := models.Reminder{
			EventID:    req.EventID,
			DaysBefore: req.DaysBefore,
			Channel:    channel,
			IsActive:   true,
		}
		id, err := s.repo.CreateReminder(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		r.ID = id
		created = append(created, &r)

		cacheKey := fmt.Sprintf("reminder:%d", id)
		if err := s.cache.Set(cacheKey, r, time.Hour); err != nil {
			s.log.Warn("failed to cache reminder", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}
	s.log.Info("created reminders", slog.Int("count", len(created)))
	return created, nil
}

// Read возвращает напоминание по ID, используя кеш или репозиторий.
func (s *Service) Read(ctx context.Context, id int) (*models.Reminder, error) {
	var result *models.Reminder
	cacheKey := fmt.Sprintf("reminder:%d", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}
	result, err = s.repo.ReadReminder(ctx, id)
	if err != nil {
		return nil, err
	}

	if result != nil {
		if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
			s.log.Warn("failed to add to cache", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}
	return result, nil
}

// List возвращает активные напоминания пользователя с пагинацией.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Reminder, error) {
	return s.repo.ListReminders(ctx, userUID, limit, offset)
}

// Update обновляет напоминание. Канал проверяется по текущему тарифу:
// недоступный канал отклоняется, журнал доставки не трогается.
func (s *Service) Update(ctx context.Context, userUID string, id int, daysBefore int, channel string) (int, error) {
	const op = "reminder.Update"

	if daysBefore < 0 {
		return 0, fmt.Errorf("%s: days_before must be non-negative", op)
	}
	if !models.ValidChannel(channel) {
		return 0, fmt.Errorf("%s: unknown channel: %s", op, channel)
	}

	current, err := s.repo.ReadReminder(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	owns, err := s.repo.OwnsEvent(ctx, current.EventID, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !owns {
		return 0, fmt.Errorf("%s: reminder not found", op)
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !tiergate.Permits(user.Tier, models.Channel(channel)) {
		return 0, fmt.Errorf("%s: channel %s is not allowed for tier %s", op, channel, user.Tier)
	}

	updated := models.Reminder{
		EventID:    current.EventID,
		DaysBefore: daysBefore,
		Channel:    models.Channel(channel),
		IsActive:   true,
	}
	res, err := s.repo.UpdateReminder(ctx, updated, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	cacheKey := fmt.Sprintf("reminder:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return res, nil
}

// Remove мягко удаляет напоминание и инвалидирует кеш.
func (s *Service) Remove(ctx context.Context, userUID string, id int) (int, error) {
	const op = "reminder.Remove"

	cacheKey := fmt.Sprintf("reminder:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	count, err := s.repo.DeactivateReminder(ctx, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
