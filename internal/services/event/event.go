// Package event содержит бизнес-логику управления событиями.
package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/event-reminder/internal/models"
)

// Repository определяет методы хранилища для событий.
type Repository interface {
	CreateEvent(ctx context.Context, event models.Event) (int, error)
	ListEvents(ctx context.Context, userUID string, limit, offset int) ([]*models.Event, error)
	DeactivateEvent(ctx context.Context, id int, userUID string) (int, error)
}

// Service реализует операции над событиями.
type Service struct {
	repo Repository
	loc  *time.Location
	log  *slog.Logger
	now  func() time.Time
}

// New создает новый экземпляр Service. Граница "сегодня" считается
// в часовом поясе loc; nil означает UTC.
func New(repo Repository, loc *time.Location, log *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo: repo,
		loc:  loc,
		log:  log,
		now:  time.Now,
	}
}

// Create создаёт событие пользователя. Дата в прошлом допустима только
// в пределах сегодняшнего дня: на прошедшие события напоминания не ставятся.
func (s *Service) Create(ctx context.Context, userUID string, req models.DummyEvent) (int, error) {
	const op = "event.Create"

	if !models.ValidEventType(req.Type) {
		return 0, fmt.Errorf("%s: unknown event type: %s", op, req.Type)
	}
	eventDate, err := time.Parse("02-01-2006", req.EventDate)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid event date: %w", op, err)
	}
	// Дата события парсится как полночь UTC, поэтому "сегодня" тоже
	// собирается из календарных компонентов локального времени в UTC.
	nowLocal := s.now().In(s.loc)
	today := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, time.UTC)
	if eventDate.Before(today) {
		return 0, fmt.Errorf("%s: event date must not be earlier than today", op)
	}

	event := models.Event{
		UserUID:   userUID,
		Title:     req.Title,
		EventDate: eventDate,
		Type:      models.EventType(req.Type),
		IsActive:  true,
	}
	id, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created new event", slog.Int("id", id))
	return id, nil
}

// List возвращает активные события пользователя с пагинацией.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Event, error) {
	return s.repo.ListEvents(ctx, userUID, limit, offset)
}

// Remove мягко удаляет событие вместе с его напоминаниями: у неактивного
// события не остаётся живых напоминаний.
func (s *Service) Remove(ctx context.Context, userUID string, id int) (int, error) {
	const op = "event.Remove"

	count, err := s.repo.DeactivateEvent(ctx, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
