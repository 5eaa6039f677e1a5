package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/event-reminder/internal/models"
)

// CreateReminder вставляет новое напоминание и возвращает его ID.
func (s *Storage) CreateReminder(ctx context.Context, r models.Reminder) (int, error) {
	const op = "storage.CreateReminder"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO reminders (event_id, days_before, channel, is_active)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		r.EventID, r.DaysBefore, r.Channel, r.IsActive).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadReminder возвращает напоминание по ID.
func (s *Storage) ReadReminder(ctx context.Context, id int) (*models.Reminder, error) {
	const op = "storage.ReadReminder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, event_id, days_before, channel, is_active, last_sent_at
			  FROM reminders WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Reminder
	var lastSentAt sql.NullTime
	if err := row.Scan(&result.ID, &result.EventID, &result.DaysBefore, &result.Channel,
		&result.IsActive, &lastSentAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if lastSentAt.Valid {
		result.LastSentAt = &lastSentAt.Time
	}
	return &result, nil
}

// ListReminders возвращает активные напоминания пользователя с пагинацией.
func (s *Storage) ListReminders(ctx context.Context, userUID string, limit, offset int) ([]*models.Reminder, error) {
	const op = "storage.ListReminders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT r.id, r.event_id, r.days_before, r.channel, r.is_active, r.last_sent_at
			  FROM reminders r
			  JOIN events e ON r.event_id = e.id
			  WHERE e.user_uid = $1 AND r.is_active = true
			  ORDER BY r.id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Reminder
	for rows.Next() {
		var item models.Reminder
		var lastSentAt sql.NullTime
		if err := rows.Scan(&item.ID, &item.EventID, &item.DaysBefore, &item.Channel,
			&item.IsActive, &lastSentAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if lastSentAt.Valid {
			item.LastSentAt = &lastSentAt.Time
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateReminder обновляет настройку напоминания и возвращает количество
// изменённых строк. Журнал доставки (last_sent_at) не трогается.
func (s *Storage) UpdateReminder(ctx context.Context, r models.Reminder, id int) (int, error) {
	const op = "storage.UpdateReminder"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reminders
			  SET days_before = $1, channel = $2, is_active = $3
			  WHERE id = $4`
	res, err := s.DB.ExecContext(ctx, query, r.DaysBefore, r.Channel, r.IsActive, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeactivateReminder мягко удаляет напоминание.
func (s *Storage) DeactivateReminder(ctx context.Context, id int, userUID string) (int, error) {
	const op = "storage.DeactivateReminder"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reminders r
			  SET is_active = false
			  FROM events e
			  WHERE r.id = $1 AND r.event_id = e.id AND e.user_uid = $2`
	res, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// OwnsEvent проверяет, что активное событие принадлежит пользователю.
func (s *Storage) OwnsEvent(ctx context.Context, eventID int, userUID string) (bool, error) {
	const op = "storage.OwnsEvent"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (
				  SELECT 1 FROM events WHERE id = $1 AND user_uid = $2 AND is_active = true
			  )`
	if err := s.DB.QueryRowContext(ctx, query, eventID, userUID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListDueCandidates возвращает пул кандидатов для цикла отправки:
// активные напоминания активных событий с датой не раньше сегодняшней,
// вместе с данными события и владельца. Тариф владельца читается здесь же,
// поэтому проверка канала при отправке всегда видит актуальный тариф.
func (s *Storage) ListDueCandidates(ctx context.Context) ([]*models.DueReminder, error) {
	const op = "storage.ListDueCandidates"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT r.id, r.event_id, r.days_before, r.channel, r.is_active, r.last_sent_at,
			      e.event_date, e.title, e.event_type,
			      u.uid, u.email, u.phone, u.tier
			  FROM reminders r
			  JOIN events e ON r.event_id = e.id
			  JOIN users u ON e.user_uid = u.uid
			  WHERE r.is_active = true
			    AND e.is_active = true
			    AND e.event_date >= CURRENT_DATE
			  ORDER BY r.id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.DueReminder
	for rows.Next() {
		var item models.DueReminder
		var lastSentAt sql.NullTime
		var phone sql.NullString
		if err := rows.Scan(&item.ID, &item.EventID, &item.DaysBefore, &item.Channel,
			&item.IsActive, &lastSentAt,
			&item.EventDate, &item.EventTitle, &item.EventType,
			&item.UserUID, &item.Email, &phone, &item.Tier); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if lastSentAt.Valid {
			item.LastSentAt = &lastSentAt.Time
		}
		if phone.Valid {
			item.Phone = &phone.String
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkReminderSent ставит отметку журнала доставки. Условие в запросе
// гарантирует, что отметка никогда не уменьшается.
func (s *Storage) MarkReminderSent(ctx context.Context, id int, sentAt time.Time) (int, error) {
	const op = "storage.MarkReminderSent"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reminders
			  SET last_sent_at = $1
			  WHERE id = $2
			    AND (last_sent_at IS NULL OR last_sent_at < $1)`
	res, err := s.DB.ExecContext(ctx, query, sentAt, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
