package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/event-reminder/internal/models"
)

// ErrSubscriptionNotFound возвращается, когда запрошенная подписка отсутствует.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// CreatePendingSubscription создаёт строку подписки в состоянии PENDING
// и возвращает её ID.
func (s *Storage) CreatePendingSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.CreatePendingSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_uid, tier, amount, end_date, is_active, payment_authority)
			  VALUES ($1, $2, $3, $4, false, $5)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		sub.UserUID, sub.Tier, sub.Amount, sub.EndDate, sub.PaymentAuthority).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadSubscription возвращает подписку по ID.
func (s *Storage) ReadSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	const op = "storage.ReadSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, tier, amount, end_date, is_active, payment_authority,
			      payment_ref, created_at
			  FROM subscriptions WHERE id = $1`
	return s.scanSubscription(s.DB.QueryRowContext(ctx, query, id), op)
}

// GetActiveSubscription возвращает активную подписку пользователя
// или ErrSubscriptionNotFound, если её нет.
func (s *Storage) GetActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetActiveSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, tier, amount, end_date, is_active, payment_authority,
			      payment_ref, created_at
			  FROM subscriptions
			  WHERE user_uid = $1 AND is_active = true`
	return s.scanSubscription(s.DB.QueryRowContext(ctx, query, userUID), op)
}

func (s *Storage) scanSubscription(row *sql.Row, op string) (*models.Subscription, error) {
	var result models.Subscription
	var paymentRef sql.NullString
	if err := row.Scan(&result.ID, &result.UserUID, &result.Tier, &result.Amount,
		&result.EndDate, &result.IsActive, &result.PaymentAuthority,
		&paymentRef, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if paymentRef.Valid {
		result.PaymentRef = &paymentRef.String
	}
	return &result, nil
}

// SetSubscriptionAuthority сохраняет authority-токен провайдера,
// выданный на шаге request.
func (s *Storage) SetSubscriptionAuthority(ctx context.Context, id int, authority string) (int, error) {
	const op = "storage.SetSubscriptionAuthority"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions SET payment_authority = $1 WHERE id = $2`
	res, err := s.DB.ExecContext(ctx, query, authority, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeleteSubscription удаляет строку подписки. Используется только для
// неподтверждённых PENDING-строк: активные подписки никогда не удаляются.
func (s *Storage) DeleteSubscription(ctx context.Context, id int) (int, error) {
	const op = "storage.DeleteSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions WHERE id = $1 AND is_active = false`
	res, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ActivateSubscription переводит подписку в ACTIVE, сохраняет референс
// провайдера и одновременно обновляет тариф владельца. Обе записи меняются
// в одной транзакции.
func (s *Storage) ActivateSubscription(ctx context.Context, id int, paymentRef string) error {
	const op = "storage.ActivateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var userUID string
	var tier models.Tier
	err = tx.QueryRowContext(ctx,
		`UPDATE subscriptions
		 SET is_active = true, payment_ref = $1
		 WHERE id = $2
		 RETURNING user_uid, tier`, paymentRef, id).Scan(&userUID, &tier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET tier = $1 WHERE uid = $2`, tier, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeactivateSubscription снимает флаг is_active с подписки и возвращает
// тариф владельца к free. Дата окончания не меняется: строка остаётся
// в истории для биллинга.
func (s *Storage) DeactivateSubscription(ctx context.Context, id int, userUID string) error {
	const op = "storage.DeactivateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`UPDATE subscriptions SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE users SET tier = $1 WHERE uid = $2`, models.TierFree, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// HasActiveSubscriptionUntil проверяет, есть ли у пользователя активная
// подписка с датой окончания позже заданной.
func (s *Storage) HasActiveSubscriptionUntil(ctx context.Context, userUID string, after time.Time) (bool, error) {
	const op = "storage.HasActiveSubscriptionUntil"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (
				  SELECT 1 FROM subscriptions
				  WHERE user_uid = $1 AND is_active = true AND end_date > $2
			  )`
	if err := s.DB.QueryRowContext(ctx, query, userUID, after).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
