package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/event-reminder/internal/migrations"
	"github.com/magabrotheeeer/event-reminder/internal/models"
)

// setupTestStorage поднимает контейнер PostgreSQL, применяет миграции
// и возвращает готовое хранилище. Очистка регистрируется через t.Cleanup.
func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(connStr)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, storage.DB.Close())
	})

	require.NoError(t, migrations.Run(storage.DB, "../../../migrations"))
	return storage
}

// TestDataFactory содержит методы для создания тестовых данных.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его UID.
func (f *TestDataFactory) CreateUser(t *testing.T, username string, tier models.Tier) string {
	t.Helper()
	uid := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO users (uid, email, username, password_hash, role, tier)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uid, username+"@example.com", username, "hashedpassword", "user", tier)
	require.NoError(t, err)
	return uid
}

// CreateEvent создает тестовое событие и возвращает его ID.
func (f *TestDataFactory) CreateEvent(t *testing.T, userUID string, title string, eventDate time.Time) int {
	t.Helper()
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO events (user_uid, title, event_date, event_type, is_active)
		VALUES ($1, $2, $3, $4, true) RETURNING id`,
		userUID, title, eventDate, models.EventBirthday).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateReminder создает тестовое напоминание и возвращает его ID.
func (f *TestDataFactory) CreateReminder(t *testing.T, eventID, daysBefore int, channel models.Channel) int {
	t.Helper()
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO reminders (event_id, days_before, channel, is_active)
		VALUES ($1, $2, $3, true) RETURNING id`,
		eventID, daysBefore, channel).Scan(&id)
	require.NoError(t, err)
	return id
}
