package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/smakfood/smakbot/core/logger"
)

// User is a locally persisted bot profile. The catalog stays remote; only
// chat-level preferences live here.
type User struct {
	TelegramID int64     `db:"telegram_id"`
	Username   string    `db:"username"`
	Language   string    `db:"language"`
	Phone      string    `db:"phone"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Store persists user profiles in Postgres.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open connection pool.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Upsert records that the user exists, refreshing the username.
func (s *Store) Upsert(ctx context.Context, telegramID int64, username string) error {
	const q = `
		INSERT INTO users (telegram_id, username, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (telegram_id)
		DO UPDATE SET username = EXCLUDED.username, updated_at = NOW()`
	if _, err := s.db.ExecContext(ctx, q, telegramID, username); err != nil {
		return fmt.Errorf("profile: upsert: %w", err)
	}
	return nil
}

// SetLanguage stores the user's language preference.
func (s *Store) SetLanguage(ctx context.Context, telegramID int64, lang string) error {
	const q = `UPDATE users SET language = $2, updated_at = NOW() WHERE telegram_id = $1`
	res, err := s.db.ExecContext(ctx, q, telegramID, lang)
	if err != nil {
		return fmt.Errorf("profile: set language: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		logger.DB.Warn("profile.language.no_user", slog.Int64("user_id", telegramID))
	}
	return nil
}

// SetPhone stores the phone number captured from a shared contact.
func (s *Store) SetPhone(ctx context.Context, telegramID int64, phone string) error {
	const q = `UPDATE users SET phone = $2, updated_at = NOW() WHERE telegram_id = $1`
	if _, err := s.db.ExecContext(ctx, q, telegramID, phone); err != nil {
		return fmt.Errorf("profile: set phone: %w", err)
	}
	return nil
}

// Language returns the stored preference or empty when the user is unknown
// or has not chosen yet.
func (s *Store) Language(ctx context.Context, telegramID int64) (string, error) {
	const q = `SELECT COALESCE(language, '') FROM users WHERE telegram_id = $1`
	var lang string
	err := s.db.GetContext(ctx, &lang, q, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("profile: get language: %w", err)
	}
	return lang, nil
}

// Get fetches the full profile.
func (s *Store) Get(ctx context.Context, telegramID int64) (User, bool, error) {
	const q = `
		SELECT telegram_id, COALESCE(username, '') AS username,
		       COALESCE(language, '') AS language, COALESCE(phone, '') AS phone,
		       created_at, updated_at
		FROM users WHERE telegram_id = $1`
	var u User
	err := s.db.GetContext(ctx, &u, q, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("profile: get: %w", err)
	}
	return u, true, nil
}
