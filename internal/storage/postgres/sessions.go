package postgres

import (
	"context"
	"fmt"
	"time"

	"finlet/internal/models"
	"finlet/internal/storage"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
)

const sessionColumns = `id, expires_at, token, created_at, updated_at, ip_address, user_agent, user_id`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertSession(ctx context.Context, db execer, s models.Session) error {
	_, err := db.Exec(ctx, `
		INSERT INTO sessions (id, expires_at, token, created_at, updated_at, ip_address, user_agent, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`, s.ID, s.ExpiresAt, s.Token, s.CreatedAt, s.UpdatedAt, s.IPAddress, s.UserAgent, s.UserID)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

func (r *PostgresRepo) CreateSession(ctx context.Context, s models.Session) error {
	const op = "storage.postgres.CreateSession"

	if err := insertSession(ctx, r.db, s); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) SessionByToken(ctx context.Context, token string) (models.Session, error) {
	const op = "storage.postgres.SessionByToken"

	var s models.Session
	err := pgxscan.Get(ctx, r.db, &s, `SELECT `+sessionColumns+` FROM sessions WHERE token = $1;`, token)
	if err != nil {
		if pgxscan.NotFound(err) {
			return models.Session{}, storage.ErrSessionNotFound
		}

		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func (r *PostgresRepo) SessionsByUser(ctx context.Context, userID string) ([]models.Session, error) {
	const op = "storage.postgres.SessionsByUser"

	var sessions []models.Session
	err := pgxscan.Select(ctx, r.db, &sessions, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at DESC;
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sessions, nil
}

func (r *PostgresRepo) ExtendSession(ctx context.Context, id string, expiresAt, updatedAt time.Time) error {
	const op = "storage.postgres.ExtendSession"

	tag, err := r.db.Exec(ctx, `
		UPDATE sessions SET expires_at = $2, updated_at = $3
		WHERE id = $1;
	`, id, expiresAt, updatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrSessionNotFound
	}

	return nil
}

// DeleteSession is idempotent: an unknown token is not an error.
func (r *PostgresRepo) DeleteSession(ctx context.Context, token string) error {
	const op = "storage.postgres.DeleteSession"

	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1;`, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteUserSession removes a session only when it belongs to userID.
func (r *PostgresRepo) DeleteUserSession(ctx context.Context, userID, token string) error {
	const op = "storage.postgres.DeleteUserSession"

	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1 AND token = $2;`, userID, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrSessionNotFound
	}

	return nil
}

func (r *PostgresRepo) DeleteUserSessions(ctx context.Context, userID string) error {
	const op = "storage.postgres.DeleteUserSessions"

	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1;`, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.postgres.DeleteExpiredSessions"

	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1;`, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}
