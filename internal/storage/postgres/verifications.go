package postgres

import (
	"context"
	"fmt"
	"time"

	"finlet/internal/models"
	"finlet/internal/storage"

	"github.com/georgysavva/scany/v2/pgxscan"
)

func (r *PostgresRepo) CreateVerification(ctx context.Context, v models.Verification) error {
	const op = "storage.postgres.CreateVerification"

	_, err := r.db.Exec(ctx, `
		INSERT INTO verifications (id, identifier, value, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`, v.ID, v.Identifier, v.Value, v.ExpiresAt, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) VerificationByValue(ctx context.Context, value string) (models.Verification, error) {
	const op = "storage.postgres.VerificationByValue"

	var v models.Verification
	err := pgxscan.Get(ctx, r.db, &v, `
		SELECT id, identifier, value, expires_at, created_at, updated_at
		FROM verifications
		WHERE value = $1;
	`, value)
	if err != nil {
		if pgxscan.NotFound(err) {
			return models.Verification{}, storage.ErrVerificationNotFound
		}

		return models.Verification{}, fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

func (r *PostgresRepo) DeleteVerification(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteVerification"

	if _, err := r.db.Exec(ctx, `DELETE FROM verifications WHERE id = $1;`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) DeleteExpiredVerifications(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.postgres.DeleteExpiredVerifications"

	tag, err := r.db.Exec(ctx, `DELETE FROM verifications WHERE expires_at <= $1;`, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}
