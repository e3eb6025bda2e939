package postgres

import (
	"context"
	"fmt"

	"finlet/internal/models"
	"finlet/internal/storage"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

const categoryColumns = `id, user_id, name, kind, color, icon, is_default, created_at, updated_at`

// UpsertCategories inserts the given rows, skipping any (user_id, name) pair
// that already exists. It returns the number of rows actually inserted.
func (r *PostgresRepo) UpsertCategories(ctx context.Context, categories []models.Category) (int64, error) {
	const op = "storage.postgres.UpsertCategories"

	if len(categories) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, c := range categories {
		batch.Queue(`
			INSERT INTO categories (id, user_id, name, kind, color, icon, is_default, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (user_id, name) DO NOTHING;
		`, c.ID, c.UserID, c.Name, c.Kind, c.Color, c.Icon, c.IsDefault, c.CreatedAt, c.UpdatedAt)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	results := tx.SendBatch(ctx, batch)

	var inserted int64
	for range categories {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		inserted += tag.RowsAffected()
	}

	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%s: failed to commit: %w", op, err)
	}

	return inserted, nil
}

func (r *PostgresRepo) CategoriesByUser(ctx context.Context, userID string) ([]models.Category, error) {
	const op = "storage.postgres.CategoriesByUser"

	var categories []models.Category
	err := pgxscan.Select(ctx, r.db, &categories, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE user_id = $1
		ORDER BY kind, name;
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return categories, nil
}

func (r *PostgresRepo) CreateCategory(ctx context.Context, c models.Category) error {
	const op = "storage.postgres.CreateCategory"

	_, err := r.db.Exec(ctx, `
		INSERT INTO categories (id, user_id, name, kind, color, icon, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`, c.ID, c.UserID, c.Name, c.Kind, c.Color, c.Icon, c.IsDefault, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrCategoryExists
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) DeleteCategory(ctx context.Context, userID, id string) error {
	const op = "storage.postgres.DeleteCategory"

	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE user_id = $1 AND id = $2;`, userID, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrCategoryNotFound
	}

	return nil
}
