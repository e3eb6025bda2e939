package postgres

import (
	"context"
	"fmt"

	"finlet/internal/storage/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// Migrate runs the embedded goose migrations against databaseURL.
func Migrate(ctx context.Context, databaseURL, command string) error {
	const op = "storage.postgres.Migrate"

	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	db, err := goose.OpenDBWithDriver("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("%s: failed to open db: %w", op, err)
	}
	defer db.Close()

	switch command {
	case MigrateUp:
		err = goose.UpContext(ctx, db, ".")
	case MigrateDown:
		err = goose.DownContext(ctx, db, ".")
	case MigrateStatus:
		err = goose.StatusContext(ctx, db, ".")
	default:
		return fmt.Errorf("%s: unknown command %q", op, command)
	}
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, command, err)
	}

	return nil
}
