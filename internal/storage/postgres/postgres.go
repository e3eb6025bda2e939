package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finlet/internal/models"
	"finlet/internal/storage"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PostgresRepo struct {
	db   DB
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{db: pool, pool: pool}, nil
}

// NewWithDB wraps an existing connection, used with pgxmock in tests.
func NewWithDB(db DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	if r.pool == nil {
		return nil
	}

	return r.pool.Ping(ctx)
}

// * Close closes the underlying pool.
func (r *PostgresRepo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// CreateUserWithAccount inserts the user, its credential account and first
// session in one transaction.
func (r *PostgresRepo) CreateUserWithAccount(
	ctx context.Context,
	user models.User,
	account models.Account,
	session models.Session,
) error {
	const op = "storage.postgres.CreateUserWithAccount"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, name, email, email_verified, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`, user.ID, user.Name, user.Email, user.EmailVerified, user.Image, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrUserExists
		}

		return fmt.Errorf("%s: failed to insert user: %w", op, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO accounts (id, account_id, provider_id, user_id, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`, account.ID, account.AccountID, account.ProviderID, account.UserID, account.Password, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrUserExists
		}

		return fmt.Errorf("%s: failed to insert account: %w", op, err)
	}

	if err := insertSession(ctx, tx, session); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: failed to commit: %w", op, err)
	}

	return nil
}

const userColumns = `id, name, email, email_verified, image, created_at, updated_at`

func (r *PostgresRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "storage.postgres.UserByEmail"

	var u models.User
	err := pgxscan.Get(ctx, r.db, &u, `SELECT `+userColumns+` FROM users WHERE email = $1;`, email)
	if err != nil {
		if pgxscan.NotFound(err) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (r *PostgresRepo) UserByID(ctx context.Context, id string) (models.User, error) {
	const op = "storage.postgres.UserByID"

	var u models.User
	err := pgxscan.Get(ctx, r.db, &u, `SELECT `+userColumns+` FROM users WHERE id = $1;`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (r *PostgresRepo) SetEmailVerified(ctx context.Context, userID string) error {
	const op = "storage.postgres.SetEmailVerified"

	tag, err := r.db.Exec(ctx, `
		UPDATE users SET email_verified = TRUE, updated_at = NOW()
		WHERE id = $1;
	`, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

// DeleteUser removes the user; sessions, accounts and categories go with it.
func (r *PostgresRepo) DeleteUser(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteUser"

	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

const accountColumns = `id, account_id, provider_id, user_id, access_token, refresh_token, id_token,
	access_token_expires_at, refresh_token_expires_at, scope, password, created_at, updated_at`

func (r *PostgresRepo) AccountByProvider(ctx context.Context, userID, providerID string) (models.Account, error) {
	const op = "storage.postgres.AccountByProvider"

	var a models.Account
	err := pgxscan.Get(ctx, r.db, &a, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE user_id = $1 AND provider_id = $2;
	`, userID, providerID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return models.Account{}, storage.ErrAccountNotFound
		}

		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	return a, nil
}

func (r *PostgresRepo) AccountsByUser(ctx context.Context, userID string) ([]models.Account, error) {
	const op = "storage.postgres.AccountsByUser"

	var accounts []models.Account
	err := pgxscan.Select(ctx, r.db, &accounts, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at;
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return accounts, nil
}
