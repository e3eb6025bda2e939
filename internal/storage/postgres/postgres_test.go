package postgres_test

import (
	"context"
	"testing"
	"time"

	"finlet/internal/models"
	"finlet/internal/storage"
	"finlet/internal/storage/postgres"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*postgres.PostgresRepo, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return postgres.NewWithDB(mock), mock
}

func signUpRows() (models.User, models.Account, models.Session) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	hash := "$2a$04$hash"

	user := models.User{ID: "u1", Name: "Ada", Email: "ada@example.com", CreatedAt: now, UpdatedAt: now}
	account := models.Account{
		ID: "a1", AccountID: "u1", ProviderID: "credential", UserID: "u1",
		Password: &hash, CreatedAt: now, UpdatedAt: now,
	}
	session := models.Session{
		ID: "s1", Token: "tok", UserID: "u1",
		ExpiresAt: now.Add(7 * 24 * time.Hour), CreatedAt: now, UpdatedAt: now,
	}

	return user, account, session
}

func TestCreateUserWithAccount(t *testing.T) {
	repo, mock := newRepo(t)
	user, account, session := signUpRows()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Name, user.Email, false, user.Image, user.CreatedAt, user.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(account.ID, account.AccountID, account.ProviderID, account.UserID, account.Password, account.CreatedAt, account.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(session.ID, session.ExpiresAt, session.Token, session.CreatedAt, session.UpdatedAt, session.IPAddress, session.UserAgent, session.UserID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.CreateUserWithAccount(context.Background(), user, account, session)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserWithAccountDuplicateEmail(t *testing.T) {
	repo, mock := newRepo(t)
	user, account, session := signUpRows()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	mock.ExpectRollback()

	err := repo.CreateUserWithAccount(context.Background(), user, account, session)

	assert.ErrorIs(t, err, storage.ErrUserExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserWithAccountSessionFailureRollsBack(t *testing.T) {
	repo, mock := newRepo(t)
	user, account, session := signUpRows()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO accounts").WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO sessions").WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := repo.CreateUserWithAccount(context.Background(), user, account, session)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionByTokenNotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery("FROM sessions WHERE token").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "expires_at", "token", "created_at", "updated_at", "ip_address", "user_agent", "user_id"}))

	_, err := repo.SessionByToken(context.Background(), "missing")

	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSessionIsIdempotent(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec("DELETE FROM sessions WHERE token").
		WithArgs("gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.DeleteSession(context.Background(), "gone"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserSessionNotOwned(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec("DELETE FROM sessions WHERE user_id").
		WithArgs("u2", "tok").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteUserSession(context.Background(), "u2", "tok")

	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExpiredSessions(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectExec("DELETE FROM sessions WHERE expires_at").
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := repo.DeleteExpiredSessions(context.Background(), now)

	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCategoryDuplicate(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec("INSERT INTO categories").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.CreateCategory(context.Background(), models.Category{ID: "c1", UserID: "u1", Name: "Pets"})

	assert.ErrorIs(t, err, storage.ErrCategoryExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCategoryNotOwned(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec("DELETE FROM categories").
		WithArgs("u2", "c1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteCategory(context.Background(), "u2", "c1")

	assert.ErrorIs(t, err, storage.ErrCategoryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoriesByUser(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"id", "user_id", "name", "kind", "color", "icon", "is_default", "created_at", "updated_at"}).
		AddRow("c1", "u1", "Salary", models.CategoryIncome, "#22c55e", "briefcase", true, now, now).
		AddRow("c2", "u1", "Pets", models.CategoryExpense, "#a855f7", "paw", false, now, now)

	mock.ExpectQuery("FROM categories").WithArgs("u1").WillReturnRows(rows)

	got, err := repo.CategoriesByUser(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Salary", got[0].Name)
	assert.True(t, got[0].IsDefault)
	assert.Equal(t, "paw", got[1].Icon)
	assert.NoError(t, mock.ExpectationsWereMet())
}
