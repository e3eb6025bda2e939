package memory_test

import (
	"context"
	"testing"
	"time"

	"finlet/internal/models"
	"finlet/internal/storage"
	"finlet/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *memory.Storage, id, email, token string) {
	t.Helper()

	now := time.Now()
	err := s.CreateUserWithAccount(context.Background(),
		models.User{ID: id, Email: email, CreatedAt: now, UpdatedAt: now},
		models.Account{ID: "acc-" + id, AccountID: id, ProviderID: "credential", UserID: id},
		models.Session{ID: "sess-" + id, Token: token, UserID: id, ExpiresAt: now.Add(time.Hour)},
	)
	require.NoError(t, err)
}

func TestUniqueEmail(t *testing.T) {
	s := memory.New()
	seedUser(t, s, "u1", "ada@example.com", "t1")

	err := s.CreateUserWithAccount(context.Background(),
		models.User{ID: "u2", Email: "ada@example.com"},
		models.Account{ID: "acc-u2", AccountID: "u2", ProviderID: "credential", UserID: "u2"},
		models.Session{ID: "sess-u2", Token: "t2", UserID: "u2"},
	)

	assert.ErrorIs(t, err, storage.ErrUserExists)
	assert.Equal(t, memory.Counts{Users: 1, Accounts: 1, Sessions: 1}, s.Counts())
}

func TestEmailIsCaseSensitive(t *testing.T) {
	s := memory.New()
	seedUser(t, s, "u1", "ada@example.com", "t1")
	seedUser(t, s, "u2", "Ada@example.com", "t2")

	u, err := s.UserByEmail(context.Background(), "Ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u2", u.ID)
}

func TestDeleteUserCascades(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	seedUser(t, s, "u1", "ada@example.com", "t1")
	seedUser(t, s, "u2", "grace@example.com", "t2")

	_, err := s.UpsertCategories(ctx, []models.Category{
		{ID: "c1", UserID: "u1", Name: "Food"},
		{ID: "c2", UserID: "u2", Name: "Food"},
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(ctx, "u1"))

	assert.Equal(t, memory.Counts{Users: 1, Accounts: 1, Sessions: 1, Categories: 1}, s.Counts())

	_, err = s.SessionByToken(ctx, "t1")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	_, err = s.SessionByToken(ctx, "t2")
	assert.NoError(t, err)
}

func TestUpsertCategoriesSkipsExisting(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	seedUser(t, s, "u1", "ada@example.com", "t1")

	n, err := s.UpsertCategories(ctx, []models.Category{{ID: "c1", UserID: "u1", Name: "Food", Color: "#000000"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.UpsertCategories(ctx, []models.Category{
		{ID: "c2", UserID: "u1", Name: "Food", Color: "#ffffff"},
		{ID: "c3", UserID: "u1", Name: "Rent"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := s.CategoriesByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "#000000", got[0].Color)
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	seedUser(t, s, "u1", "ada@example.com", "t1")

	n, err := s.DeleteExpiredSessions(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.DeleteExpiredSessions(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCancelledContext(t *testing.T) {
	s := memory.New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.UserByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, context.Canceled)
}
