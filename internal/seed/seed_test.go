package seed_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"finlet/internal/auth"
	"finlet/internal/models"
	"finlet/internal/seed"
	"finlet/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, store *memory.Storage, id string) {
	t.Helper()

	now := time.Now()
	err := store.CreateUserWithAccount(context.Background(),
		models.User{ID: id, Email: id + "@x.com", CreatedAt: now, UpdatedAt: now},
		models.Account{ID: "acc-" + id, AccountID: id, ProviderID: auth.CredentialProvider, UserID: id},
		models.Session{ID: "sess-" + id, Token: "tok-" + id, UserID: id, ExpiresAt: now.Add(time.Hour)},
	)
	require.NoError(t, err)
}

func TestSeedDefaults_Idempotent(t *testing.T) {
	store := memory.New()
	createUser(t, store, "u1")
	s := seed.New(slog.New(slog.DiscardHandler), store)
	ctx := context.Background()

	require.NoError(t, s.SeedDefaults(ctx, "u1"))
	require.NoError(t, s.SeedDefaults(ctx, "u1"))

	categories, err := store.CategoriesByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, categories, len(seed.DefaultCategories))

	names := make(map[string]bool, len(categories))
	for _, c := range categories {
		assert.True(t, c.IsDefault)
		assert.False(t, names[c.Name], "duplicate %q", c.Name)
		names[c.Name] = true
	}
}

func TestSeedDefaults_KeepsUserEdits(t *testing.T) {
	store := memory.New()
	createUser(t, store, "u1")
	ctx := context.Background()

	require.NoError(t, store.CreateCategory(ctx, models.Category{
		ID: "custom", UserID: "u1", Name: "Salary", Kind: models.CategoryIncome, Color: "#000000", Icon: "x",
	}))

	s := seed.New(slog.New(slog.DiscardHandler), store)
	require.NoError(t, s.SeedDefaults(ctx, "u1"))

	categories, err := store.CategoriesByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, categories, len(seed.DefaultCategories))

	for _, c := range categories {
		if c.Name == "Salary" {
			assert.Equal(t, "custom", c.ID)
		}
	}
}

type failingSaver struct{}

func (failingSaver) UpsertCategories(context.Context, []models.Category) (int64, error) {
	return 0, errors.New("db down")
}

func TestHook_WrapsSeedingFailure(t *testing.T) {
	s := seed.New(slog.New(slog.DiscardHandler), failingSaver{})

	err := s.Hook()(context.Background(), auth.Identity{User: models.User{ID: "u1"}})
	assert.ErrorIs(t, err, auth.ErrSeeding)
}

func TestDefaultCategories_Valid(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range seed.DefaultCategories {
		assert.False(t, seen[d.Name])
		seen[d.Name] = true
		assert.Contains(t, []string{models.CategoryIncome, models.CategoryExpense}, d.Kind)
		assert.Regexp(t, `^#[0-9a-f]{6}$`, d.Color)
	}
}
