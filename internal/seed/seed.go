// Package seed populates per-account default data after sign-up.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finlet/internal/auth"
	"finlet/internal/models"

	"github.com/google/uuid"
)

type Default struct {
	Name  string
	Kind  string
	Color string
	Icon  string
}

var DefaultCategories = []Default{
	{Name: "Food & Dining", Kind: models.CategoryExpense, Color: "#ef4444", Icon: "utensils"},
	{Name: "Transportation", Kind: models.CategoryExpense, Color: "#f97316", Icon: "car"},
	{Name: "Housing", Kind: models.CategoryExpense, Color: "#eab308", Icon: "home"},
	{Name: "Utilities", Kind: models.CategoryExpense, Color: "#84cc16", Icon: "zap"},
	{Name: "Healthcare", Kind: models.CategoryExpense, Color: "#06b6d4", Icon: "heart-pulse"},
	{Name: "Entertainment", Kind: models.CategoryExpense, Color: "#8b5cf6", Icon: "film"},
	{Name: "Shopping", Kind: models.CategoryExpense, Color: "#ec4899", Icon: "shopping-bag"},
	{Name: "Education", Kind: models.CategoryExpense, Color: "#3b82f6", Icon: "graduation-cap"},
	{Name: "Other", Kind: models.CategoryExpense, Color: "#6b7280", Icon: "circle-ellipsis"},
	{Name: "Salary", Kind: models.CategoryIncome, Color: "#22c55e", Icon: "briefcase"},
	{Name: "Freelance", Kind: models.CategoryIncome, Color: "#14b8a6", Icon: "laptop"},
	{Name: "Investments", Kind: models.CategoryIncome, Color: "#0ea5e9", Icon: "trending-up"},
}

type CategorySaver interface {
	UpsertCategories(ctx context.Context, categories []models.Category) (int64, error)
}

type Seeder struct {
	log   *slog.Logger
	saver CategorySaver
}

func New(log *slog.Logger, saver CategorySaver) *Seeder {
	return &Seeder{log: log, saver: saver}
}

// SeedDefaults inserts the default categories for userID. Rows that already
// exist for the user are left untouched, so repeated calls are harmless.
func (s *Seeder) SeedDefaults(ctx context.Context, userID string) error {
	const op = "seed.SeedDefaults"

	now := time.Now()
	rows := make([]models.Category, 0, len(DefaultCategories))
	for _, d := range DefaultCategories {
		rows = append(rows, models.Category{
			ID:        uuid.NewString(),
			UserID:    userID,
			Name:      d.Name,
			Kind:      d.Kind,
			Color:     d.Color,
			Icon:      d.Icon,
			IsDefault: true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	inserted, err := s.saver.UpsertCategories(ctx, rows)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug("default categories seeded",
		slog.String("op", op),
		slog.String("user_id", userID),
		slog.Int64("inserted", inserted),
	)

	return nil
}

// Hook adapts the seeder to the authority's after sign-up event.
func (s *Seeder) Hook() auth.AfterSignUpHook {
	return func(ctx context.Context, id auth.Identity) error {
		if err := s.SeedDefaults(ctx, id.User.ID); err != nil {
			return fmt.Errorf("%w: %w", auth.ErrSeeding, err)
		}

		return nil
	}
}
