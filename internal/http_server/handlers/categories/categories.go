// Package categories serves the signed-in user's income and expense categories.
package categories

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finlet/internal/auth"
	resp "finlet/internal/lib/api/response"
	sl "finlet/internal/lib/logger"
	"finlet/internal/models"
	"finlet/internal/storage"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Store interface {
	CategoriesByUser(ctx context.Context, userID string) ([]models.Category, error)
	CreateCategory(ctx context.Context, c models.Category) error
	DeleteCategory(ctx context.Context, userID, id string) error
}

type Request struct {
	Name  string `json:"name" validate:"required,min=1,max=64"`
	Kind  string `json:"kind" validate:"required,oneof=income expense"`
	Color string `json:"color" validate:"required,hexcolor"`
	Icon  string `json:"icon" validate:"max=32"`
}

// List godoc
// @Summary      Categories of the current user
// @Tags         categories
// @Produce      json
// @Success      200  {array}   models.Category
// @Failure      401  {object}  response.ErrorResponse
// @Router       /api/categories [get]
func List(log *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.categories.List"

		id := auth.IdentityFrom(r.Context())
		if id == nil {
			resp.Unauthorized(w, r)
			return
		}

		categories, err := store.CategoriesByUser(r.Context(), id.User.ID)
		if err != nil {
			sl.FromContext(r.Context(), log).Error("failed to list categories",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				sl.Err(err),
			)
			resp.Fault(w, r)
			return
		}

		if categories == nil {
			categories = []models.Category{}
		}

		render.JSON(w, r, categories)
	}
}

// Create godoc
// @Summary      Add a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        request  body      Request  true  "Category"
// @Success      201      {object}  models.Category
// @Failure      400      {object}  response.ErrorResponse
// @Failure      401      {object}  response.ErrorResponse
// @Failure      409      {object}  response.ErrorResponse
// @Router       /api/categories [post]
func Create(log *slog.Logger, validate *validator.Validate, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.categories.Create"

		log := sl.FromContext(r.Context(), log).With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := auth.IdentityFrom(r.Context())
		if id == nil {
			resp.Unauthorized(w, r)
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Info("failed to decode request body", sl.Err(err))

			resp.JSON(w, r, http.StatusBadRequest, resp.Error("Failed to decode request"))
			return
		}

		req.Name = strings.TrimSpace(req.Name)

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Info("invalid request", sl.Err(err))

			resp.JSON(w, r, http.StatusBadRequest, resp.ValidationError(validateErr))
			return
		}

		now := time.Now()
		c := models.Category{
			ID:        uuid.NewString(),
			UserID:    id.User.ID,
			Name:      req.Name,
			Kind:      req.Kind,
			Color:     strings.ToLower(req.Color),
			Icon:      req.Icon,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := store.CreateCategory(r.Context(), c); err != nil {
			if errors.Is(err, storage.ErrCategoryExists) {
				resp.JSON(w, r, http.StatusConflict, resp.ErrorWithCode("Category already exists", "CATEGORY_ALREADY_EXISTS"))
				return
			}

			log.Error("failed to create category", sl.Err(err))
			resp.Fault(w, r)
			return
		}

		log.Info("category created", slog.String("category_id", c.ID))

		resp.JSON(w, r, http.StatusCreated, c)
	}
}

// Delete godoc
// @Summary      Remove a category
// @Tags         categories
// @Produce      json
// @Param        id   path      string  true  "Category id"
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.ErrorResponse
// @Failure      404  {object}  response.ErrorResponse
// @Router       /api/categories/{id} [delete]
func Delete(log *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.categories.Delete"

		id := auth.IdentityFrom(r.Context())
		if id == nil {
			resp.Unauthorized(w, r)
			return
		}

		categoryID := chi.URLParam(r, "id")

		if err := store.DeleteCategory(r.Context(), id.User.ID, categoryID); err != nil {
			if errors.Is(err, storage.ErrCategoryNotFound) {
				resp.JSON(w, r, http.StatusNotFound, resp.Error("Category not found"))
				return
			}

			sl.FromContext(r.Context(), log).Error("failed to delete category",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				sl.Err(err),
			)
			resp.Fault(w, r)
			return
		}

		render.JSON(w, r, resp.OK())
	}
}
