package account

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"finlet/internal/auth"
	resp "finlet/internal/lib/api/response"
	sl "finlet/internal/lib/logger"
	"finlet/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Lister interface {
	ListAccounts(ctx context.Context, userID string) ([]models.Account, error)
}

type Deleter interface {
	DeleteUser(ctx context.Context, userID, password string) error
	ClearSessionCookie(w http.ResponseWriter)
}

// List godoc
// @Summary      Linked credentials of the current user
// @Tags         auth
// @Produce      json
// @Success      200  {array}   models.Account
// @Failure      401  {object}  response.ErrorResponse
// @Router       /api/auth/list-accounts [get]
func List(log *slog.Logger, lister Lister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.account.List"

		id := auth.IdentityFrom(r.Context())
		if id == nil {
			resp.Unauthorized(w, r)
			return
		}

		accounts, err := lister.ListAccounts(r.Context(), id.User.ID)
		if err != nil {
			sl.FromContext(r.Context(), log).Error("failed to list accounts",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				sl.Err(err),
			)
			resp.Fault(w, r)
			return
		}

		render.JSON(w, r, accounts)
	}
}

type DeleteRequest struct {
	Password string `json:"password" validate:"required"`
}

// Delete godoc
// @Summary      Delete the current user
// @Description  Requires the password again. Removes sessions, credentials and categories.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      DeleteRequest  true  "Password"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.ErrorResponse
// @Failure      401      {object}  response.ErrorResponse
// @Router       /api/auth/delete-user [post]
func Delete(log *slog.Logger, validate *validator.Validate, deleter Deleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.account.Delete"

		log := sl.FromContext(r.Context(), log).With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := auth.IdentityFrom(r.Context())
		if id == nil {
			resp.Unauthorized(w, r)
			return
		}

		var req DeleteRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Info("failed to decode request body", sl.Err(err))

			resp.JSON(w, r, http.StatusBadRequest, resp.Error("Failed to decode request"))
			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			resp.JSON(w, r, http.StatusBadRequest, resp.ValidationError(validateErr))
			return
		}

		if err := deleter.DeleteUser(r.Context(), id.User.ID, req.Password); err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidCredentials):
				resp.JSON(w, r, http.StatusUnauthorized, resp.ErrorWithCode("Invalid password", "INVALID_PASSWORD"))
			case errors.Is(err, auth.ErrUnauthorized):
				resp.Unauthorized(w, r)
			default:
				log.Error("failed to delete user", sl.Err(err))
				resp.Fault(w, r)
			}

			return
		}

		deleter.ClearSessionCookie(w)

		render.JSON(w, r, resp.OK())
	}
}
