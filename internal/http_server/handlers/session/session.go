package session

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

type Resolver interface {
	ResolveSession(ctx context.Context, h http.Header) (*auth.Identity, error)
}

type Lister interface {
	ListSessions(ctx context.Context, userID string) ([]models.Session, error)
}

type Revoker interface {
	RevokeSession(ctx context.Context, userID, token string) error
}

// Get godoc
// @Summary      Current session
// @Description  Returns the user and session, or null without a valid session.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  auth.Identity
// @Router       /api/auth/get-session [get]
func Get(log *slog.Logger, resolver Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.session.Get"

		id, err := resolver.ResolveSession(r.Context(), r.Header)
		if err != nil {
			sl.FromContext(r.Context(), log).Error("failed to resolve session",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				sl.Err(err),
			)
			resp.Fault(w, r)
			return
		}

		if id == nil {
			render.JSON(w, r, nil)
			return
		}

		render.JSON(w, r, id)
	}
}

// List godoc
// @Summary      Active sessions of the current user
// @Tags         auth
// @Produce      json
// @Success      200  {array}   models.Session
// @Failure      401  {object}  response.ErrorResponse
// @Router       /api/auth/list-sessions [get]
func List(log *slog.Logger, lister Lister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.session.List"

		id := auth.IdentityFrom(r.Context())
		if id == nil {
			resp.Unauthorized(w, r)
			return
		}

		sessions, err := lister.ListSessions(r.Context(), id.User.ID)
		if err != nil {
			sl.FromContext(r.Context(), log).Error("failed to list sessions",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				sl.Err(err),
			)
			resp.Fault(w, r)
			return
		}

		render.JSON(w, r, sessions)
	}
}

type RevokeRequest struct {
	Token string `json:"token" validate:"required"`
}

// Revoke godoc
// @Summary      Revoke one of the current user's sessions
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RevokeRequest  true  "Session token"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.ErrorResponse
// @Failure      401      {object}  response.ErrorResponse
// @Failure      404      {object}  response.ErrorResponse
// @Router       /api/auth/revoke-session [post]
func Revoke(log *slog.Logger, validate *validator.Validate, revoker Revoker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.session.Revoke"

		log := sl.FromContext(r.Context(), log).With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := auth.IdentityFrom(r.Context())
		if id == nil {
			resp.Unauthorized(w, r)
			return
		}

		var req RevokeRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Info("failed to decode request body", sl.Err(err))

			resp.JSON(w, r, http.StatusBadRequest, resp.Error("Failed to decode request"))
			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Info("invalid request", sl.Err(err))

			resp.JSON(w, r, http.StatusBadRequest, resp.ValidationError(validateErr))
			return
		}

		if err := revoker.RevokeSession(r.Context(), id.User.ID, req.Token); err != nil {
			if errors.Is(err, auth.ErrSessionNotFound) {
				resp.JSON(w, r, http.StatusNotFound, resp.Error("Session not found"))
				return
			}

			log.Error("failed to revoke session", sl.Err(err))
			resp.Fault(w, r)
			return
		}

		render.JSON(w, r, resp.OK())
	}
}

type AllRevoker interface {
	RevokeSessions(ctx context.Context, userID string) error
	ClearSessionCookie(w http.ResponseWriter)
}

// RevokeAll godoc
// @Summary      Sign out everywhere
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.ErrorResponse
// @Router       /api/auth/revoke-sessions [post]
func RevokeAll(log *slog.Logger, revoker AllRevoker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.session.RevokeAll"

		id := auth.IdentityFrom(r.Context())
		if id == nil {
			resp.Unauthorized(w, r)
			return
		}

		if err := revoker.RevokeSessions(r.Context(), id.User.ID); err != nil {
			sl.FromContext(r.Context(), log).Error("failed to revoke sessions",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				sl.Err(err),
			)
			resp.Fault(w, r)
			return
		}

		revoker.ClearSessionCookie(w)

		render.JSON(w, r, resp.OK())
	}
}

type OthersRevoker interface {
	RevokeOtherSessions(ctx context.Context, userID, keepToken string) (int, error)
}

type RevokeOthersResponse struct {
	resp.Response
	Revoked int `json:"revoked"`
}

// RevokeOthers godoc
// @Summary      Sign out every other device
// @Tags         auth
// @Produce      json
// @Success      200  {object}  RevokeOthersResponse
// @Failure      401  {object}  response.ErrorResponse
// @Router       /api/auth/revoke-other-sessions [post]
func RevokeOthers(log *slog.Logger, revoker OthersRevoker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.session.RevokeOthers"

		id := auth.IdentityFrom(r.Context())
		if id == nil {
			resp.Unauthorized(w, r)
			return
		}

		n, err := revoker.RevokeOtherSessions(r.Context(), id.User.ID, id.Session.Token)
		if err != nil {
			sl.FromContext(r.Context(), log).Error("failed to revoke other sessions",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				sl.Err(err),
			)
			resp.Fault(w, r)
			return
		}

		render.JSON(w, r, RevokeOthersResponse{Response: resp.OK(), Revoked: n})
	}
}
