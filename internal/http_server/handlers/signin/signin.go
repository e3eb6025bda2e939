package signin

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
)

type SignInner interface {
	SignIn(ctx context.Context, in auth.SignInInput, meta auth.ClientMeta) (*auth.Identity, error)
	SetSessionCookie(w http.ResponseWriter, s models.Session)
}

type Request = auth.SignInInput

type Response struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// New godoc
// @Summary      Sign in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      Request  true  "Credentials"
// @Success      200      {object}  Response
// @Failure      400      {object}  response.ErrorResponse
// @Failure      401      {object}  response.ErrorResponse
// @Router       /api/auth/sign-in/email [post]
func New(log *slog.Logger, svc SignInner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.signin.New"

		log := sl.FromContext(r.Context(), log).With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Info("failed to decode request body", sl.Err(err))

			resp.JSON(w, r, http.StatusBadRequest, resp.Error("Failed to decode request"))
			return
		}

		id, err := svc.SignIn(r.Context(), req, auth.MetaFromRequest(r))
		if err != nil {
			var vErr *auth.ValidationError
			switch {
			case errors.As(err, &vErr):
				resp.JSON(w, r, http.StatusBadRequest, resp.InvalidFields(vErr.Fields))
			case errors.Is(err, auth.ErrInvalidCredentials):
				resp.JSON(w, r, http.StatusUnauthorized, resp.ErrorWithCode("Invalid email or password", "INVALID_EMAIL_OR_PASSWORD"))
			default:
				log.Error("failed to sign in", sl.Err(err))
				resp.Fault(w, r)
			}

			return
		}

		svc.SetSessionCookie(w, id.Session)

		render.JSON(w, r, Response{
			Token: id.Session.Token,
			User:  id.User,
		})
	}
}
