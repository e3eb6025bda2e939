package signup

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

type SignUpper interface {
	SignUp(ctx context.Context, in auth.SignUpInput, meta auth.ClientMeta) (*auth.Identity, error)
	SetSessionCookie(w http.ResponseWriter, s models.Session)
}

type Request = auth.SignUpInput

type Response struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// New godoc
// @Summary      Sign up with email and password
// @Description  Creates the account, opens a session and sets the session cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      Request  true  "Sign-up payload"
// @Success      200      {object}  Response
// @Failure      400      {object}  response.ErrorResponse
// @Failure      409      {object}  response.ErrorResponse
// @Failure      500      {object}  response.ErrorResponse
// @Router       /api/auth/sign-up/email [post]
func New(log *slog.Logger, svc SignUpper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.signup.New"

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

		id, err := svc.SignUp(r.Context(), req, auth.MetaFromRequest(r))
		if err != nil {
			var vErr *auth.ValidationError
			switch {
			case errors.As(err, &vErr):
				log.Info("invalid request", sl.Err(err))
				resp.JSON(w, r, http.StatusBadRequest, resp.InvalidFields(vErr.Fields))
			case errors.Is(err, auth.ErrCredentialConflict):
				resp.JSON(w, r, http.StatusConflict, resp.ErrorWithCode("User already exists", "USER_ALREADY_EXISTS"))
			default:
				log.Error("failed to sign up", sl.Err(err))
				resp.Fault(w, r)
			}

			return
		}

		svc.SetSessionCookie(w, id.Session)

		ResponseOK(w, r, id)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, id *auth.Identity) {
	render.JSON(w, r, Response{
		Token: id.Session.Token,
		User:  id.User,
	})
}
