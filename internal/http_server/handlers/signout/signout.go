package signout

import (
	"context"
	"log/slog"
	"net/http"

	"finlet/internal/auth"
	resp "finlet/internal/lib/api/response"
	sl "finlet/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type SignOuter interface {
	SignOut(ctx context.Context, token string) error
	ClearSessionCookie(w http.ResponseWriter)
}

// New godoc
// @Summary      Sign out
// @Description  Deletes the current session. Succeeds without a session too.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/auth/sign-out [post]
func New(log *slog.Logger, svc SignOuter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.signout.New"

		log := sl.FromContext(r.Context(), log).With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if err := svc.SignOut(r.Context(), auth.TokenFromHeader(r.Header)); err != nil {
			log.Error("failed to sign out", sl.Err(err))
			resp.Fault(w, r)
			return
		}

		svc.ClearSessionCookie(w)

		render.JSON(w, r, resp.OK())
	}
}
