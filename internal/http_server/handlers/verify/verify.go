package verify

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

type EmailVerifier interface {
	VerifyEmail(ctx context.Context, token string) (models.User, error)
}

type Response struct {
	resp.Response
	User models.User `json:"user"`
}

// New godoc
// @Summary      Confirm an email address
// @Tags         auth
// @Produce      json
// @Param        token  query     string  true  "Token from the verification link"
// @Success      200    {object}  Response
// @Failure      400    {object}  response.ErrorResponse
// @Router       /api/auth/verify-email [get]
func New(log *slog.Logger, svc EmailVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verify.New"

		log := sl.FromContext(r.Context(), log).With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token := r.URL.Query().Get("token")
		if token == "" {
			resp.JSON(w, r, http.StatusBadRequest, resp.InvalidFields(map[string]string{"token": "is required"}))
			return
		}

		user, err := svc.VerifyEmail(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidVerification) {
				resp.JSON(w, r, http.StatusBadRequest, resp.ErrorWithCode("Invalid or expired token", "INVALID_TOKEN"))
				return
			}

			log.Error("failed to verify email", sl.Err(err))
			resp.Fault(w, r)
			return
		}

		log.Info("email verified", slog.String("user_id", user.ID))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			User:     user,
		})
	}
}
