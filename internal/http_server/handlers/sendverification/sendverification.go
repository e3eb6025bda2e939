package sendverification

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"finlet/internal/auth"
	resp "finlet/internal/lib/api/response"
	sl "finlet/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Sender interface {
	SendVerificationEmail(ctx context.Context, in auth.SendVerificationInput) error
}

type Request = auth.SendVerificationInput

// New godoc
// @Summary      Send an email verification link
// @Description  Always answers 200 for well-formed input so addresses cannot be probed.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      Request  true  "Email address"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.ErrorResponse
// @Failure      429      {object}  response.ErrorResponse
// @Router       /api/auth/send-verification-email [post]
func New(log *slog.Logger, svc Sender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sendverification.New"

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

		if err := svc.SendVerificationEmail(r.Context(), req); err != nil {
			var vErr *auth.ValidationError
			if errors.As(err, &vErr) {
				resp.JSON(w, r, http.StatusBadRequest, resp.InvalidFields(vErr.Fields))
				return
			}

			log.Error("failed to send verification email", sl.Err(err))
			resp.Fault(w, r)
			return
		}

		render.JSON(w, r, resp.OK())
	}
}
