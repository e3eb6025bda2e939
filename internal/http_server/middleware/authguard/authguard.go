package authguard

import (
	"context"
	"log/slog"
	"net/http"

	"finlet/internal/auth"
	resp "finlet/internal/lib/api/response"
	sl "finlet/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
)

type SessionResolver interface {
	ResolveSession(ctx context.Context, h http.Header) (*auth.Identity, error)
}

type Rejections interface {
	GuardRejected()
}

// New rejects requests without a valid session with 401 and attaches the
// identity to the context of those that have one. A failing lookup is a
// fault, not a rejection.
func New(log *slog.Logger, resolver SessionResolver, rejections Rejections) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			const op = "authguard.New"

			log := sl.FromContext(r.Context(), log).With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			id, err := resolver.ResolveSession(r.Context(), r.Header)
			if err != nil {
				log.Error("failed to resolve session", sl.Err(err))
				resp.Fault(w, r)
				return
			}

			if id == nil {
				log.Warn("unauthorized access attempt",
					slog.String("path", r.URL.Path),
					slog.String("method", r.Method),
				)

				if rejections != nil {
					rejections.GuardRejected()
				}

				resp.Unauthorized(w, r)
				return
			}

			log.Debug("authenticated request",
				slog.String("user_id", id.User.ID),
				slog.String("email", id.User.Email),
			)

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		}

		return http.HandlerFunc(fn)
	}
}
