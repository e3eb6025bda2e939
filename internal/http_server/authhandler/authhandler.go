// Package authhandler is the HTTP surface of the session authority. The
// request pipeline hands it everything under Prefix.
package authhandler

import (
	"context"
	"log/slog"
	"net/http"

	"finlet/internal/auth"
	"finlet/internal/http_server/handlers/account"
	"finlet/internal/http_server/handlers/ok"
	"finlet/internal/http_server/handlers/sendverification"
	"finlet/internal/http_server/handlers/session"
	"finlet/internal/http_server/handlers/signin"
	"finlet/internal/http_server/handlers/signout"
	"finlet/internal/http_server/handlers/signup"
	"finlet/internal/http_server/handlers/verify"
	"finlet/internal/http_server/middleware/authguard"
	"finlet/internal/http_server/middleware/ratelimit"
	"finlet/internal/http_server/middleware/requestlog"
	resp "finlet/internal/lib/api/response"
	"finlet/internal/lib/validate"
	"finlet/internal/models"

	"github.com/go-chi/chi"
)

const Prefix = "/api/auth"

// Service is everything the auth routes need from the authority.
type Service interface {
	signup.SignUpper
	signin.SignInner
	signout.SignOuter
	sendverification.Sender
	verify.EmailVerifier
	session.AllRevoker
	session.OthersRevoker
	account.Lister
	account.Deleter

	ResolveSession(ctx context.Context, h http.Header) (*auth.Identity, error)
	ListSessions(ctx context.Context, userID string) ([]models.Session, error)
	RevokeSession(ctx context.Context, userID, token string) error
}

type Options struct {
	Limits     *ratelimit.Limits
	Rejections authguard.Rejections
}

func New(log *slog.Logger, svc Service, opts Options) http.Handler {
	log = log.With(slog.String("component", "authhandler"))

	limits := opts.Limits
	if limits == nil {
		limits = ratelimit.New(nil)
	}

	guard := authguard.New(log, svc, opts.Rejections)

	validate := validate.New()

	router := chi.NewRouter()
	router.Use(requestlog.New(log))
	router.NotFound(resp.NotFound)
	router.MethodNotAllowed(resp.MethodNotAllowed)

	router.Route(Prefix, func(r chi.Router) {
		r.With(limits.SignUp()).Post("/sign-up/email", signup.New(log, svc))
		r.With(limits.SignIn()).Post("/sign-in/email", signin.New(log, svc))
		r.Post("/sign-out", signout.New(log, svc))
		r.Get("/get-session", session.Get(log, svc))
		r.With(limits.SendVerificationEmail()).Post("/send-verification-email", sendverification.New(log, svc))
		r.With(limits.VerifyEmail()).Get("/verify-email", verify.New(log, svc))
		r.Get("/ok", ok.New())

		r.Group(func(r chi.Router) {
			r.Use(guard)

			r.Get("/list-sessions", session.List(log, svc))
			r.Post("/revoke-session", session.Revoke(log, validate, svc))
			r.Post("/revoke-sessions", session.RevokeAll(log, svc))
			r.Post("/revoke-other-sessions", session.RevokeOthers(log, svc))
			r.Get("/list-accounts", account.List(log, svc))
			r.Post("/delete-user", account.Delete(log, validate, svc))
		})
	})

	return router
}
