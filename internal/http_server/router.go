// Package http_server assembles the request pipeline.
package http_server

import (
	"log/slog"
	"net/http"

	"finlet/internal/http_server/authhandler"
	"finlet/internal/http_server/handlers/categories"
	"finlet/internal/http_server/handlers/docs"
	"finlet/internal/http_server/handlers/health"
	"finlet/internal/http_server/handlers/me"
	"finlet/internal/http_server/middleware/authguard"
	"finlet/internal/http_server/middleware/ratelimit"
	"finlet/internal/http_server/middleware/recoverer"
	"finlet/internal/http_server/middleware/requestlog"
	"finlet/internal/http_server/middleware/shortcircuit"
	resp "finlet/internal/lib/api/response"
	"finlet/internal/lib/validate"
	"finlet/internal/metrics"

	_ "finlet/internal/docs"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Store interface {
	health.Pinger
	categories.Store
}

type Deps struct {
	Log            *slog.Logger
	Auth           authhandler.Service
	Store          Store
	Metrics        *metrics.Metrics
	Limits         *ratelimit.Limits
	AllowedOrigins []string
	// Routes mounts additional unguarded routes.
	Routes func(r chi.Router)
}

// NewRouter wires the middlewares in their fixed order. Requests delegated to
// the auth handler and the favicon never reach the routes below them.
func NewRouter(d Deps) http.Handler {
	log := d.Log

	m := d.Metrics
	if m == nil {
		m = metrics.New()
	}

	authHandler := authhandler.New(log, d.Auth, authhandler.Options{
		Limits:     d.Limits,
		Rejections: m,
	})

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(echoRequestID)
	router.Use(m.Middleware)
	router.Use(recoverer.New(log))
	router.Use(middleware.RealIP)
	router.Use(shortcircuit.Favicon("📝"))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(shortcircuit.Delegate(authhandler.Prefix, authHandler, http.MethodGet, http.MethodPost))
	router.Use(requestlog.New(log))

	router.NotFound(resp.NotFound)
	router.MethodNotAllowed(resp.MethodNotAllowed)

	router.Get(docs.SpecPath, docs.Spec(log))
	router.Get("/reference", docs.Reference())
	router.Get("/reference/swagger/*", httpSwagger.Handler(httpSwagger.URL(docs.SpecPath)))
	router.Get("/healthz", health.New(log, d.Store))
	router.Method(http.MethodGet, "/metrics", m.Handler())

	router.Group(func(r chi.Router) {
		r.Use(authguard.New(log, d.Auth, m))

		r.Get("/api/me", me.New())

		r.Route("/api/categories", func(r chi.Router) {
			r.Get("/", categories.List(log, d.Store))
			r.Post("/", categories.Create(log, validate.New(), d.Store))
			r.Delete("/{id}", categories.Delete(log, d.Store))
		})
	})

	if d.Routes != nil {
		d.Routes(router)
	}

	return router
}

func echoRequestID(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set("X-Request-Id", id)
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
