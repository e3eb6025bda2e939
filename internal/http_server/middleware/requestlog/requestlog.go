package requestlog

import (
	"log/slog"
	"net/http"
	"time"

	sl "finlet/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
)

// New binds a logger carrying the request id to the request context and logs
// one line when the request completes.
func New(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(slog.String("component", "middleware/requestlog"))

		fn := func(w http.ResponseWriter, r *http.Request) {
			reqLog := log.With(slog.String("request_id", middleware.GetReqID(r.Context())))

			entry := reqLog.With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				entry.Info("request completed",
					slog.Int("status", ww.Status()),
					slog.Int("bytes", ww.BytesWritten()),
					slog.String("duration", time.Since(start).String()),
				)
			}()

			next.ServeHTTP(ww, r.WithContext(sl.WithLogger(r.Context(), reqLog)))
		}

		return http.HandlerFunc(fn)
	}
}
