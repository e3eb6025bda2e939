package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	resp "finlet/internal/lib/api/response"
	sl "finlet/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// New godoc
// @Summary      Readiness probe
// @Tags         ops
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      503  {object}  response.ErrorResponse
// @Router       /healthz [get]
func New(log *slog.Logger, db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.health.New"

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			sl.FromContext(r.Context(), log).Warn("database unreachable",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				sl.Err(err),
			)

			resp.JSON(w, r, http.StatusServiceUnavailable, resp.Error("Database unavailable"))
			return
		}

		render.JSON(w, r, resp.OK())
	}
}
