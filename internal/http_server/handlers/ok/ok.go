package ok

import (
	"net/http"

	resp "finlet/internal/lib/api/response"

	"github.com/go-chi/render"
)

// New godoc
// @Summary      Auth handler liveness
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/auth/ok [get]
func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, resp.OK())
	}
}
