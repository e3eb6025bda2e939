package me

import (
	"net/http"

	"finlet/internal/auth"
	resp "finlet/internal/lib/api/response"

	"github.com/go-chi/render"
)

// New godoc
// @Summary      The signed-in user and session
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  auth.Identity
// @Failure      401  {object}  response.ErrorResponse
// @Router       /api/me [get]
func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFrom(r.Context())
		if id == nil {
			resp.Unauthorized(w, r)
			return
		}

		render.JSON(w, r, id)
	}
}
