// Package docs serves the API description and the reference UIs built on it.
package docs

import (
	"log/slog"
	"net/http"

	resp "finlet/internal/lib/api/response"
	sl "finlet/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/swaggo/swag"
)

// SpecPath is where Spec is mounted; the reference pages load it from here.
const SpecPath = "/doc"

// Spec writes the registered Swagger document.
func Spec(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.docs.Spec"

		doc, err := swag.ReadDoc()
		if err != nil {
			sl.FromContext(r.Context(), log).Error("failed to read api description",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				sl.Err(err),
			)
			resp.Fault(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(doc))
	}
}

const referencePage = `<!doctype html>
<html>
  <head>
    <title>Finlet API Reference</title>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
  </head>
  <body>
    <script id="api-reference" data-url="` + SpecPath + `"></script>
    <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
  </body>
</html>
`

// Reference serves the Scalar reference page.
func Reference() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(referencePage))
	}
}
