// Package shortcircuit holds middlewares that answer some requests
// themselves and stop the chain.
package shortcircuit

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// Favicon answers /favicon.ico with an SVG drawing of emoji.
func Favicon(emoji string) func(next http.Handler) http.Handler {
	svg := []byte(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100"><text y=".9em" font-size="90">%s</text></svg>`,
		emoji,
	))

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/favicon.ico" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Content-Type", "image/svg+xml")
			w.Header().Set("Cache-Control", "public, max-age=86400")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(svg)
		}

		return http.HandlerFunc(fn)
	}
}

// Delegate hands requests under prefix with one of methods to h. Nothing
// after this middleware runs for them.
func Delegate(prefix string, h http.Handler, methods ...string) func(next http.Handler) http.Handler {
	prefix = strings.TrimSuffix(prefix, "/")

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			matched := path == prefix || strings.HasPrefix(path, prefix+"/")

			if matched && slices.Contains(methods, r.Method) {
				h.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}
