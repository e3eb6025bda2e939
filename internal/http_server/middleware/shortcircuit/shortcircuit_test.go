package shortcircuit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func marker(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(name))
	})
}

func TestFavicon(t *testing.T) {
	h := Favicon("📝")(marker("next"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "📝")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	assert.Equal(t, "next", rec.Body.String())
}

func TestDelegate(t *testing.T) {
	h := Delegate("/api/auth", marker("auth"), http.MethodGet, http.MethodPost)(marker("next"))

	tests := []struct {
		method, path, want string
	}{
		{http.MethodPost, "/api/auth/sign-up/email", "auth"},
		{http.MethodGet, "/api/auth/get-session", "auth"},
		{http.MethodGet, "/api/auth", "auth"},
		{http.MethodDelete, "/api/auth/sign-out", "next"},
		{http.MethodGet, "/api/authors", "next"},
		{http.MethodGet, "/api/me", "next"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}
