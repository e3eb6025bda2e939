package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
	}

	got := testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodGet, "/items/{id}", "418"))
	assert.Equal(t, float64(2), got)
}

func TestCounters(t *testing.T) {
	m := New()

	m.SignUp()
	m.SignIn("success")
	m.SignIn("failure")
	m.SignIn("failure")
	m.HookFailed("seed")
	m.GuardRejected()
	m.SessionsSwept(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.signUps))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.signIns.WithLabelValues("failure")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.hookFailures.WithLabelValues("seed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.guardRejections))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.sessionsSwept))
}

func TestHandler(t *testing.T) {
	m := New()
	m.SignUp()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "finlet_auth_sign_ups_total 1")
}
