package recoverer_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"finlet/internal/http_server/middleware/recoverer"
	sl "finlet/internal/lib/logger"

	"github.com/stretchr/testify/assert"
)

func TestPanicIsLoggedNotLeaked(t *testing.T) {
	var buf bytes.Buffer
	log := sl.New(&buf, "production", "info")

	h := recoverer.New(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("db password is hunter2")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "hunter2")

	assert.Contains(t, buf.String(), `"msg":"unhandled fault"`)
	assert.Contains(t, buf.String(), "hunter2")
}

func TestAbortHandlerPropagates(t *testing.T) {
	h := recoverer.New(sl.New(&bytes.Buffer{}, "production", "info"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
