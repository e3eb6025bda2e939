package requestlog_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finlet/internal/http_server/middleware/requestlog"
	sl "finlet/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindsRequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	log := sl.New(&buf, "production", "info")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sl.FromContext(r.Context(), nil).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})

	h := middleware.RequestID(requestlog.New(log)(inner))

	req := httptest.NewRequest(http.MethodGet, "/tea", nil)
	req.Header.Set("X-Request-Id", "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var handlerLine, doneLine map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &handlerLine))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &doneLine))

	assert.Equal(t, "inside handler", handlerLine["msg"])
	assert.Equal(t, "req-42", handlerLine["request_id"])

	assert.Equal(t, "request completed", doneLine["msg"])
	assert.Equal(t, "req-42", doneLine["request_id"])
	assert.EqualValues(t, http.StatusTeapot, doneLine["status"])
	assert.Equal(t, "/tea", doneLine["path"])
}
