package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"socialguard/internal/requestid"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newRouter(logger *zap.Logger) (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(RequestID(), Logger(logger), CORS())
	r.GET("/ping", func(c *gin.Context) {
		seen = requestid.From(c.Request.Context())
		c.String(http.StatusOK, "pong")
	})
	return r, &seen
}

func TestRequestID_Generated(t *testing.T) {
	r, seen := newRouter(zap.NewNop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(requestid.Header)
	require.Len(t, id, 36)
	require.Equal(t, id, *seen)
}

func TestRequestID_Propagated(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r, seen := newRouter(zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestid.Header, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, "abc-123", w.Header().Get(requestid.Header))
	require.Equal(t, "abc-123", *seen)

	entries := logs.FilterMessage("Request handled").All()
	require.Len(t, entries, 1)
	require.Equal(t, "abc-123", entries[0].ContextMap()["request_id"])
	require.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])
}

func TestCORS_Preflight(t *testing.T) {
	r, _ := newRouter(zap.NewNop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/ping", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
