package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestID_Generated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		seen = RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, seen)
}

func TestRequestID_Propagated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/ok", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.NotEmpty(t, fields["request_id"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
}
