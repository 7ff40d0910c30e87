package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedRouter(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-123")
		c.Next()
	})
	router.Use(GinMiddleware(log))
	return router, logs
}

func entryField(entry observer.LoggedEntry, key string) (zap.Field, bool) {
	for _, f := range entry.Context {
		if f.Key == key {
			return f, true
		}
	}
	return zap.Field{}, false
}

func TestGinMiddleware_LogsRequest(t *testing.T) {
	router, logs := newObservedRouter(t)
	router.GET("/api/v1/documents", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []string{}})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/documents?page=2", nil)
	req.Header.Set("X-User-ID", "b2f7f0f4-0000-4000-8000-000000000001")
	router.ServeHTTP(w, req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	assert.Equal(t, "HTTP Request", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/v1/documents", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, "page=2", fields["query"])
	assert.Equal(t, "b2f7f0f4-0000-4000-8000-000000000001", fields["user_id"])
}

func TestGinMiddleware_LevelFollowsStatus(t *testing.T) {
	router, logs := newObservedRouter(t)
	router.POST("/api/v1/documents/:id/certify", func(c *gin.Context) {
		c.JSON(http.StatusConflict, gin.H{"error": "CHRONOLOGY_VIOLATION"})
	})
	router.GET("/boom", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/documents/42/certify", nil)
	router.ServeHTTP(w, req)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level, "4xx logs at warn")
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level, "5xx logs at error")
}

func TestRecovery_LogsPanicAndAnswers500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("sequence allocator went sideways")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/panic", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Panic recovered", entry.Message)

	errField, ok := entryField(entry, "error")
	require.True(t, ok)
	assert.Equal(t, "sequence allocator went sideways", errField.Interface)
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns request-scoped logger", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		log := zap.NewExample()
		c.Set("logger", log)

		assert.Same(t, log, GetGinLogger(c))
	})

	t.Run("falls back to nop outside a request", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		assert.NotNil(t, GetGinLogger(c))
	})
}
