// file: middleware/middleware_test.go
package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"gamepad-websocket/logger"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger)
	router.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/fail", func(c *gin.Context) { c.String(http.StatusInternalServerError, "nope") })
	return router
}

// Test: server errors are logged at error level
func TestRequestLogger_LogsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	router := setupTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "DEBUG: ")
	assert.Contains(t, buf.String(), "GET /ok status=200")

	buf.Reset()
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), "ERROR: ")
	assert.Contains(t, buf.String(), "GET /fail status=500")
}

// Test: the tracing wrapper still reaches the wrapped handler
func TestTracing_PassesThrough(t *testing.T) {
	called := false
	h := Tracing("gamepad-websocket")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, w.Code)
}
