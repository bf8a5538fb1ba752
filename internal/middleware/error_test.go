package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookify-app/backend/internal/service"
)

func performWithError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(err)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/boom", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestErrorHandlerStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{service.NewInvalidInput("bad input"), http.StatusBadRequest},
		{service.NewNotFound("missing"), http.StatusNotFound},
		{service.NewParse("unreadable", nil), http.StatusInternalServerError},
		{service.NewRateLimited("throttled"), http.StatusTooManyRequests},
		{service.NewUpstream("upstream broke", 500, "boom"), http.StatusBadGateway},
		{fmt.Errorf("plain error"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		w := performWithError(t, tt.err)
		assert.Equal(t, tt.status, w.Code, "error %v", tt.err)
	}
}

func TestErrorHandlerPayload(t *testing.T) {
	w := performWithError(t, service.NewUpstream("oEmbed lookup failed", 500, "boom"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "oEmbed lookup failed", resp.Error)
	assert.Equal(t, "status 500: boom", resp.Details)
}

func TestErrorHandlerMatchesWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("resolving post: %w", service.NewNotFound("post not found"))
	w := performWithError(t, wrapped)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorHandlerKeepsWrittenResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/half", func(c *gin.Context) {
		c.JSON(http.StatusTeapot, gin.H{"status": "already sent"})
		_ = c.Error(fmt.Errorf("late error"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/half", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
