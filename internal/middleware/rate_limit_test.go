package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterFailsOpenWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Nothing listens here; every limiter check errors out.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
	})
	limiter := NewRateLimiter(client, RateLimitConfig{
		Window:    time.Minute,
		Limit:     1,
		KeyPrefix: "rate_limit:test",
	})

	router := gin.New()
	router.POST("/import", limiter.Middleware(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/import", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rate limit check failed", w.Header().Get("X-RateLimit-Error"))
}

func TestImportRateLimiterDefaults(t *testing.T) {
	limiter := NewImportRateLimiter(nil)
	assert.Equal(t, 20, limiter.config.Limit)
	assert.Equal(t, time.Hour, limiter.config.Window)
}
