package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cookify-app/backend/internal/service"
)

// ErrorResponse is the JSON error payload shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler maps errors attached by handlers to a JSON error response
// with the status of their kind. The technical detail is logged; the caller
// gets the short message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		log.Printf("[HTTP] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)

		if c.Writer.Written() {
			return
		}

		resp := ErrorResponse{Error: "request failed"}
		var svcErr *service.Error
		if errors.As(err, &svcErr) {
			resp.Error = svcErr.Msg
			resp.Details = svcErr.Detail
		}
		c.JSON(statusFor(err), resp)
	}
}

func statusFor(err error) int {
	switch service.KindOf(err) {
	case service.KindInvalidInput:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindParse:
		return http.StatusInternalServerError
	case service.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}
