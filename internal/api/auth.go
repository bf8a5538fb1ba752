package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cookify-app/backend/internal/middleware"
	"github.com/cookify-app/backend/internal/service"
)

// sessionMaxAge matches the token lifetime, in seconds.
const sessionMaxAge = 7 * 24 * 60 * 60

// AuthHandler handles shared-password login and logout.
type AuthHandler struct {
	gate *middleware.Gate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(gate *middleware.Gate) *AuthHandler {
	return &AuthHandler{gate: gate}
}

// RegisterRoutes registers the auth routes.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
}

// Login checks the site password and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		_ = c.Error(service.NewInvalidInput("password is required"))
		return
	}

	token, err := h.gate.Authenticate(req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}

	c.SetCookie(middleware.AuthCookieName, token, sessionMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
