package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthCookieName is the cookie carrying the signed session token.
const AuthCookieName = "cookify_auth"

// sessionTTL is how long a login lasts.
const sessionTTL = 7 * 24 * time.Hour

// Gate implements the shared-password cookie gate. Only a bcrypt hash of
// the site password is kept in memory; sessions are stateless signed
// tokens.
type Gate struct {
	passwordHash []byte
	secret       []byte
}

// NewGate creates a gate for the given site password and signing secret.
func NewGate(sitePassword, secret string) (*Gate, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(sitePassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash site password: %w", err)
	}
	return &Gate{passwordHash: hash, secret: []byte(secret)}, nil
}

// Authenticate checks the password and returns a signed session token.
func (g *Gate) Authenticate(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)); err != nil {
		return "", fmt.Errorf("invalid password")
	}

	claims := jwt.RegisteredClaims{
		Subject:   "site",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// ValidateToken checks a session token.
func (g *Gate) ValidateToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

// CookieGate protects non-API, non-asset paths behind the site password.
// API routes and static assets pass through; everything else needs a valid
// auth cookie or is sent to the login page.
func CookieGate(gate *Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") ||
			path == "/login" ||
			path == "/health" ||
			strings.HasSuffix(path, ".js") ||
			strings.HasSuffix(path, ".css") ||
			strings.HasSuffix(path, ".ico") {
			c.Next()
			return
		}

		cookie, err := c.Cookie(AuthCookieName)
		if err != nil || gate.ValidateToken(cookie) != nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Next()
	}
}
