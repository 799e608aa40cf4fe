package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookie carries the signed admin session.
const SessionCookie = "adminAuth"

type AuthConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	SecureCookie  bool
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueSession signs a session token for username.
func IssueSession(cfg AuthConfig, username string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "app_catalog",
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.SessionTTL)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SessionSecret))
}

// SetSessionCookie writes the session cookie on the response.
func SetSessionCookie(c *gin.Context, cfg AuthConfig, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(cfg.SessionTTL.Seconds()), "/", "", cfg.SecureCookie, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, cfg AuthConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", cfg.SecureCookie, true)
}

// Authenticated reports whether the request carries a valid admin session.
func Authenticated(c *gin.Context, cfg AuthConfig) bool {
	raw, err := c.Cookie(SessionCookie)
	if err != nil || raw == "" {
		return false
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.SessionSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return err == nil && token.Valid && claims.Role == "admin"
}

// RequireAdmin rejects requests without a valid admin session.
func RequireAdmin(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Authenticated(c, cfg) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// HideInProduction answers 404 for the wrapped routes in production,
// regardless of authentication.
func HideInProduction(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if production {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Next()
	}
}
