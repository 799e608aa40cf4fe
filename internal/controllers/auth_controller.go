package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/zaqqye/app_catalog/internal/middleware"
	"github.com/zaqqye/app_catalog/internal/utils"
)

type AuthController struct {
	Credentials *utils.Credentials
	Auth        middleware.AuthConfig
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Action   string `json:"action" binding:"required"`
}

// Status reports whether the caller holds an admin session.
func (a *AuthController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": middleware.Authenticated(c, a.Auth)})
}

// Handle dispatches the login, logout and check actions.
func (a *AuthController) Handle(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
		return
	}

	switch req.Action {
	case "login":
		if !a.Credentials.Match(req.Username, req.Password) {
			log.WithField("username", req.Username).Warn("admin login rejected")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		token, err := middleware.IssueSession(a.Auth, req.Username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
			return
		}
		middleware.SetSessionCookie(c, a.Auth, token)
		c.JSON(http.StatusOK, gin.H{"success": true})
	case "logout":
		middleware.ClearSessionCookie(c, a.Auth)
		c.JSON(http.StatusOK, gin.H{"success": true})
	case "check":
		a.Status(c)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
	}
}
