package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"workforce_crm/internal/audit"
	"workforce_crm/internal/auth"
	"workforce_crm/internal/crm"
)

// LoginHandler authenticates the user and returns JWT
func LoginHandler(svc *crm.Service, rec *audit.Recorder, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if !bind(c, &input) {
			return
		}

		user, err := svc.Users.Authenticate(c.Request.Context(), input.Email, input.Password)
		if errors.Is(err, crm.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		if err != nil {
			respondErr(c, err)
			return
		}

		tokenString, expires, err := auth.IssueToken(jwtSecret, user, ttl, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
			return
		}

		// Cookie for browsers, JSON body for API clients.
		c.SetCookie("token", tokenString, int(ttl.Seconds()), "/", "", false, true)

		auth.SetUser(c, user)
		record(c, rec, "auth.login", "user", user.ID, nil)

		c.JSON(http.StatusOK, gin.H{
			"token":      tokenString,
			"expires_at": expires,
			"user":       user,
		})
	}
}

// LogoutHandler clears the token cookie.
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie("token", "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

// MeHandler returns the authenticated user.
func MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := auth.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": u})
	}
}
