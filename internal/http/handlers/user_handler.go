package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workforce_crm/internal/audit"
	"workforce_crm/internal/crm"
)

// ListUsers returns all users.
func ListUsers(svc *crm.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		users, err := svc.Users.List(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
	}
}

// CreateUser inserts a new user
func CreateUser(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		var in crm.UserInput
		if !bind(c, &in) {
			return
		}

		user, err := svc.Users.Create(c.Request.Context(), id, in)
		if err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, "user.create", "user", user.ID, map[string]any{"email": user.Email, "role": user.Role})
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

// UserStats returns the number of workers each user owns.
func UserStats(svc *crm.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		stats, err := svc.Users.Stats(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"stats": stats})
	}
}
