package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workforce_crm/internal/audit"
	"workforce_crm/internal/crm"
)

// UpdateProfile changes the caller's display name.
func UpdateProfile(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		var in struct {
			Name string `json:"name"`
		}
		if !bind(c, &in) {
			return
		}

		user, err := svc.Users.UpdateProfile(c.Request.Context(), id, in.Name)
		if err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, "user.update_profile", "user", user.ID, map[string]any{"name": user.Name})
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// ChangePassword replaces the caller's own password.
func ChangePassword(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		var in struct {
			CurrentPassword string `json:"current_password" binding:"required"`
			NewPassword     string `json:"new_password" binding:"required"`
		}
		if !bind(c, &in) {
			return
		}

		if err := svc.Users.ChangePassword(c.Request.Context(), id, in.CurrentPassword, in.NewPassword); err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, "user.change_password", "user", id.UserID, nil)
		c.JSON(http.StatusOK, gin.H{"message": "password updated"})
	}
}
