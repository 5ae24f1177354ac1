package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"workforce_crm/internal/apperr"
	"workforce_crm/internal/audit"
	"workforce_crm/internal/auth"
	"workforce_crm/internal/rbac"
)

// respondErr writes err with the status its kind maps to. Unclassified
// errors are logged and reported as a bare 500.
func respondErr(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": apperr.KindOf(err).String()})
}

// caller returns the authenticated identity or answers 401.
func caller(c *gin.Context) (rbac.Identity, bool) {
	id, ok := auth.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return rbac.Identity{}, false
	}
	return id, true
}

// bind decodes the JSON body into dst or answers 400.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": apperr.KindValidation.String()})
		return false
	}
	return true
}

// record appends an audit row for the current request. A failed write is
// logged and does not fail the request.
func record(c *gin.Context, rec *audit.Recorder, action, resourceType, resourceID string, meta map[string]any) {
	e := audit.Entry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     meta,
		IP:           c.ClientIP(),
		UserAgent:    c.GetHeader("User-Agent"),
	}
	if u, ok := auth.CurrentUser(c); ok {
		e.UserID = u.ID
		e.InitiatorName = u.DisplayName()
	}
	if err := rec.Record(c.Request.Context(), e); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("audit write failed")
	}
}
