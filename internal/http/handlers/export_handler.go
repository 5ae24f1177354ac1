package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workforce_crm/internal/crm"
)

// ExportWorkers returns a user's workers grouped by category. Without a
// :user_id the caller's own workers are exported.
func ExportWorkers(svc *crm.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		exp, err := svc.Workers.ExportGroups(c.Request.Context(), id, c.Param("user_id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, exp)
	}
}

// ExportAllWorkers returns one grouped export per user that owns workers.
func ExportAllWorkers(svc *crm.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		exports, err := svc.Workers.ExportAll(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"exports": exports})
	}
}
