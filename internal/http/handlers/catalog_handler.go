package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"workforce_crm/internal/audit"
	"workforce_crm/internal/crm"
	"workforce_crm/internal/rbac"
)

// Catalog endpoints share one shape: list for any authenticated user,
// create and delete for admins.

func ListWorkerTypes(svc *crm.Service) gin.HandlerFunc {
	return listCatalog("worker_types", svc.Catalog.WorkerTypes)
}

func CreateWorkerType(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return createCatalog(rec, "worker_type", svc.Catalog.CreateWorkerType)
}

func DeleteWorkerType(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return deleteCatalog(rec, "worker_type", svc.Catalog.DeleteWorkerType)
}

// ListPositions accepts an optional worker_type_id filter.
func ListPositions(svc *crm.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		positions, err := svc.Catalog.Positions(c.Request.Context(), c.Query("worker_type_id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"positions": positions})
	}
}

func CreatePosition(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return createCatalog(rec, "position", svc.Catalog.CreatePosition)
}

func DeletePosition(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return deleteCatalog(rec, "position", svc.Catalog.DeletePosition)
}

func ListStatuses(svc *crm.Service) gin.HandlerFunc {
	return listCatalog("statuses", svc.Catalog.Statuses)
}

func CreateStatus(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return createCatalog(rec, "status", svc.Catalog.CreateStatus)
}

func DeleteStatus(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return deleteCatalog(rec, "status", svc.Catalog.DeleteStatus)
}

func ListTags(svc *crm.Service) gin.HandlerFunc {
	return listCatalog("tags", svc.Catalog.Tags)
}

func CreateTag(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return createCatalog(rec, "tag", svc.Catalog.CreateTag)
}

func DeleteTag(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return deleteCatalog(rec, "tag", svc.Catalog.DeleteTag)
}

func listCatalog[T any](key string, list func(context.Context) ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := list(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{key: items})
	}
}

func createCatalog[In any, Out interface{ GetID() string }](rec *audit.Recorder, resource string, create func(context.Context, rbac.Identity, In) (Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		var in In
		if !bind(c, &in) {
			return
		}

		out, err := create(c.Request.Context(), id, in)
		if err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, resource+".create", resource, out.GetID(), map[string]any{"input": in})
		c.JSON(http.StatusCreated, out)
	}
}

func deleteCatalog(rec *audit.Recorder, resource string, del func(context.Context, rbac.Identity, string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		itemID := c.Param("id")
		if err := del(c.Request.Context(), id, itemID); err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, resource+".delete", resource, itemID, nil)
		c.JSON(http.StatusOK, gin.H{"message": resource + " deleted"})
	}
}
