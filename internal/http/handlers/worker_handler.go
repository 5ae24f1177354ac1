package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workforce_crm/internal/audit"
	"workforce_crm/internal/crm"
	"workforce_crm/internal/models"
	"workforce_crm/internal/rbac"
)

// ListWorkers returns the caller's visible workers, filtered by the
// search, category, worker_type_id, tag_id and owner_id query parameters.
func ListWorkers(svc *crm.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		f := crm.WorkerFilter{
			Search:       c.Query("search"),
			Category:     c.Query("category"),
			WorkerTypeID: c.Query("worker_type_id"),
			TagID:        c.Query("tag_id"),
			OwnerID:      c.Query("owner_id"),
		}

		workers, err := svc.Workers.List(c.Request.Context(), id, f)
		if err != nil {
			respondErr(c, err)
			return
		}
		views, err := svc.Views.Workers(c.Request.Context(), workers)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"workers": views})
	}
}

func GetWorker(svc *crm.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		w, err := svc.Workers.Get(c.Request.Context(), id, c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeWorker(c, svc, http.StatusOK, w)
	}
}

func CreateWorker(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		var in crm.WorkerInput
		if !bind(c, &in) {
			return
		}

		w, err := svc.Workers.Create(c.Request.Context(), id, in)
		if err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, "worker.create", "worker", w.ID, map[string]any{"name": w.Name, "category": w.Category})
		writeWorker(c, svc, http.StatusCreated, w)
	}
}

func UpdateWorker(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		var patch crm.WorkerPatch
		if !bind(c, &patch) {
			return
		}

		w, err := svc.Workers.Update(c.Request.Context(), id, c.Param("id"), patch)
		if err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, "worker.update", "worker", w.ID, nil)
		writeWorker(c, svc, http.StatusOK, w)
	}
}

func DeleteWorker(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		workerID := c.Param("id")
		if err := svc.Workers.Delete(c.Request.Context(), id, workerID); err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, "worker.delete", "worker", workerID, nil)
		c.JSON(http.StatusOK, gin.H{"message": "worker deleted"})
	}
}

func AddWorkerTag(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return tagMutation(svc, rec, "worker.add_tag", func(c *gin.Context, id rbac.Identity, workerID, tagID string) error {
		return svc.Workers.AddTag(c.Request.Context(), id, workerID, tagID)
	})
}

func RemoveWorkerTag(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return tagMutation(svc, rec, "worker.remove_tag", func(c *gin.Context, id rbac.Identity, workerID, tagID string) error {
		return svc.Workers.RemoveTag(c.Request.Context(), id, workerID, tagID)
	})
}

func tagMutation(svc *crm.Service, rec *audit.Recorder, action string, apply func(*gin.Context, rbac.Identity, string, string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		workerID, tagID := c.Param("id"), c.Param("tag_id")
		if err := apply(c, id, workerID, tagID); err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, action, "worker", workerID, map[string]any{"tag_id": tagID})

		w, err := svc.Workers.Get(c.Request.Context(), id, workerID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeWorker(c, svc, http.StatusOK, w)
	}
}

func writeWorker(c *gin.Context, svc *crm.Service, status int, w models.Worker) {
	view, err := svc.Views.Worker(c.Request.Context(), w)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(status, view)
}
