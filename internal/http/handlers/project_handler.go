package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workforce_crm/internal/audit"
	"workforce_crm/internal/crm"
	"workforce_crm/internal/models"
	"workforce_crm/internal/optional"
	"workforce_crm/internal/rbac"
)

func ListProjects(svc *crm.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		projects, err := svc.Projects.List(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		views, err := svc.Views.Projects(c.Request.Context(), projects)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"projects": views})
	}
}

// GetProject returns the project with its assigned workers.
func GetProject(svc *crm.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		p, err := svc.Projects.Get(c.Request.Context(), id, c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeProjectDetail(c, svc, id, http.StatusOK, p)
	}
}

func CreateProject(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		var in crm.ProjectInput
		if !bind(c, &in) {
			return
		}

		p, err := svc.Projects.Create(c.Request.Context(), id, in)
		if err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, "project.create", "project", p.ID, map[string]any{"name": p.Name, "date": p.Date, "recruiter_ids": p.RecruiterIDs})
		writeProject(c, svc, http.StatusCreated, p)
	}
}

func UpdateProject(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		var patch crm.ProjectPatch
		if !bind(c, &patch) {
			return
		}

		p, err := svc.Projects.Update(c.Request.Context(), id, c.Param("id"), patch)
		if err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, "project.update", "project", p.ID, nil)
		writeProject(c, svc, http.StatusOK, p)
	}
}

func DeleteProject(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		projectID := c.Param("id")
		if err := svc.Projects.Delete(c.Request.Context(), id, projectID); err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, "project.delete", "project", projectID, nil)
		c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
	}
}

func AssignRecruiter(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		var in struct {
			UserID string `json:"user_id" binding:"required"`
		}
		if !bind(c, &in) {
			return
		}

		p, err := svc.Projects.AssignRecruiter(c.Request.Context(), id, c.Param("id"), in.UserID)
		if err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, "project.assign_recruiter", "project", p.ID, map[string]any{"user_id": in.UserID})
		writeProject(c, svc, http.StatusOK, p)
	}
}

func UnassignRecruiter(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		userID := c.Param("user_id")
		p, err := svc.Projects.UnassignRecruiter(c.Request.Context(), id, c.Param("id"), userID)
		if err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, "project.unassign_recruiter", "project", p.ID, map[string]any{"user_id": userID})
		writeProject(c, svc, http.StatusOK, p)
	}
}

// AddProjectWorker links a worker to a project the caller can see. The
// worker itself is not ownership-checked.
func AddProjectWorker(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, p, ok := visibleProject(c, svc)
		if !ok {
			return
		}
		var in struct {
			WorkerID string  `json:"worker_id" binding:"required"`
			StatusID *string `json:"status_id"`
		}
		if !bind(c, &in) {
			return
		}

		a, err := svc.Ledger.AddWorker(c.Request.Context(), id, p.ID, in.WorkerID, in.StatusID)
		if err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, "project.add_worker", "project", p.ID, map[string]any{"worker_id": in.WorkerID})
		c.JSON(http.StatusCreated, gin.H{"assignment": a})
	}
}

func RemoveProjectWorker(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, p, ok := visibleProject(c, svc)
		if !ok {
			return
		}
		workerID := c.Param("worker_id")
		if err := svc.Ledger.RemoveWorker(c.Request.Context(), id, p.ID, workerID); err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, "project.remove_worker", "project", p.ID, map[string]any{"worker_id": workerID})
		c.JSON(http.StatusOK, gin.H{"message": "worker removed from project"})
	}
}

func UpdateProjectWorkerStatus(svc *crm.Service, rec *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, p, ok := visibleProject(c, svc)
		if !ok {
			return
		}
		var in struct {
			StatusID string                 `json:"status_id"`
			Notes    optional.Value[string] `json:"notes"`
		}
		if !bind(c, &in) {
			return
		}

		workerID := c.Param("worker_id")
		a, err := svc.Ledger.UpdateStatus(c.Request.Context(), id, p.ID, workerID, in.StatusID, in.Notes)
		if err != nil {
			respondErr(c, err)
			return
		}
		record(c, rec, "project.update_worker_status", "project", p.ID, map[string]any{"worker_id": workerID, "status_id": in.StatusID})
		c.JSON(http.StatusOK, gin.H{"assignment": a})
	}
}

// visibleProject resolves :id through the project visibility rule before any
// assignment change.
func visibleProject(c *gin.Context, svc *crm.Service) (rbac.Identity, models.Project, bool) {
	id, ok := caller(c)
	if !ok {
		return rbac.Identity{}, models.Project{}, false
	}
	p, err := svc.Projects.Get(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return rbac.Identity{}, models.Project{}, false
	}
	return id, p, true
}

func writeProject(c *gin.Context, svc *crm.Service, status int, p models.Project) {
	views, err := svc.Views.Projects(c.Request.Context(), []models.Project{p})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(status, views[0])
}

func writeProjectDetail(c *gin.Context, svc *crm.Service, id rbac.Identity, status int, p models.Project) {
	view, err := svc.Views.ProjectDetail(c.Request.Context(), id, p)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(status, view)
}
