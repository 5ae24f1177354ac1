package crm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"workforce_crm/internal/apperr"
	"workforce_crm/internal/models"
	"workforce_crm/internal/optional"
	"workforce_crm/internal/rbac"
)

// Ledger manages project assignments. It does not decide access: callers
// resolve the project through ProjectStore.Get first.
type Ledger struct {
	deps
}

// AddWorker links workerID to projectID. A repeated pair fails with Conflict.
// The existence check and the insert are separate statements, so two
// concurrent adds of the same pair can both succeed.
func (l *Ledger) AddWorker(ctx context.Context, caller rbac.Identity, projectID, workerID string, statusID *string) (models.ProjectAssignment, error) {
	if err := l.exists(ctx, &models.Project{}, projectID, "project"); err != nil {
		return models.ProjectAssignment{}, err
	}
	if err := l.exists(ctx, &models.Worker{}, workerID, "worker"); err != nil {
		return models.ProjectAssignment{}, err
	}

	var dup int64
	if err := l.orm(ctx).Model(&models.ProjectAssignment{}).
		Where("project_id = ? AND worker_id = ?", projectID, workerID).
		Count(&dup).Error; err != nil {
		return models.ProjectAssignment{}, fmt.Errorf("check assignment: %w", err)
	}
	if dup > 0 {
		return models.ProjectAssignment{}, apperr.Conflict("worker is already assigned to this project")
	}

	if statusID != nil && *statusID == "" {
		statusID = nil
	}
	now := l.now()
	a := models.ProjectAssignment{
		ID:        l.newID(),
		ProjectID: projectID,
		WorkerID:  workerID,
		StatusID:  statusID,
		AddedBy:   caller.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := l.orm(ctx).Create(&a).Error; err != nil {
		return models.ProjectAssignment{}, fmt.Errorf("add worker to project: %w", err)
	}

	log.Debug().Str("project_id", projectID).Str("worker_id", workerID).Str("caller", caller.UserID).Msg("worker assigned")
	return a, nil
}

func (l *Ledger) RemoveWorker(ctx context.Context, caller rbac.Identity, projectID, workerID string) error {
	res := l.orm(ctx).Where("project_id = ? AND worker_id = ?", projectID, workerID).Delete(&models.ProjectAssignment{})
	if res.Error != nil {
		return fmt.Errorf("remove worker from project: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("assignment not found")
	}

	log.Debug().Str("project_id", projectID).Str("worker_id", workerID).Str("caller", caller.UserID).Msg("worker unassigned")
	return nil
}

// UpdateStatus sets the assignment status (empty clears it) and, when given,
// its notes. updated_at is refreshed either way.
func (l *Ledger) UpdateStatus(ctx context.Context, caller rbac.Identity, projectID, workerID, statusID string, notes optional.Value[string]) (models.ProjectAssignment, error) {
	var a models.ProjectAssignment
	err := l.orm(ctx).Where("project_id = ? AND worker_id = ?", projectID, workerID).First(&a).Error
	if err != nil {
		return models.ProjectAssignment{}, notFound(err, "assignment")
	}

	var status *string
	if statusID != "" {
		status = &statusID
	}
	now := l.now()
	cols := map[string]any{
		"status_id":  status,
		"updated_at": now,
	}
	notes.Apply(&a.Notes)
	if notes.Set {
		cols["notes"] = a.Notes
	}

	if err := l.orm(ctx).Model(&models.ProjectAssignment{}).Where("id = ?", a.ID).Updates(cols).Error; err != nil {
		return models.ProjectAssignment{}, fmt.Errorf("update assignment: %w", err)
	}
	a.StatusID = status
	a.UpdatedAt = now

	log.Debug().Str("project_id", projectID).Str("worker_id", workerID).Str("caller", caller.UserID).Msg("assignment status updated")
	return a, nil
}

func (l *Ledger) exists(ctx context.Context, model any, id, what string) error {
	var n int64
	if err := l.orm(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("lookup %s: %w", what, err)
	}
	if n == 0 {
		return apperr.NotFound("%s not found", what)
	}
	return nil
}
