package crm

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"workforce_crm/internal/apperr"
	"workforce_crm/internal/models"
	"workforce_crm/internal/optional"
	"workforce_crm/internal/rbac"
)

type ProjectInput struct {
	Name            string   `json:"name" validate:"required"`
	Date            string   `json:"date" validate:"required,datetime=2006-01-02"`
	Location        string   `json:"location"`
	Notes           string   `json:"notes"`
	ExpectedWorkers int      `json:"expected_workers" validate:"min=0"`
	RecruiterIDs    []string `json:"recruiter_ids"`
}

type ProjectPatch struct {
	Name            optional.Value[string]   `json:"name"`
	Date            optional.Value[string]   `json:"date"`
	Location        optional.Value[string]   `json:"location"`
	Notes           optional.Value[string]   `json:"notes"`
	IsClosed        optional.Value[bool]     `json:"is_closed"`
	ExpectedWorkers optional.Value[int]      `json:"expected_workers"`
	RecruiterIDs    optional.Value[[]string] `json:"recruiter_ids"`
}

type ProjectStore struct {
	deps
}

// List returns the projects visible to caller, latest date first.
func (s *ProjectStore) List(ctx context.Context, caller rbac.Identity) ([]models.Project, error) {
	q := s.orm(ctx).Model(&models.Project{})
	if !caller.IsAdmin() {
		sub := s.orm(ctx).Model(&models.ProjectRecruiter{}).Select("project_id").Where("user_id = ?", caller.UserID)
		q = q.Where("owner_id = ? OR id IN (?)", caller.UserID, sub)
	}

	var projects []models.Project
	if err := q.Order("date DESC").Order("created_at DESC").Limit(maxListSize).Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if err := s.loadRecruiterIDs(ctx, projects); err != nil {
		return nil, err
	}

	return slices.DeleteFunc(projects, func(p models.Project) bool {
		return !rbac.CanAccessProject(caller, p)
	}), nil
}

// Get returns the project. A project the caller cannot see is reported as
// Forbidden, not NotFound.
func (s *ProjectStore) Get(ctx context.Context, caller rbac.Identity, id string) (models.Project, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	if !rbac.CanAccessProject(caller, p) {
		return models.Project{}, apperr.Forbidden("no access to this project")
	}
	return p, nil
}

// Create opens a new project owned by caller. Admin only.
func (s *ProjectStore) Create(ctx context.Context, caller rbac.Identity, in ProjectInput) (models.Project, error) {
	if err := requireAdmin(caller, "create projects"); err != nil {
		return models.Project{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return models.Project{}, err
	}

	recruiters := uniq(in.RecruiterIDs)
	p := models.Project{
		ID:              s.newID(),
		Name:            in.Name,
		Date:            in.Date,
		Location:        in.Location,
		Notes:           in.Notes,
		IsClosed:        false,
		ExpectedWorkers: in.ExpectedWorkers,
		OwnerID:         caller.UserID,
		CreatedAt:       s.now(),
		RecruiterIDs:    recruiters,
	}

	err := s.orm(ctx).Transaction(func(tx *gorm.DB) error {
		if err := usersExist(tx, recruiters); err != nil {
			return err
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		return s.replaceRecruiters(tx, p.ID, recruiters)
	})
	if err != nil {
		return models.Project{}, err
	}

	log.Debug().Str("project_id", p.ID).Str("caller", caller.UserID).Msg("project created")
	return p, nil
}

// Update applies the set fields of p to a project caller can see. Only an
// admin may replace the recruiter list.
func (s *ProjectStore) Update(ctx context.Context, caller rbac.Identity, id string, patch ProjectPatch) (models.Project, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return models.Project{}, err
	}

	recruiters, replaceRecruiters := patch.RecruiterIDs.Get()
	if replaceRecruiters {
		if err := requireAdmin(caller, "change project recruiters"); err != nil {
			return models.Project{}, err
		}
		recruiters = uniq(recruiters)
	}

	cols := map[string]any{}
	if name, ok := patch.Name.Get(); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return models.Project{}, apperr.Validation("name is required")
		}
		cols["name"] = name
	}
	if date, ok := patch.Date.Get(); ok {
		if err := validate.Var(date, "required,datetime=2006-01-02"); err != nil {
			return models.Project{}, apperr.Validation("date must be a date in YYYY-MM-DD format")
		}
		cols["date"] = date
	}
	if n, ok := patch.ExpectedWorkers.Get(); ok {
		if n < 0 {
			return models.Project{}, apperr.Validation("expected_workers must be at least 0")
		}
		cols["expected_workers"] = n
	}
	if closed, ok := patch.IsClosed.Get(); ok {
		cols["is_closed"] = closed
	}
	setString(cols, "location", patch.Location)
	setString(cols, "notes", patch.Notes)

	err := s.orm(ctx).Transaction(func(tx *gorm.DB) error {
		if len(cols) > 0 {
			if err := tx.Model(&models.Project{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return err
			}
		}
		if !replaceRecruiters {
			return nil
		}
		if err := usersExist(tx, recruiters); err != nil {
			return err
		}
		return s.replaceRecruiters(tx, id, recruiters)
	})
	if err != nil {
		return models.Project{}, err
	}

	log.Debug().Str("project_id", id).Str("caller", caller.UserID).Int("fields", len(cols)).Bool("recruiters", replaceRecruiters).Msg("project updated")
	return s.Get(ctx, caller, id)
}

// Delete removes the project with its assignments and recruiter links. Admin only.
func (s *ProjectStore) Delete(ctx context.Context, caller rbac.Identity, id string) error {
	if err := requireAdmin(caller, "delete projects"); err != nil {
		return err
	}

	err := s.orm(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Project{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("project not found")
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectAssignment{}).Error; err != nil {
			return err
		}
		return tx.Where("project_id = ?", id).Delete(&models.ProjectRecruiter{}).Error
	})
	if err != nil {
		return err
	}

	log.Debug().Str("project_id", id).Str("caller", caller.UserID).Msg("project deleted")
	return nil
}

// AssignRecruiter gives userID visibility of the project. Admin only; repeated
// calls are no-ops.
func (s *ProjectStore) AssignRecruiter(ctx context.Context, caller rbac.Identity, projectID, userID string) (models.Project, error) {
	if err := requireAdmin(caller, "assign recruiters"); err != nil {
		return models.Project{}, err
	}
	if _, err := s.find(ctx, projectID); err != nil {
		return models.Project{}, err
	}
	if err := usersExist(s.orm(ctx), []string{userID}); err != nil {
		return models.Project{}, err
	}

	link := models.ProjectRecruiter{ProjectID: projectID, UserID: userID}
	err := s.orm(ctx).
		Where(&models.ProjectRecruiter{ProjectID: projectID, UserID: userID}).
		Attrs(models.ProjectRecruiter{CreatedAt: s.now()}).
		FirstOrCreate(&link).Error
	if err != nil {
		return models.Project{}, fmt.Errorf("assign recruiter: %w", err)
	}
	return s.find(ctx, projectID)
}

// UnassignRecruiter revokes userID's recruiter link. Admin only; removing an
// absent link is a no-op.
func (s *ProjectStore) UnassignRecruiter(ctx context.Context, caller rbac.Identity, projectID, userID string) (models.Project, error) {
	if err := requireAdmin(caller, "unassign recruiters"); err != nil {
		return models.Project{}, err
	}
	if _, err := s.find(ctx, projectID); err != nil {
		return models.Project{}, err
	}
	if err := usersExist(s.orm(ctx), []string{userID}); err != nil {
		return models.Project{}, err
	}

	err := s.orm(ctx).Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&models.ProjectRecruiter{}).Error
	if err != nil {
		return models.Project{}, fmt.Errorf("unassign recruiter: %w", err)
	}
	return s.find(ctx, projectID)
}

func (s *ProjectStore) find(ctx context.Context, id string) (models.Project, error) {
	var p models.Project
	if err := s.orm(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return models.Project{}, notFound(err, "project")
	}
	ps := []models.Project{p}
	if err := s.loadRecruiterIDs(ctx, ps); err != nil {
		return models.Project{}, err
	}
	return ps[0], nil
}

func (s *ProjectStore) replaceRecruiters(tx *gorm.DB, projectID string, userIDs []string) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectRecruiter{}).Error; err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}
	now := s.now()
	rows := make([]models.ProjectRecruiter, len(userIDs))
	for i, uid := range userIDs {
		rows[i] = models.ProjectRecruiter{ProjectID: projectID, UserID: uid, CreatedAt: now}
	}
	return tx.Create(&rows).Error
}

func (s *ProjectStore) loadRecruiterIDs(ctx context.Context, projects []models.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}

	var rows []models.ProjectRecruiter
	if err := s.orm(ctx).Where("project_id IN ?", ids).Order("created_at ASC").Find(&rows).Error; err != nil {
		return fmt.Errorf("load project recruiters: %w", err)
	}

	byProject := make(map[string][]string, len(projects))
	for _, r := range rows {
		byProject[r.ProjectID] = append(byProject[r.ProjectID], r.UserID)
	}
	for i := range projects {
		projects[i].RecruiterIDs = byProject[projects[i].ID]
		if projects[i].RecruiterIDs == nil {
			projects[i].RecruiterIDs = []string{}
		}
	}
	return nil
}

// usersExist fails with NotFound naming the first id that has no user row.
func usersExist(db *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var found []string
	if err := db.Model(&models.User{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("lookup users: %w", err)
	}
	for _, id := range ids {
		if !slices.Contains(found, id) {
			return apperr.NotFound("user %s not found", id)
		}
	}
	return nil
}
