package crm

import (
	"context"
	"fmt"
	"slices"
	"time"

	"workforce_crm/internal/models"
	"workforce_crm/internal/rbac"
)

// AssignedPlaceholder is the status name shown for an assignment without a
// resolvable status.
const AssignedPlaceholder = "assigned"

type WorkerView struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Phone              string              `json:"phone"`
	WorkerTypeID       string              `json:"worker_type_id"`
	WorkerTypeName     string              `json:"worker_type_name"`
	Position           string              `json:"position"`
	PositionExperience string              `json:"position_experience"`
	Category           models.Category     `json:"category"`
	Address            string              `json:"address"`
	Email              string              `json:"email"`
	Experience         string              `json:"experience"`
	Notes              string              `json:"notes"`
	TagIDs             []string            `json:"tag_ids"`
	Tags               []models.Tag        `json:"tags"`
	ProjectStatuses    []ProjectStatusView `json:"project_statuses"`
	OwnerID            string              `json:"owner_id"`
	OwnerName          string              `json:"owner_name"`
	CreatedAt          time.Time           `json:"created_at"`
}

// ProjectStatusView is one project a worker is assigned to.
type ProjectStatusView struct {
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	ProjectDate string    `json:"project_date"`
	StatusID    string    `json:"status_id"`
	StatusName  string    `json:"status_name"`
	Notes       string    `json:"notes"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RecruiterView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ProjectView struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Date            string          `json:"date"`
	Location        string          `json:"location"`
	Notes           string          `json:"notes"`
	IsClosed        bool            `json:"is_closed"`
	WorkerCount     int             `json:"worker_count"`
	ExpectedWorkers int             `json:"expected_workers"`
	RecruiterIDs    []string        `json:"recruiter_ids"`
	Recruiters      []RecruiterView `json:"recruiters"`
	OwnerID         string          `json:"owner_id"`
	OwnerName       string          `json:"owner_name"`
	CreatedAt       time.Time       `json:"created_at"`
}

type ProjectDetailView struct {
	ProjectView
	Workers []ProjectWorkerView `json:"workers"`
}

// ProjectWorkerView is one assigned worker inside a project detail.
type ProjectWorkerView struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Category       models.Category `json:"category"`
	WorkerTypeName string          `json:"worker_type_name"`
	StatusID       string          `json:"status_id"`
	StatusName     string          `json:"status_name"`
	Notes          string          `json:"notes"`
	OwnerName      string          `json:"owner_name"`
	AddedBy        string          `json:"added_by"`
	AddedAt        time.Time       `json:"added_at"`
}

// Assembler joins records the stores already authorized into response
// views. Missing join targets degrade to empty fields; only database
// failures are returned as errors.
type Assembler struct {
	deps
}

// lookups is one batch of related rows keyed by id.
type lookups struct {
	users    map[string]models.User
	types    map[string]models.WorkerType
	statuses map[string]models.Status
	tags     map[string]models.Tag
	projects map[string]models.Project
	workers  map[string]models.Worker
}

func (a *Assembler) Workers(ctx context.Context, workers []models.Worker) ([]WorkerView, error) {
	ids := make([]string, len(workers))
	var ownerIDs, typeIDs, tagIDs []string
	for i, w := range workers {
		ids[i] = w.ID
		ownerIDs = append(ownerIDs, w.OwnerID)
		typeIDs = append(typeIDs, w.WorkerTypeID)
		tagIDs = append(tagIDs, w.TagIDs...)
	}

	var assignments []models.ProjectAssignment
	if len(ids) > 0 {
		if err := a.orm(ctx).Where("worker_id IN ?", ids).Order("updated_at DESC").Find(&assignments).Error; err != nil {
			return nil, fmt.Errorf("load assignments: %w", err)
		}
	}
	var projectIDs, statusIDs []string
	for _, pa := range assignments {
		projectIDs = append(projectIDs, pa.ProjectID)
		if pa.StatusID != nil {
			statusIDs = append(statusIDs, *pa.StatusID)
		}
	}

	lk := lookups{}
	var err error
	if lk.users, err = byID[models.User](ctx, a.deps, ownerIDs, func(u models.User) string { return u.ID }); err != nil {
		return nil, err
	}
	if lk.types, err = byID[models.WorkerType](ctx, a.deps, typeIDs, func(t models.WorkerType) string { return t.ID }); err != nil {
		return nil, err
	}
	if lk.tags, err = byID[models.Tag](ctx, a.deps, tagIDs, func(t models.Tag) string { return t.ID }); err != nil {
		return nil, err
	}
	if lk.projects, err = byID[models.Project](ctx, a.deps, projectIDs, func(p models.Project) string { return p.ID }); err != nil {
		return nil, err
	}
	if lk.statuses, err = byID[models.Status](ctx, a.deps, statusIDs, func(s models.Status) string { return s.ID }); err != nil {
		return nil, err
	}

	byWorker := make(map[string][]models.ProjectAssignment, len(workers))
	for _, pa := range assignments {
		byWorker[pa.WorkerID] = append(byWorker[pa.WorkerID], pa)
	}

	out := make([]WorkerView, len(workers))
	for i, w := range workers {
		out[i] = workerView(w, byWorker[w.ID], lk)
	}
	return out, nil
}

func (a *Assembler) Worker(ctx context.Context, w models.Worker) (WorkerView, error) {
	views, err := a.Workers(ctx, []models.Worker{w})
	if err != nil {
		return WorkerView{}, err
	}
	return views[0], nil
}

// Projects builds list views. worker_count counts every assignment of the
// project regardless of who can see the workers.
func (a *Assembler) Projects(ctx context.Context, projects []models.Project) ([]ProjectView, error) {
	ids := make([]string, len(projects))
	var userIDs []string
	for i, p := range projects {
		ids[i] = p.ID
		userIDs = append(userIDs, p.OwnerID)
		userIDs = append(userIDs, p.RecruiterIDs...)
	}

	counts := map[string]int{}
	if len(ids) > 0 {
		var rows []struct {
			ProjectID string
			N         int
		}
		err := a.orm(ctx).Model(&models.ProjectAssignment{}).
			Select("project_id, COUNT(*) AS n").
			Where("project_id IN ?", ids).
			Group("project_id").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("count assignments: %w", err)
		}
		for _, r := range rows {
			counts[r.ProjectID] = r.N
		}
	}

	users, err := byID[models.User](ctx, a.deps, userIDs, func(u models.User) string { return u.ID })
	if err != nil {
		return nil, err
	}

	out := make([]ProjectView, len(projects))
	for i, p := range projects {
		out[i] = projectView(p, counts[p.ID], users)
	}
	return out, nil
}

// ProjectDetail adds the assigned workers. Recruiters only see the workers
// they own; the count stays unfiltered.
func (a *Assembler) ProjectDetail(ctx context.Context, caller rbac.Identity, p models.Project) (ProjectDetailView, error) {
	views, err := a.Projects(ctx, []models.Project{p})
	if err != nil {
		return ProjectDetailView{}, err
	}

	var assignments []models.ProjectAssignment
	if err := a.orm(ctx).Where("project_id = ?", p.ID).Order("created_at ASC").Limit(maxListSize).Find(&assignments).Error; err != nil {
		return ProjectDetailView{}, fmt.Errorf("load assignments: %w", err)
	}

	var workerIDs, statusIDs []string
	for _, pa := range assignments {
		workerIDs = append(workerIDs, pa.WorkerID)
		if pa.StatusID != nil {
			statusIDs = append(statusIDs, *pa.StatusID)
		}
	}

	lk := lookups{}
	if lk.workers, err = byID[models.Worker](ctx, a.deps, workerIDs, func(w models.Worker) string { return w.ID }); err != nil {
		return ProjectDetailView{}, err
	}
	if lk.statuses, err = byID[models.Status](ctx, a.deps, statusIDs, func(s models.Status) string { return s.ID }); err != nil {
		return ProjectDetailView{}, err
	}

	var userIDs, typeIDs []string
	for _, pa := range assignments {
		userIDs = append(userIDs, pa.AddedBy)
	}
	for _, w := range lk.workers {
		userIDs = append(userIDs, w.OwnerID)
		typeIDs = append(typeIDs, w.WorkerTypeID)
	}
	if lk.users, err = byID[models.User](ctx, a.deps, userIDs, func(u models.User) string { return u.ID }); err != nil {
		return ProjectDetailView{}, err
	}
	if lk.types, err = byID[models.WorkerType](ctx, a.deps, typeIDs, func(t models.WorkerType) string { return t.ID }); err != nil {
		return ProjectDetailView{}, err
	}

	return ProjectDetailView{
		ProjectView: views[0],
		Workers:     projectWorkers(caller, assignments, lk),
	}, nil
}

func workerView(w models.Worker, assignments []models.ProjectAssignment, lk lookups) WorkerView {
	v := WorkerView{
		ID:                 w.ID,
		Name:               w.Name,
		Phone:              w.Phone,
		WorkerTypeID:       w.WorkerTypeID,
		WorkerTypeName:     lk.types[w.WorkerTypeID].Name,
		Position:           w.Position,
		PositionExperience: w.PositionExperience,
		Category:           w.Category,
		Address:            w.Address,
		Email:              w.Email,
		Experience:         w.Experience,
		Notes:              w.Notes,
		TagIDs:             w.TagIDs,
		Tags:               []models.Tag{},
		ProjectStatuses:    []ProjectStatusView{},
		OwnerID:            w.OwnerID,
		OwnerName:          displayName(lk.users, w.OwnerID),
		CreatedAt:          w.CreatedAt,
	}
	if v.TagIDs == nil {
		v.TagIDs = []string{}
	}

	for _, id := range w.TagIDs {
		if t, ok := lk.tags[id]; ok {
			v.Tags = append(v.Tags, t)
		}
	}

	for _, pa := range assignments {
		p, ok := lk.projects[pa.ProjectID]
		if !ok {
			continue
		}
		statusID, statusName := statusOf(pa, lk.statuses)
		v.ProjectStatuses = append(v.ProjectStatuses, ProjectStatusView{
			ProjectID:   p.ID,
			ProjectName: p.Name,
			ProjectDate: p.Date,
			StatusID:    statusID,
			StatusName:  statusName,
			Notes:       pa.Notes,
			UpdatedAt:   pa.UpdatedAt,
		})
	}
	slices.SortStableFunc(v.ProjectStatuses, func(a, b ProjectStatusView) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return v
}

func projectView(p models.Project, workerCount int, users map[string]models.User) ProjectView {
	v := ProjectView{
		ID:              p.ID,
		Name:            p.Name,
		Date:            p.Date,
		Location:        p.Location,
		Notes:           p.Notes,
		IsClosed:        p.IsClosed,
		WorkerCount:     workerCount,
		ExpectedWorkers: p.ExpectedWorkers,
		RecruiterIDs:    p.RecruiterIDs,
		Recruiters:      []RecruiterView{},
		OwnerID:         p.OwnerID,
		OwnerName:       displayName(users, p.OwnerID),
		CreatedAt:       p.CreatedAt,
	}
	if v.RecruiterIDs == nil {
		v.RecruiterIDs = []string{}
	}
	for _, id := range p.RecruiterIDs {
		u, ok := users[id]
		if !ok {
			continue
		}
		v.Recruiters = append(v.Recruiters, RecruiterView{ID: u.ID, Name: u.DisplayName(), Email: u.Email})
	}
	return v
}

func projectWorkers(caller rbac.Identity, assignments []models.ProjectAssignment, lk lookups) []ProjectWorkerView {
	out := []ProjectWorkerView{}
	for _, pa := range assignments {
		w, ok := lk.workers[pa.WorkerID]
		if !ok || !rbac.CanAccessWorker(caller, w) {
			continue
		}
		statusID, statusName := statusOf(pa, lk.statuses)
		addedBy := displayName(lk.users, pa.AddedBy)
		if addedBy == "" {
			addedBy = displayName(lk.users, w.OwnerID)
		}
		out = append(out, ProjectWorkerView{
			ID:             w.ID,
			Name:           w.Name,
			Phone:          w.Phone,
			Category:       w.Category,
			WorkerTypeName: lk.types[w.WorkerTypeID].Name,
			StatusID:       statusID,
			StatusName:     statusName,
			Notes:          pa.Notes,
			OwnerName:      displayName(lk.users, w.OwnerID),
			AddedBy:        addedBy,
			AddedAt:        pa.CreatedAt,
		})
	}
	return out
}

func statusOf(pa models.ProjectAssignment, statuses map[string]models.Status) (id, name string) {
	if pa.StatusID == nil {
		return "", AssignedPlaceholder
	}
	if s, ok := statuses[*pa.StatusID]; ok {
		return s.ID, s.Name
	}
	return *pa.StatusID, AssignedPlaceholder
}

func displayName(users map[string]models.User, id string) string {
	if u, ok := users[id]; ok {
		return u.DisplayName()
	}
	return ""
}

// byID loads the rows of T whose id is in ids and indexes them by key.
func byID[T any](ctx context.Context, d deps, ids []string, key func(T) string) (map[string]T, error) {
	ids = uniq(ids)
	out := make(map[string]T, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []T
	if err := d.orm(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		var zero T
		return nil, fmt.Errorf("load %T: %w", zero, err)
	}
	for _, r := range rows {
		out[key(r)] = r
	}
	return out, nil
}
