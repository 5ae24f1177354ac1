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

// WorkerFilter narrows ListWorkers. Empty fields do not filter.
type WorkerFilter struct {
	Search       string
	Category     string
	WorkerTypeID string
	TagID        string
	// OwnerID is honored for admins only; recruiters are always scoped to themselves.
	OwnerID string
}

type WorkerInput struct {
	Name               string          `json:"name" validate:"min=2"`
	Phone              string          `json:"phone"`
	WorkerTypeID       string          `json:"worker_type_id"`
	Position           string          `json:"position"`
	PositionExperience string          `json:"position_experience"`
	Category           models.Category `json:"category"`
	Address            string          `json:"address"`
	Email              string          `json:"email"`
	Experience         string          `json:"experience"`
	Notes              string          `json:"notes"`
}

// WorkerPatch is a sparse update: only set fields are written.
type WorkerPatch struct {
	Name               optional.Value[string]          `json:"name"`
	Phone              optional.Value[string]          `json:"phone"`
	WorkerTypeID       optional.Value[string]          `json:"worker_type_id"`
	Position           optional.Value[string]          `json:"position"`
	PositionExperience optional.Value[string]          `json:"position_experience"`
	Category           optional.Value[models.Category] `json:"category"`
	Address            optional.Value[string]          `json:"address"`
	Email              optional.Value[string]          `json:"email"`
	Experience         optional.Value[string]          `json:"experience"`
	Notes              optional.Value[string]          `json:"notes"`
}

type WorkerStore struct {
	deps
}

// List returns the workers visible to caller that match f, newest first.
func (s *WorkerStore) List(ctx context.Context, caller rbac.Identity, f WorkerFilter) ([]models.Worker, error) {
	q := s.orm(ctx).Model(&models.Worker{})

	switch {
	case !caller.IsAdmin():
		q = q.Where("owner_id = ?", caller.UserID)
	case f.OwnerID != "":
		q = q.Where("owner_id = ?", f.OwnerID)
	}

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.WorkerTypeID != "" {
		q = q.Where("worker_type_id = ?", f.WorkerTypeID)
	}
	if f.TagID != "" {
		sub := s.orm(ctx).Model(&models.WorkerTag{}).Select("worker_id").Where("tag_id = ?", f.TagID)
		q = q.Where("id IN (?)", sub)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(phone) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!'"+
			" OR LOWER(address) LIKE ? ESCAPE '!' OR LOWER(experience) LIKE ? ESCAPE '!' OR LOWER(position) LIKE ? ESCAPE '!')",
			like, like, like, like, like, like)
	}

	var workers []models.Worker
	if err := q.Order("created_at DESC").Limit(maxListSize).Find(&workers).Error; err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}

	workers = slices.DeleteFunc(workers, func(w models.Worker) bool {
		return !rbac.CanAccessWorker(caller, w)
	})
	if err := s.loadTagIDs(ctx, workers); err != nil {
		return nil, err
	}
	return workers, nil
}

// Get returns the worker when caller may see it. An invisible worker is
// reported exactly like a missing one.
func (s *WorkerStore) Get(ctx context.Context, caller rbac.Identity, id string) (models.Worker, error) {
	var w models.Worker
	if err := s.orm(ctx).Where("id = ?", id).First(&w).Error; err != nil {
		return models.Worker{}, notFound(err, "worker")
	}
	if !rbac.CanAccessWorker(caller, w) {
		return models.Worker{}, apperr.NotFound("worker not found")
	}

	ws := []models.Worker{w}
	if err := s.loadTagIDs(ctx, ws); err != nil {
		return models.Worker{}, err
	}
	return ws[0], nil
}

// Create registers a worker owned by caller.
func (s *WorkerStore) Create(ctx context.Context, caller rbac.Identity, in WorkerInput) (models.Worker, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Category == "" {
		in.Category = models.CategoryRegistered
	}
	if err := validateStruct(in); err != nil {
		return models.Worker{}, err
	}
	if !in.Category.Valid() {
		return models.Worker{}, invalidCategory(in.Category)
	}

	w := models.Worker{
		ID:                 s.newID(),
		Name:               in.Name,
		Phone:              in.Phone,
		WorkerTypeID:       in.WorkerTypeID,
		Position:           in.Position,
		PositionExperience: in.PositionExperience,
		Category:           in.Category,
		Address:            in.Address,
		Email:              in.Email,
		Experience:         in.Experience,
		Notes:              in.Notes,
		OwnerID:            caller.UserID,
		CreatedAt:          s.now(),
		TagIDs:             []string{},
	}
	if err := s.orm(ctx).Create(&w).Error; err != nil {
		return models.Worker{}, fmt.Errorf("create worker: %w", err)
	}

	log.Debug().Str("worker_id", w.ID).Str("caller", caller.UserID).Msg("worker created")
	return w, nil
}

// Update applies the set fields of p. The owner is never touched.
func (s *WorkerStore) Update(ctx context.Context, caller rbac.Identity, id string, p WorkerPatch) (models.Worker, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return models.Worker{}, err
	}

	cols := map[string]any{}
	if name, ok := p.Name.Get(); ok {
		name = strings.TrimSpace(name)
		if len([]rune(name)) < 2 {
			return models.Worker{}, apperr.Validation("name must be at least 2 characters")
		}
		cols["name"] = name
	}
	if cat, ok := p.Category.Get(); ok {
		if !cat.Valid() {
			return models.Worker{}, invalidCategory(cat)
		}
		cols["category"] = cat
	}
	setString(cols, "phone", p.Phone)
	setString(cols, "worker_type_id", p.WorkerTypeID)
	setString(cols, "position", p.Position)
	setString(cols, "position_experience", p.PositionExperience)
	setString(cols, "address", p.Address)
	setString(cols, "email", p.Email)
	setString(cols, "experience", p.Experience)
	setString(cols, "notes", p.Notes)

	if len(cols) > 0 {
		if err := s.orm(ctx).Model(&models.Worker{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return models.Worker{}, fmt.Errorf("update worker: %w", err)
		}
		log.Debug().Str("worker_id", id).Str("caller", caller.UserID).Int("fields", len(cols)).Msg("worker updated")
	}

	return s.Get(ctx, caller, id)
}

// Delete removes the worker, its tag memberships and every project
// assignment that references it. Admin only.
func (s *WorkerStore) Delete(ctx context.Context, caller rbac.Identity, id string) error {
	if err := requireAdmin(caller, "delete workers"); err != nil {
		return err
	}

	err := s.orm(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Worker{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("worker not found")
		}
		if err := tx.Where("worker_id = ?", id).Delete(&models.ProjectAssignment{}).Error; err != nil {
			return err
		}
		return tx.Where("worker_id = ?", id).Delete(&models.WorkerTag{}).Error
	})
	if err != nil {
		return err
	}

	log.Debug().Str("worker_id", id).Str("caller", caller.UserID).Msg("worker deleted")
	return nil
}

// AddTag puts tagID into the worker's tag set. Adding a present tag is a no-op.
func (s *WorkerStore) AddTag(ctx context.Context, caller rbac.Identity, workerID, tagID string) error {
	if _, err := s.Get(ctx, caller, workerID); err != nil {
		return err
	}
	if tagID == "" {
		return apperr.Validation("tag_id is required")
	}

	wt := models.WorkerTag{WorkerID: workerID, TagID: tagID}
	attrs := models.WorkerTag{CreatedAt: s.now()}
	if err := s.orm(ctx).Where(&models.WorkerTag{WorkerID: workerID, TagID: tagID}).Attrs(attrs).FirstOrCreate(&wt).Error; err != nil {
		return fmt.Errorf("add tag: %w", err)
	}
	return nil
}

// RemoveTag drops tagID from the worker's tag set. Removing an absent tag is a no-op.
func (s *WorkerStore) RemoveTag(ctx context.Context, caller rbac.Identity, workerID, tagID string) error {
	if _, err := s.Get(ctx, caller, workerID); err != nil {
		return err
	}
	if err := s.orm(ctx).Where("worker_id = ? AND tag_id = ?", workerID, tagID).Delete(&models.WorkerTag{}).Error; err != nil {
		return fmt.Errorf("remove tag: %w", err)
	}
	return nil
}

func (s *WorkerStore) loadTagIDs(ctx context.Context, workers []models.Worker) error {
	if len(workers) == 0 {
		return nil
	}
	ids := make([]string, len(workers))
	for i, w := range workers {
		ids[i] = w.ID
	}

	var rows []models.WorkerTag
	if err := s.orm(ctx).Where("worker_id IN ?", ids).Order("created_at ASC").Find(&rows).Error; err != nil {
		return fmt.Errorf("load worker tags: %w", err)
	}

	byWorker := make(map[string][]string, len(workers))
	for _, r := range rows {
		byWorker[r.WorkerID] = append(byWorker[r.WorkerID], r.TagID)
	}
	for i := range workers {
		workers[i].TagIDs = byWorker[workers[i].ID]
		if workers[i].TagIDs == nil {
			workers[i].TagIDs = []string{}
		}
	}
	return nil
}

func setString(cols map[string]any, column string, v optional.Value[string]) {
	if s, ok := v.Get(); ok {
		cols[column] = s
	}
}

func invalidCategory(c models.Category) error {
	names := make([]string, len(models.Categories))
	for i, k := range models.Categories {
		names[i] = string(k)
	}
	return apperr.Validation("category %q must be one of: %s", c, strings.Join(names, ", "))
}

// escapeLike escapes LIKE wildcards using '!' so the same pattern works on
// MySQL, PostgreSQL and SQLite.
func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
