package crm

import (
	"context"
	"fmt"
	"time"

	"workforce_crm/internal/apperr"
	"workforce_crm/internal/models"
	"workforce_crm/internal/rbac"
)

// ExportRow is one worker line in an export.
type ExportRow struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	Address        string          `json:"address"`
	Category       models.Category `json:"category"`
	WorkerTypeName string          `json:"worker_type_name"`
	Experience     string          `json:"experience"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CategoryGroup holds one category's workers sorted by name.
type CategoryGroup struct {
	Category models.Category `json:"category"`
	Workers  []ExportRow     `json:"workers"`
}

// OwnerExport is the export of one user's workers. Groups follow
// models.Categories order and empty categories are left out.
type OwnerExport struct {
	OwnerID   string          `json:"owner_id"`
	OwnerName string          `json:"owner_name"`
	Groups    []CategoryGroup `json:"groups"`
}

// ExportGroups returns the workers owned by ownerID grouped by category. An
// empty ownerID means the caller. Only admins may name another owner.
func (s *WorkerStore) ExportGroups(ctx context.Context, caller rbac.Identity, ownerID string) (OwnerExport, error) {
	if ownerID == "" {
		ownerID = caller.UserID
	}
	if ownerID != caller.UserID && !caller.IsAdmin() {
		return OwnerExport{}, apperr.Forbidden("only admins may export another user's workers")
	}

	var owner models.User
	if err := s.orm(ctx).Where("id = ?", ownerID).First(&owner).Error; err != nil {
		return OwnerExport{}, notFound(err, "user")
	}

	groups, err := s.exportGroups(ctx, []string{owner.ID})
	if err != nil {
		return OwnerExport{}, err
	}
	exp := OwnerExport{OwnerID: owner.ID, OwnerName: owner.DisplayName(), Groups: groups[owner.ID]}
	if exp.Groups == nil {
		exp.Groups = []CategoryGroup{}
	}
	return exp, nil
}

// ExportAll returns one export per user that owns at least one worker,
// in user creation order.
func (s *WorkerStore) ExportAll(ctx context.Context, caller rbac.Identity) ([]OwnerExport, error) {
	if err := requireAdmin(caller, "export all workers"); err != nil {
		return nil, err
	}

	var users []models.User
	if err := s.orm(ctx).Order("created_at ASC, email ASC").Limit(maxListSize).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	groups, err := s.exportGroups(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := []OwnerExport{}
	for _, u := range users {
		if len(groups[u.ID]) == 0 {
			continue
		}
		out = append(out, OwnerExport{OwnerID: u.ID, OwnerName: u.DisplayName(), Groups: groups[u.ID]})
	}
	return out, nil
}

// exportGroups loads the workers of every owner in ownerIDs and groups them
// per owner and category.
func (s *WorkerStore) exportGroups(ctx context.Context, ownerIDs []string) (map[string][]CategoryGroup, error) {
	out := map[string][]CategoryGroup{}
	if len(ownerIDs) == 0 {
		return out, nil
	}

	var workers []models.Worker
	if err := s.orm(ctx).Where("owner_id IN ?", ownerIDs).Order("name ASC, id ASC").Find(&workers).Error; err != nil {
		return nil, fmt.Errorf("export workers: %w", err)
	}

	typeIDs := make([]string, 0, len(workers))
	for _, w := range workers {
		typeIDs = append(typeIDs, w.WorkerTypeID)
	}
	types, err := byID[models.WorkerType](ctx, s.deps, typeIDs, func(t models.WorkerType) string { return t.ID })
	if err != nil {
		return nil, err
	}

	rows := map[string]map[models.Category][]ExportRow{}
	for _, w := range workers {
		if rows[w.OwnerID] == nil {
			rows[w.OwnerID] = map[models.Category][]ExportRow{}
		}
		rows[w.OwnerID][w.Category] = append(rows[w.OwnerID][w.Category], ExportRow{
			ID:             w.ID,
			Name:           w.Name,
			Phone:          w.Phone,
			Email:          w.Email,
			Address:        w.Address,
			Category:       w.Category,
			WorkerTypeName: types[w.WorkerTypeID].Name,
			Experience:     w.Experience,
			CreatedAt:      w.CreatedAt,
		})
	}

	for owner, byCat := range rows {
		groups := []CategoryGroup{}
		for _, cat := range models.Categories {
			if len(byCat[cat]) > 0 {
				groups = append(groups, CategoryGroup{Category: cat, Workers: byCat[cat]})
			}
		}
		out[owner] = groups
	}
	return out, nil
}
