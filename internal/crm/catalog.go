package crm

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"workforce_crm/internal/apperr"
	"workforce_crm/internal/models"
	"workforce_crm/internal/rbac"
)

const defaultTagColor = "#6366f1"

// Catalog serves the shared lookup tables. Anyone authenticated may read;
// only admins may write.
type Catalog struct {
	deps
}

type NamedInput struct {
	Name string `json:"name" validate:"required"`
}

type PositionInput struct {
	Name         string `json:"name" validate:"required"`
	WorkerTypeID string `json:"worker_type_id" validate:"required"`
}

type TagInput struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color"`
}

// PositionView is a position with the name of its worker type.
type PositionView struct {
	models.Position
	WorkerTypeName string `json:"worker_type_name"`
}

func (c *Catalog) WorkerTypes(ctx context.Context) ([]models.WorkerType, error) {
	var out []models.WorkerType
	if err := c.orm(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list worker types: %w", err)
	}
	return out, nil
}

func (c *Catalog) CreateWorkerType(ctx context.Context, caller rbac.Identity, in NamedInput) (models.WorkerType, error) {
	if err := requireAdmin(caller, "manage worker types"); err != nil {
		return models.WorkerType{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return models.WorkerType{}, err
	}

	wt := models.WorkerType{ID: c.newID(), Name: in.Name}
	if err := c.orm(ctx).Create(&wt).Error; err != nil {
		return models.WorkerType{}, fmt.Errorf("create worker type: %w", err)
	}
	return wt, nil
}

// DeleteWorkerType removes the type and every position under it.
func (c *Catalog) DeleteWorkerType(ctx context.Context, caller rbac.Identity, id string) error {
	if err := requireAdmin(caller, "manage worker types"); err != nil {
		return err
	}
	return c.orm(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteByID(tx, &models.WorkerType{}, id, "worker type"); err != nil {
			return err
		}
		return tx.Where("worker_type_id = ?", id).Delete(&models.Position{}).Error
	})
}

// Positions lists positions, optionally only those of one worker type.
func (c *Catalog) Positions(ctx context.Context, workerTypeID string) ([]PositionView, error) {
	q := c.orm(ctx).Model(&models.Position{})
	if workerTypeID != "" {
		q = q.Where("worker_type_id = ?", workerTypeID)
	}
	var positions []models.Position
	if err := q.Order("name ASC").Find(&positions).Error; err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}

	types, err := c.WorkerTypes(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(types))
	for _, t := range types {
		names[t.ID] = t.Name
	}

	out := make([]PositionView, len(positions))
	for i, p := range positions {
		out[i] = PositionView{Position: p, WorkerTypeName: names[p.WorkerTypeID]}
	}
	return out, nil
}

func (c *Catalog) CreatePosition(ctx context.Context, caller rbac.Identity, in PositionInput) (PositionView, error) {
	if err := requireAdmin(caller, "manage positions"); err != nil {
		return PositionView{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return PositionView{}, err
	}

	var wt models.WorkerType
	if err := c.orm(ctx).Where("id = ?", in.WorkerTypeID).First(&wt).Error; err != nil {
		return PositionView{}, notFound(err, "worker type")
	}

	p := models.Position{ID: c.newID(), Name: in.Name, WorkerTypeID: wt.ID}
	if err := c.orm(ctx).Create(&p).Error; err != nil {
		return PositionView{}, fmt.Errorf("create position: %w", err)
	}
	return PositionView{Position: p, WorkerTypeName: wt.Name}, nil
}

func (c *Catalog) DeletePosition(ctx context.Context, caller rbac.Identity, id string) error {
	if err := requireAdmin(caller, "manage positions"); err != nil {
		return err
	}
	return deleteByID(c.orm(ctx), &models.Position{}, id, "position")
}

func (c *Catalog) Statuses(ctx context.Context) ([]models.Status, error) {
	var out []models.Status
	if err := c.orm(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	return out, nil
}

func (c *Catalog) CreateStatus(ctx context.Context, caller rbac.Identity, in NamedInput) (models.Status, error) {
	if err := requireAdmin(caller, "manage statuses"); err != nil {
		return models.Status{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return models.Status{}, err
	}

	st := models.Status{ID: c.newID(), Name: in.Name}
	if err := c.orm(ctx).Create(&st).Error; err != nil {
		return models.Status{}, fmt.Errorf("create status: %w", err)
	}
	return st, nil
}

// DeleteStatus removes the status. Assignments still pointing at it fall
// back to the "assigned" placeholder when viewed.
func (c *Catalog) DeleteStatus(ctx context.Context, caller rbac.Identity, id string) error {
	if err := requireAdmin(caller, "manage statuses"); err != nil {
		return err
	}
	return deleteByID(c.orm(ctx), &models.Status{}, id, "status")
}

func (c *Catalog) Tags(ctx context.Context) ([]models.Tag, error) {
	var out []models.Tag
	if err := c.orm(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return out, nil
}

func (c *Catalog) CreateTag(ctx context.Context, caller rbac.Identity, in TagInput) (models.Tag, error) {
	if err := requireAdmin(caller, "manage tags"); err != nil {
		return models.Tag{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return models.Tag{}, err
	}
	if in.Color == "" {
		in.Color = defaultTagColor
	}

	t := models.Tag{ID: c.newID(), Name: in.Name, Color: in.Color}
	if err := c.orm(ctx).Create(&t).Error; err != nil {
		return models.Tag{}, fmt.Errorf("create tag: %w", err)
	}
	return t, nil
}

// DeleteTag removes the tag and takes it out of every worker's tag set.
func (c *Catalog) DeleteTag(ctx context.Context, caller rbac.Identity, id string) error {
	if err := requireAdmin(caller, "manage tags"); err != nil {
		return err
	}
	return c.orm(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteByID(tx, &models.Tag{}, id, "tag"); err != nil {
			return err
		}
		return tx.Where("tag_id = ?", id).Delete(&models.WorkerTag{}).Error
	})
}

func deleteByID(db *gorm.DB, model any, id, what string) error {
	res := db.Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", what, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("%s not found", what)
	}
	return nil
}
