// Package audit records who changed what and serves the trail back to admins.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"workforce_crm/internal/models"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Entry describes one mutation. Metadata is stored as JSON.
type Entry struct {
	UserID        string
	InitiatorName string
	Action        string // e.g. "worker.create"
	ResourceType  string
	ResourceID    string
	Metadata      map[string]any
	IP            string
	UserAgent     string
}

type Recorder struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Record appends e to the trail.
func (r *Recorder) Record(ctx context.Context, e Entry) error {
	meta := e.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode audit metadata: %w", err)
	}

	row := models.AuditLog{
		UserID:        e.UserID,
		Action:        e.Action,
		ResourceType:  e.ResourceType,
		ResourceID:    e.ResourceID,
		Metadata:      datatypes.JSON(raw),
		IP:            e.IP,
		InitiatorName: e.InitiatorName,
		UserAgent:     truncate(e.UserAgent, 255),
		CreatedAt:     r.now(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// Query selects one page of the trail, newest first.
type Query struct {
	Limit   int
	AfterID int64 // only rows with a smaller id
	Search  string
}

type Page struct {
	Logs       []models.AuditLog `json:"logs"`
	NextCursor *int64            `json:"next_cursor"`
}

func (r *Recorder) List(ctx context.Context, q Query) (Page, error) {
	limit := q.Limit
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}

	query := r.db.WithContext(ctx).Model(&models.AuditLog{}).Order("id DESC")
	if q.AfterID > 0 {
		query = query.Where("id < ?", q.AfterID)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(initiator_name) LIKE ? OR LOWER(action) LIKE ? OR LOWER(resource_type) LIKE ? OR ip LIKE ?)",
			like, like, like, like)
	}

	var logs []models.AuditLog
	if err := query.Limit(limit + 1).Find(&logs).Error; err != nil {
		return Page{}, fmt.Errorf("list audit logs: %w", err)
	}

	page := Page{Logs: logs}
	if len(logs) > limit {
		page.Logs = logs[:limit]
		next := page.Logs[limit-1].ID
		page.NextCursor = &next
	}
	if page.Logs == nil {
		page.Logs = []models.AuditLog{}
	}
	return page, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
