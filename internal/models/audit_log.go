package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID            int64          `gorm:"primaryKey" json:"id"`
	UserID        string         `gorm:"size:36;index" json:"user_id"`    // empty for system actions
	Action        string         `gorm:"size:200;not null" json:"action"` // e.g. "worker.create", "project.assign_recruiter"
	ResourceType  string         `gorm:"size:100" json:"resource_type"`   // e.g. "worker", "project"
	ResourceID    string         `gorm:"size:36;index" json:"resource_id"`
	Metadata      datatypes.JSON `json:"metadata"`
	IP            string         `gorm:"size:64" json:"ip"`
	InitiatorName string         `gorm:"size:255" json:"initiator_name"`
	UserAgent     string         `gorm:"size:255" json:"user_agent"`
	CreatedAt     time.Time      `json:"created_at"`
}
