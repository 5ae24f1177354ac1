package models

import "time"

type Project struct {
	ID              string `gorm:"size:36;primaryKey"`
	Name            string `gorm:"size:200;not null"`
	Date            string `gorm:"size:10;index"` // YYYY-MM-DD
	Location        string `gorm:"size:255"`
	Notes           string `gorm:"type:text"`
	IsClosed        bool   `gorm:"default:false"`
	ExpectedWorkers int    `gorm:"default:0"`
	OwnerID         string `gorm:"size:36;index;not null"`
	CreatedAt       time.Time

	// RecruiterIDs is loaded from project_recruiters.
	RecruiterIDs []string `gorm:"-"`
}

func (p Project) GetOwnerID() string        { return p.OwnerID }
func (p Project) GetRecruiterIDs() []string { return p.RecruiterIDs }

// ProjectRecruiter assigns a recruiter to a project they do not own.
type ProjectRecruiter struct {
	ProjectID string `gorm:"size:36;primaryKey"`
	UserID    string `gorm:"size:36;primaryKey;index"`
	CreatedAt time.Time
}

// ProjectAssignment links one worker to one project. The (project, worker)
// pair is kept unique by a check before insert, not by an index.
type ProjectAssignment struct {
	ID        string    `gorm:"size:36;primaryKey" json:"id"`
	ProjectID string    `gorm:"size:36;index;not null" json:"project_id"`
	WorkerID  string    `gorm:"size:36;index;not null" json:"worker_id"`
	StatusID  *string   `gorm:"size:36" json:"status_id"`
	Notes     string    `gorm:"type:text" json:"notes"`
	AddedBy   string    `gorm:"size:36" json:"added_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
