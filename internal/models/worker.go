package models

import "time"

type Category string

const (
	CategoryRegistered    Category = "registered"
	CategoryColdApplicant Category = "cold_applicant"
	CategoryFormApplicant Category = "form_applicant"
	CategoryJobApplicant  Category = "job_applicant"
	CategoryCommuter      Category = "commuter"
	CategoryAccommodated  Category = "accommodated"
)

// Categories lists the fixed category set in export order.
var Categories = []Category{
	CategoryRegistered,
	CategoryColdApplicant,
	CategoryFormApplicant,
	CategoryJobApplicant,
	CategoryCommuter,
	CategoryAccommodated,
}

func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

type Worker struct {
	ID                 string    `gorm:"size:36;primaryKey"`
	Name               string    `gorm:"size:200;not null"`
	Phone              string    `gorm:"size:64"`
	WorkerTypeID       string    `gorm:"size:36;index"`
	Position           string    `gorm:"size:200"`
	PositionExperience string    `gorm:"type:text"`
	Category           Category  `gorm:"size:32;index;not null"`
	Address            string    `gorm:"size:255"`
	Email              string    `gorm:"size:255"`
	Experience         string    `gorm:"type:text"`
	Notes              string    `gorm:"type:text"`
	OwnerID            string    `gorm:"size:36;index;not null"`
	CreatedAt          time.Time `gorm:"index"`

	// TagIDs is loaded from worker_tags; it is never written through this struct.
	TagIDs []string `gorm:"-"`
}

func (w Worker) GetOwnerID() string { return w.OwnerID }

// WorkerTag is one membership in a worker's tag set.
type WorkerTag struct {
	WorkerID  string `gorm:"size:36;primaryKey"`
	TagID     string `gorm:"size:36;primaryKey;index"`
	CreatedAt time.Time
}
