package models

import (
	"time"

	"workforce_crm/internal/rbac"
)

type User struct {
	ID           string    `gorm:"size:36;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string    `gorm:"size:200" json:"name"`
	Role         rbac.Role `gorm:"size:16;not null;default:recruiter" json:"role"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// DisplayName is the name shown next to records the user owns.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

func (u User) Identity() rbac.Identity {
	return rbac.Identity{UserID: u.ID, Role: u.Role}
}
