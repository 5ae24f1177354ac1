package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"workforce_crm/internal/models"
	"workforce_crm/internal/rbac"
)

const (
	AdminEmail     = "admin@example.com"
	adminPass      = "admin123" // change after first login
	RecruiterEmail = "recruiter@example.com"
	recruiterPass  = "recruiter123"
)

var workerTypes = []struct {
	name      string
	positions []string
}{
	{"Forklift operator", []string{"Reach truck", "Counterbalance", "Order picker"}},
	{"Warehouse", []string{"Picker", "Packer", "Loader"}},
	{"Production", []string{"Line operator", "Quality inspector"}},
	{"Welder", []string{"MIG", "TIG"}},
}

var statuses = []string{"Confirmed", "Arrived", "Did not show up", "Dropped out", "Not suitable"}

var tags = []struct{ name, color string }{
	{"Has car", "#22c55e"},
	{"Speaks English", "#3b82f6"},
	{"Night shift", "#6366f1"},
	{"Reliable", "#f59e0b"},
}

// FirstSetup inserts the bootstrap users and catalog rows. Running it again
// changes nothing.
func FirstSetup(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if err := ensureUser(db, AdminEmail, "Admin User", adminPass, rbac.RoleAdmin); err != nil {
		return err
	}
	if err := ensureUser(db, RecruiterEmail, "Demo Recruiter", recruiterPass, rbac.RoleRecruiter); err != nil {
		return err
	}

	positions := 0
	for _, wt := range workerTypes {
		var t models.WorkerType
		err := db.Where(models.WorkerType{Name: wt.name}).Attrs(models.WorkerType{ID: uuid.NewString()}).FirstOrCreate(&t).Error
		if err != nil {
			return fmt.Errorf("seed worker type %q: %w", wt.name, err)
		}
		for _, name := range wt.positions {
			var p models.Position
			err := db.Where(models.Position{Name: name, WorkerTypeID: t.ID}).Attrs(models.Position{ID: uuid.NewString()}).FirstOrCreate(&p).Error
			if err != nil {
				return fmt.Errorf("seed position %q: %w", name, err)
			}
			positions++
		}
	}

	for _, name := range statuses {
		var s models.Status
		if err := db.Where(models.Status{Name: name}).Attrs(models.Status{ID: uuid.NewString()}).FirstOrCreate(&s).Error; err != nil {
			return fmt.Errorf("seed status %q: %w", name, err)
		}
	}

	for _, tg := range tags {
		var t models.Tag
		if err := db.Where(models.Tag{Name: tg.name}).Attrs(models.Tag{ID: uuid.NewString(), Color: tg.color}).FirstOrCreate(&t).Error; err != nil {
			return fmt.Errorf("seed tag %q: %w", tg.name, err)
		}
	}

	log.Info().
		Str("admin", AdminEmail).
		Str("recruiter", RecruiterEmail).
		Int("worker_types", len(workerTypes)).
		Int("positions", positions).
		Int("statuses", len(statuses)).
		Int("tags", len(tags)).
		Msg("seed ok")
	return nil
}

func ensureUser(db *gorm.DB, email, name, password string, role rbac.Role) error {
	var n int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&u).Error; err != nil {
		return fmt.Errorf("seed user %s: %w", email, err)
	}
	return nil
}
