package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"workforce_crm/internal/apperr"
	"workforce_crm/internal/models"
	"workforce_crm/internal/rbac"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email or a
// wrong password. The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid email or password")

const minPasswordLen = 8

type UserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"`
}

// OwnerStats is the number of workers one user owns.
type OwnerStats struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	WorkerCount int64  `json:"worker_count"`
}

type Users struct {
	deps
}

// Create adds a login. Admin only; role defaults to recruiter and name to
// the local part of the email.
func (u *Users) Create(ctx context.Context, caller rbac.Identity, in UserInput) (models.User, error) {
	if err := requireAdmin(caller, "create users"); err != nil {
		return models.User{}, err
	}

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return models.User{}, err
	}
	role := rbac.RoleRecruiter
	if in.Role != "" {
		r, ok := rbac.ParseRole(in.Role)
		if !ok {
			return models.User{}, apperr.Validation("role must be one of: admin, recruiter")
		}
		role = r
	}
	if in.Name == "" {
		in.Name, _, _ = strings.Cut(in.Email, "@")
	}

	var existing int64
	if err := u.orm(ctx).Model(&models.User{}).Where("email = ?", in.Email).Count(&existing).Error; err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if existing > 0 {
		return models.User{}, apperr.Conflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := u.now()
	user := models.User{
		ID:           u.newID(),
		Email:        in.Email,
		Name:         in.Name,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.orm(ctx).Create(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (u *Users) List(ctx context.Context, caller rbac.Identity) ([]models.User, error) {
	if err := requireAdmin(caller, "list users"); err != nil {
		return nil, err
	}
	var users []models.User
	if err := u.orm(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (u *Users) Get(ctx context.Context, id string) (models.User, error) {
	var user models.User
	if err := u.orm(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return models.User{}, notFound(err, "user")
	}
	return user, nil
}

// Authenticate checks an email/password pair.
func (u *Users) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := u.orm(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// UpdateProfile changes the caller's own display name.
func (u *Users) UpdateProfile(ctx context.Context, caller rbac.Identity, name string) (models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.User{}, apperr.Validation("name is required")
	}
	err := u.orm(ctx).Model(&models.User{}).Where("id = ?", caller.UserID).
		Updates(map[string]any{"name": name, "updated_at": u.now()}).Error
	if err != nil {
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	return u.Get(ctx, caller.UserID)
}

// ChangePassword replaces the caller's password after checking the current one.
func (u *Users) ChangePassword(ctx context.Context, caller rbac.Identity, current, next string) error {
	user, err := u.Get(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperr.Validation("current password is incorrect")
	}
	if len(next) < minPasswordLen {
		return apperr.Validation("new password must be at least %d characters", minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	err = u.orm(ctx).Model(&models.User{}).Where("id = ?", user.ID).
		Updates(map[string]any{"password_hash": string(hash), "updated_at": u.now()}).Error
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// Stats counts workers per owning user, busiest first. Admin only.
func (u *Users) Stats(ctx context.Context, caller rbac.Identity) ([]OwnerStats, error) {
	if err := requireAdmin(caller, "view user stats"); err != nil {
		return nil, err
	}

	var rows []OwnerStats
	err := u.orm(ctx).Table("users").
		Select("users.id AS user_id, users.name AS name, users.email AS email, COUNT(workers.id) AS worker_count").
		Joins("LEFT JOIN workers ON workers.owner_id = users.id").
		Group("users.id, users.name, users.email").
		Order("worker_count DESC").
		Order("users.email ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	for i := range rows {
		if rows[i].Name == "" {
			rows[i].Name = rows[i].Email
		}
	}
	return rows, nil
}
