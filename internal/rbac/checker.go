package rbac

import (
	"slices"
	"strings"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter"
)

// ParseRole normalizes a stored or submitted role value.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleRecruiter:
		return RoleRecruiter, true
	}
	return "", false
}

// Identity is the authenticated caller. It is produced by the auth layer and
// only ever read by the stores.
type Identity struct {
	UserID string
	Role   Role
}

func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }

// WorkerRef is the part of a worker the visibility rule looks at.
type WorkerRef interface {
	GetOwnerID() string
}

// ProjectRef is the part of a project the visibility rule looks at.
type ProjectRef interface {
	GetOwnerID() string
	GetRecruiterIDs() []string
}

// CanAccessWorker reports whether caller may see or mutate w: admins always,
// recruiters only when they own it.
func CanAccessWorker(caller Identity, w WorkerRef) bool {
	if caller.IsAdmin() {
		return true
	}
	return caller.UserID != "" && w.GetOwnerID() == caller.UserID
}

// CanAccessProject reports whether caller may see p: admins, the owner, and
// any recruiter assigned to it.
func CanAccessProject(caller Identity, p ProjectRef) bool {
	if caller.IsAdmin() {
		return true
	}
	if caller.UserID == "" {
		return false
	}
	return p.GetOwnerID() == caller.UserID || slices.Contains(p.GetRecruiterIDs(), caller.UserID)
}
