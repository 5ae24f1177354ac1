package crm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"workforce_crm/internal/apperr"
	"workforce_crm/internal/models"
	"workforce_crm/internal/rbac"
	"workforce_crm/internal/testdb"
)

// stepClock advances one second per reading so orderings are deterministic.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	svc   *Service
	clock *stepClock
	admin rbac.Identity
	recA  rbac.Identity
	recB  rbac.Identity
	recC  rbac.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testdb.Open(t)
	clock := &stepClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	f := &fixture{svc: New(gdb, WithClock(clock.Now)), clock: clock}

	mk := func(id, email, name string, role rbac.Role) rbac.Identity {
		u := models.User{ID: id, Email: email, Name: name, Role: role, CreatedAt: clock.Now()}
		if err := gdb.Create(&u).Error; err != nil {
			t.Fatalf("create user %s: %v", email, err)
		}
		return u.Identity()
	}
	f.admin = mk("u-admin", "admin@example.com", "Admin", rbac.RoleAdmin)
	f.recA = mk("u-a", "anna@example.com", "Anna Recruiter", rbac.RoleRecruiter)
	f.recB = mk("u-b", "bela@example.com", "", rbac.RoleRecruiter)
	f.recC = mk("u-c", "cili@example.com", "Cili", rbac.RoleRecruiter)
	return f
}

func (f *fixture) worker(t *testing.T, caller rbac.Identity, name string) models.Worker {
	t.Helper()
	w, err := f.svc.Workers.Create(context.Background(), caller, WorkerInput{Name: name})
	if err != nil {
		t.Fatalf("create worker %q: %v", name, err)
	}
	return w
}

func (f *fixture) project(t *testing.T, name, date string, recruiters ...string) models.Project {
	t.Helper()
	p, err := f.svc.Projects.Create(context.Background(), f.admin, ProjectInput{Name: name, Date: date, RecruiterIDs: recruiters})
	if err != nil {
		t.Fatalf("create project %q: %v", name, err)
	}
	return p
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("expected %v error, got %v (%v)", kind, got, err)
	}
}

func TestRequireAdmin(t *testing.T) {
	if err := requireAdmin(rbac.Identity{UserID: "x", Role: rbac.RoleAdmin}, "do it"); err != nil {
		t.Fatalf("admin rejected: %v", err)
	}
	err := requireAdmin(rbac.Identity{UserID: "x", Role: rbac.RoleRecruiter}, "do it")
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUniq(t *testing.T) {
	got := uniq([]string{"a", "", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("uniq = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("uniq = %v, want %v", got, want)
		}
	}
}
