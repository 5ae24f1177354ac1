package crm

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"workforce_crm/internal/apperr"
	"workforce_crm/internal/models"
	"workforce_crm/internal/rbac"
	"workforce_crm/internal/testdb"
)

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		caller rbac.Identity
		in     UserInput
		kind   apperr.Kind
	}{
		{name: "recruiter cannot create", caller: f.recA, in: UserInput{Email: "x@example.com", Password: "longenough"}, kind: apperr.KindForbidden},
		{name: "short password", caller: f.admin, in: UserInput{Email: "x@example.com", Password: "short"}, kind: apperr.KindValidation},
		{name: "bad email", caller: f.admin, in: UserInput{Email: "nope", Password: "longenough"}, kind: apperr.KindValidation},
		{name: "bad role", caller: f.admin, in: UserInput{Email: "x@example.com", Password: "longenough", Role: "owner"}, kind: apperr.KindValidation},
		{name: "duplicate email", caller: f.admin, in: UserInput{Email: " ANNA@example.com ", Password: "longenough"}, kind: apperr.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Users.Create(ctx, tt.caller, tt.in)
			wantKind(t, err, tt.kind)
		})
	}

	u, err := f.svc.Users.Create(ctx, f.admin, UserInput{Email: "Dora@Example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Email != "dora@example.com" || u.Name != "dora" || u.Role != rbac.RoleRecruiter || u.PasswordHash == "longenough" {
		t.Fatalf("unexpected user %+v", u)
	}

	if _, err := f.svc.Users.Authenticate(ctx, "dora@example.com", "longenough"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := f.svc.Users.Authenticate(ctx, "dora@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := f.svc.Users.Authenticate(ctx, "ghost@example.com", "longenough"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v", err)
	}
}

func TestAuthenticateDatabaseFailure(t *testing.T) {
	gdb := testdb.Open(t)
	svc := New(gdb)
	if err := gdb.Migrator().DropTable(&models.User{}); err != nil {
		t.Fatalf("drop users: %v", err)
	}

	_, err := svc.Users.Authenticate(context.Background(), "anna@example.com", "whatever")
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want a database error", err)
	}
	if apperr.HTTPStatus(err) != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", apperr.HTTPStatus(err))
	}
}

func TestChangePasswordAndProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Users.Create(ctx, f.admin, UserInput{Email: "dora@example.com", Name: "Dora", Password: "first-pass"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	caller := u.Identity()

	wantKind(t, f.svc.Users.ChangePassword(ctx, caller, "wrong-pass", "second-pass"), apperr.KindValidation)
	wantKind(t, f.svc.Users.ChangePassword(ctx, caller, "first-pass", "short"), apperr.KindValidation)
	if err := f.svc.Users.ChangePassword(ctx, caller, "first-pass", "second-pass"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := f.svc.Users.Authenticate(ctx, u.Email, "second-pass"); err != nil {
		t.Fatalf("Authenticate new password: %v", err)
	}

	_, err = f.svc.Users.UpdateProfile(ctx, caller, "   ")
	wantKind(t, err, apperr.KindValidation)
	got, err := f.svc.Users.UpdateProfile(ctx, caller, " Dora K ")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.Name != "Dora K" || got.Role != rbac.RoleRecruiter {
		t.Fatalf("profile = %+v", got)
	}
}

func TestUserStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.worker(t, f.recA, "Alice")
	f.worker(t, f.recA, "Aron")
	f.worker(t, f.recB, "Bence")

	_, err := f.svc.Users.Stats(ctx, f.recA)
	wantKind(t, err, apperr.KindForbidden)

	stats, err := f.svc.Users.Stats(ctx, f.admin)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	counts := map[string]int64{}
	names := map[string]string{}
	for _, s := range stats {
		counts[s.UserID] = s.WorkerCount
		names[s.UserID] = s.Name
	}
	if counts[f.recA.UserID] != 2 || counts[f.recB.UserID] != 1 || counts[f.recC.UserID] != 0 {
		t.Fatalf("counts = %v", counts)
	}
	if stats[0].UserID != f.recA.UserID {
		t.Fatalf("busiest first, got %+v", stats[0])
	}
	if names[f.recB.UserID] != "bela@example.com" {
		t.Fatalf("nameless user shown as %q", names[f.recB.UserID])
	}
}

func TestListUsersAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Users.List(ctx, f.recA)
	wantKind(t, err, apperr.KindForbidden)

	users, err := f.svc.Users.List(ctx, f.admin)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 4 {
		t.Fatalf("users = %d", len(users))
	}
}
