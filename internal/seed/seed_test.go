package seed

import (
	"context"
	"testing"

	"workforce_crm/internal/models"
	"workforce_crm/internal/rbac"
	"workforce_crm/internal/testdb"
)

func TestFirstSetupIsIdempotent(t *testing.T) {
	gdb := testdb.Open(t)
	ctx := context.Background()

	for range 2 {
		if err := FirstSetup(ctx, gdb); err != nil {
			t.Fatalf("FirstSetup: %v", err)
		}
	}

	counts := []struct {
		model any
		want  int64
	}{
		{&models.User{}, 2},
		{&models.WorkerType{}, int64(len(workerTypes))},
		{&models.Position{}, 10},
		{&models.Status{}, int64(len(statuses))},
		{&models.Tag{}, int64(len(tags))},
	}
	for _, c := range counts {
		var n int64
		if err := gdb.Model(c.model).Count(&n).Error; err != nil {
			t.Fatalf("count %T: %v", c.model, err)
		}
		if n != c.want {
			t.Fatalf("%T count = %d, want %d", c.model, n, c.want)
		}
	}

	var admin models.User
	if err := gdb.Where("email = ?", AdminEmail).First(&admin).Error; err != nil {
		t.Fatalf("admin: %v", err)
	}
	if admin.Role != rbac.RoleAdmin || admin.PasswordHash == "" {
		t.Fatalf("admin = %+v", admin)
	}
}
