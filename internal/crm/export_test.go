package crm

import (
	"context"
	"testing"

	"workforce_crm/internal/apperr"
	"workforce_crm/internal/models"
	"workforce_crm/internal/rbac"
)

// groupNames flattens an export into category -> worker names.
func groupNames(groups []CategoryGroup) ([]models.Category, [][]string) {
	var cats []models.Category
	var names [][]string
	for _, g := range groups {
		cats = append(cats, g.Category)
		var ns []string
		for _, w := range g.Workers {
			ns = append(ns, w.Name)
		}
		names = append(names, ns)
	}
	return cats, names
}

func TestExportGroups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	wt, err := f.svc.Catalog.CreateWorkerType(ctx, f.admin, NamedInput{Name: "Forklift"})
	if err != nil {
		t.Fatalf("CreateWorkerType: %v", err)
	}
	mk := func(caller rbac.Identity, name string, cat models.Category) {
		t.Helper()
		if _, err := f.svc.Workers.Create(ctx, caller, WorkerInput{Name: name, Category: cat, WorkerTypeID: wt.ID}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	mk(f.recA, "Zoltan", models.CategoryCommuter)
	mk(f.recA, "Bela", models.CategoryRegistered)
	mk(f.recA, "Adam", models.CategoryCommuter)
	mk(f.recA, "Csaba", models.CategoryColdApplicant)
	mk(f.recB, "Dora", models.CategoryRegistered)

	tests := []struct {
		name      string
		caller    rbac.Identity
		ownerID   string
		wantOwner string
		wantCats  []models.Category
		wantNames [][]string
		wantKind  apperr.Kind
	}{
		{
			name:      "recruiter exports own workers",
			caller:    f.recA,
			wantOwner: f.recA.UserID,
			wantCats:  []models.Category{models.CategoryRegistered, models.CategoryColdApplicant, models.CategoryCommuter},
			wantNames: [][]string{{"Bela"}, {"Csaba"}, {"Adam", "Zoltan"}},
		},
		{
			name:      "recruiter naming self",
			caller:    f.recB,
			ownerID:   f.recB.UserID,
			wantOwner: f.recB.UserID,
			wantCats:  []models.Category{models.CategoryRegistered},
			wantNames: [][]string{{"Dora"}},
		},
		{
			name:      "admin exports another owner",
			caller:    f.admin,
			ownerID:   f.recB.UserID,
			wantOwner: f.recB.UserID,
			wantCats:  []models.Category{models.CategoryRegistered},
			wantNames: [][]string{{"Dora"}},
		},
		{
			name:      "owner without workers",
			caller:    f.recC,
			wantOwner: f.recC.UserID,
		},
		{name: "recruiter naming another owner", caller: f.recA, ownerID: f.recB.UserID, wantKind: apperr.KindForbidden},
		{name: "admin naming missing user", caller: f.admin, ownerID: "nobody", wantKind: apperr.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Workers.ExportGroups(ctx, tt.caller, tt.ownerID)
			if tt.wantKind != 0 {
				wantKind(t, err, tt.wantKind)
				return
			}
			if err != nil {
				t.Fatalf("ExportGroups: %v", err)
			}
			if got.OwnerID != tt.wantOwner || got.Groups == nil {
				t.Fatalf("export = %+v", got)
			}
			cats, names := groupNames(got.Groups)
			if len(cats) != len(tt.wantCats) {
				t.Fatalf("categories = %v, want %v", cats, tt.wantCats)
			}
			for i := range cats {
				if cats[i] != tt.wantCats[i] || !equalIDs(names[i], tt.wantNames[i]) {
					t.Fatalf("group %d = %s %v, want %s %v", i, cats[i], names[i], tt.wantCats[i], tt.wantNames[i])
				}
			}
		})
	}

	got, err := f.svc.Workers.ExportGroups(ctx, f.recA, "")
	if err != nil {
		t.Fatalf("ExportGroups: %v", err)
	}
	if row := got.Groups[0].Workers[0]; row.WorkerTypeName != "Forklift" || got.OwnerName != "Anna Recruiter" {
		t.Fatalf("row = %+v owner %q", row, got.OwnerName)
	}
}

func TestExportAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.worker(t, f.recB, "Dora")
	f.worker(t, f.recA, "Bela")
	f.worker(t, f.recA, "Adam")

	_, err := f.svc.Workers.ExportAll(ctx, f.recA)
	wantKind(t, err, apperr.KindForbidden)

	all, err := f.svc.Workers.ExportAll(ctx, f.admin)
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	// Users without workers are skipped; order follows user creation.
	if len(all) != 2 || all[0].OwnerID != f.recA.UserID || all[1].OwnerID != f.recB.UserID {
		t.Fatalf("owners = %+v", all)
	}
	if all[1].OwnerName != "bela@example.com" {
		t.Fatalf("owner without a name = %q", all[1].OwnerName)
	}
	_, names := groupNames(all[0].Groups)
	if len(names) != 1 || !equalIDs(names[0], []string{"Adam", "Bela"}) {
		t.Fatalf("recruiter A groups = %v", names)
	}
}
