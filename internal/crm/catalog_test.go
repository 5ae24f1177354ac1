package crm

import (
	"context"
	"testing"

	"workforce_crm/internal/apperr"
	"workforce_crm/internal/models"
)

func TestCatalogMutationsAreAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Catalog.CreateWorkerType(ctx, f.recA, NamedInput{Name: "Forklift"})
	wantKind(t, err, apperr.KindForbidden)
	_, err = f.svc.Catalog.CreateStatus(ctx, f.recA, NamedInput{Name: "Confirmed"})
	wantKind(t, err, apperr.KindForbidden)
	_, err = f.svc.Catalog.CreateTag(ctx, f.recA, TagInput{Name: "Night"})
	wantKind(t, err, apperr.KindForbidden)
	_, err = f.svc.Catalog.CreatePosition(ctx, f.recA, PositionInput{Name: "Driver", WorkerTypeID: "x"})
	wantKind(t, err, apperr.KindForbidden)

	wantKind(t, f.svc.Catalog.DeleteWorkerType(ctx, f.recA, "x"), apperr.KindForbidden)
	wantKind(t, f.svc.Catalog.DeletePosition(ctx, f.recA, "x"), apperr.KindForbidden)
	wantKind(t, f.svc.Catalog.DeleteStatus(ctx, f.recA, "x"), apperr.KindForbidden)
	wantKind(t, f.svc.Catalog.DeleteTag(ctx, f.recA, "x"), apperr.KindForbidden)
}

func TestCatalogValidationAndMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Catalog.CreateWorkerType(ctx, f.admin, NamedInput{Name: "  "})
	wantKind(t, err, apperr.KindValidation)
	_, err = f.svc.Catalog.CreatePosition(ctx, f.admin, PositionInput{Name: "Driver", WorkerTypeID: "missing"})
	wantKind(t, err, apperr.KindNotFound)

	wantKind(t, f.svc.Catalog.DeleteWorkerType(ctx, f.admin, "missing"), apperr.KindNotFound)
	wantKind(t, f.svc.Catalog.DeletePosition(ctx, f.admin, "missing"), apperr.KindNotFound)
	wantKind(t, f.svc.Catalog.DeleteStatus(ctx, f.admin, "missing"), apperr.KindNotFound)
	wantKind(t, f.svc.Catalog.DeleteTag(ctx, f.admin, "missing"), apperr.KindNotFound)
}

func TestDeleteWorkerTypeCascadesPositions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fork, err := f.svc.Catalog.CreateWorkerType(ctx, f.admin, NamedInput{Name: "Forklift"})
	if err != nil {
		t.Fatalf("CreateWorkerType: %v", err)
	}
	weld, err := f.svc.Catalog.CreateWorkerType(ctx, f.admin, NamedInput{Name: "Welder"})
	if err != nil {
		t.Fatalf("CreateWorkerType: %v", err)
	}
	for _, in := range []PositionInput{
		{Name: "Reach truck", WorkerTypeID: fork.ID},
		{Name: "Counterbalance", WorkerTypeID: fork.ID},
		{Name: "TIG", WorkerTypeID: weld.ID},
	} {
		if _, err := f.svc.Catalog.CreatePosition(ctx, f.admin, in); err != nil {
			t.Fatalf("CreatePosition: %v", err)
		}
	}

	forkPositions, err := f.svc.Catalog.Positions(ctx, fork.ID)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	if len(forkPositions) != 2 || forkPositions[0].WorkerTypeName != "Forklift" {
		t.Fatalf("forklift positions = %+v", forkPositions)
	}

	if err := f.svc.Catalog.DeleteWorkerType(ctx, f.admin, fork.ID); err != nil {
		t.Fatalf("DeleteWorkerType: %v", err)
	}
	all, err := f.svc.Catalog.Positions(ctx, "")
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	if len(all) != 1 || all[0].Name != "TIG" {
		t.Fatalf("positions after cascade = %+v", all)
	}
	types, err := f.svc.Catalog.WorkerTypes(ctx)
	if err != nil {
		t.Fatalf("WorkerTypes: %v", err)
	}
	if len(types) != 1 || types[0].ID != weld.ID {
		t.Fatalf("worker types = %+v", types)
	}
}

func TestDeleteTagRemovesMemberships(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tag, err := f.svc.Catalog.CreateTag(ctx, f.admin, TagInput{Name: "Night"})
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if tag.Color != defaultTagColor {
		t.Fatalf("color = %q", tag.Color)
	}
	w := f.worker(t, f.recA, "Alice")
	if err := f.svc.Workers.AddTag(ctx, f.recA, w.ID, tag.ID); err != nil {
		t.Fatalf("AddTag: %v", err)
	}

	if err := f.svc.Catalog.DeleteTag(ctx, f.admin, tag.ID); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	got, err := f.svc.Workers.Get(ctx, f.recA, w.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.TagIDs) != 0 {
		t.Fatalf("tag ids after delete = %v", got.TagIDs)
	}
}

func TestStatusesReadableByRecruiters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Confirmed", "Arrived"} {
		if _, err := f.svc.Catalog.CreateStatus(ctx, f.admin, NamedInput{Name: name}); err != nil {
			t.Fatalf("CreateStatus: %v", err)
		}
	}
	got, err := f.svc.Catalog.Statuses(ctx)
	if err != nil {
		t.Fatalf("Statuses: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Arrived" {
		t.Fatalf("statuses = %+v", got)
	}

	if err := f.svc.Catalog.DeleteStatus(ctx, f.admin, got[0].ID); err != nil {
		t.Fatalf("DeleteStatus: %v", err)
	}
	var n int64
	f.svc.Catalog.db.Model(&models.Status{}).Count(&n)
	if n != 1 {
		t.Fatalf("statuses left = %d", n)
	}
}
