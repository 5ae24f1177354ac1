package crm

import (
	"context"
	"testing"

	"workforce_crm/internal/apperr"
	"workforce_crm/internal/optional"
)

func TestLedgerAddWorker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Spring Intake", "2025-04-01")
	w := f.worker(t, f.recA, "Alice")

	_, err := f.svc.Ledger.AddWorker(ctx, f.admin, "missing", w.ID, nil)
	wantKind(t, err, apperr.KindNotFound)
	_, err = f.svc.Ledger.AddWorker(ctx, f.admin, p.ID, "missing", nil)
	wantKind(t, err, apperr.KindNotFound)

	empty := ""
	a, err := f.svc.Ledger.AddWorker(ctx, f.admin, p.ID, w.ID, &empty)
	if err != nil {
		t.Fatalf("AddWorker: %v", err)
	}
	if a.StatusID != nil || a.AddedBy != f.admin.UserID || a.CreatedAt.IsZero() || !a.UpdatedAt.Equal(a.CreatedAt) {
		t.Fatalf("unexpected assignment %+v", a)
	}

	_, err = f.svc.Ledger.AddWorker(ctx, f.admin, p.ID, w.ID, nil)
	wantKind(t, err, apperr.KindConflict)

	if err := f.svc.Ledger.RemoveWorker(ctx, f.admin, p.ID, w.ID); err != nil {
		t.Fatalf("RemoveWorker: %v", err)
	}
	if _, err := f.svc.Ledger.AddWorker(ctx, f.admin, p.ID, w.ID, nil); err != nil {
		t.Fatalf("re-add after remove: %v", err)
	}
}

func TestLedgerRemoveWorkerMissingPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Spring Intake", "2025-04-01")
	w := f.worker(t, f.recA, "Alice")

	wantKind(t, f.svc.Ledger.RemoveWorker(ctx, f.admin, p.ID, w.ID), apperr.KindNotFound)
}

func TestLedgerUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Spring Intake", "2025-04-01")
	w := f.worker(t, f.recA, "Alice")

	_, err := f.svc.Ledger.UpdateStatus(ctx, f.admin, p.ID, w.ID, "st-1", optional.Value[string]{})
	wantKind(t, err, apperr.KindNotFound)

	added, err := f.svc.Ledger.AddWorker(ctx, f.admin, p.ID, w.ID, nil)
	if err != nil {
		t.Fatalf("AddWorker: %v", err)
	}

	got, err := f.svc.Ledger.UpdateStatus(ctx, f.admin, p.ID, w.ID, "st-1", optional.Of("called twice"))
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.StatusID == nil || *got.StatusID != "st-1" || got.Notes != "called twice" {
		t.Fatalf("unexpected assignment %+v", got)
	}
	if !got.UpdatedAt.After(added.UpdatedAt) {
		t.Fatalf("updated_at not refreshed: %v <= %v", got.UpdatedAt, added.UpdatedAt)
	}

	// Notes survive when not supplied; an empty status clears it.
	got, err = f.svc.Ledger.UpdateStatus(ctx, f.admin, p.ID, w.ID, "", optional.Value[string]{})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.StatusID != nil || got.Notes != "called twice" {
		t.Fatalf("unexpected assignment %+v", got)
	}

	detail, err := f.svc.Views.ProjectDetail(ctx, f.admin, p)
	if err != nil {
		t.Fatalf("ProjectDetail: %v", err)
	}
	if len(detail.Workers) != 1 || detail.Workers[0].Notes != "called twice" || detail.Workers[0].StatusID != "" {
		t.Fatalf("stored assignment = %+v", detail.Workers)
	}
}
