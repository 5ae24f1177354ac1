package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"workforce_crm/internal/testdb"
)

func TestRecordAndPaginate(t *testing.T) {
	r := NewRecorder(testdb.Open(t))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		err := r.Record(ctx, Entry{
			UserID:        "u-admin",
			InitiatorName: "Admin",
			Action:        fmt.Sprintf("worker.update.%d", i),
			ResourceType:  "worker",
			ResourceID:    fmt.Sprintf("w-%d", i),
			Metadata:      map[string]any{"n": i},
			IP:            "10.0.0.1",
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	first, err := r.List(ctx, Query{Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(first.Logs) != 2 || first.Logs[0].ResourceID != "w-5" || first.Logs[1].ResourceID != "w-4" {
		t.Fatalf("first page = %+v", first.Logs)
	}
	if first.NextCursor == nil || *first.NextCursor != first.Logs[1].ID {
		t.Fatalf("next cursor = %v", first.NextCursor)
	}

	var meta map[string]int
	if err := json.Unmarshal(first.Logs[0].Metadata, &meta); err != nil || meta["n"] != 5 {
		t.Fatalf("metadata = %s (%v)", first.Logs[0].Metadata, err)
	}

	second, err := r.List(ctx, Query{Limit: 2, AfterID: *first.NextCursor})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(second.Logs) != 2 || second.Logs[0].ResourceID != "w-3" {
		t.Fatalf("second page = %+v", second.Logs)
	}

	last, err := r.List(ctx, Query{Limit: 2, AfterID: *second.NextCursor})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(last.Logs) != 1 || last.NextCursor != nil {
		t.Fatalf("last page = %+v cursor %v", last.Logs, last.NextCursor)
	}
}

func TestListSearchAndLimitBounds(t *testing.T) {
	r := NewRecorder(testdb.Open(t))
	ctx := context.Background()

	for _, action := range []string{"project.create", "worker.create", "worker.delete"} {
		if err := r.Record(ctx, Entry{Action: action, InitiatorName: "Anna"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	page, err := r.List(ctx, Query{Search: "WORKER"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Logs) != 2 {
		t.Fatalf("search hits = %d", len(page.Logs))
	}

	page, err = r.List(ctx, Query{Limit: 1000})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Logs) != 3 || page.NextCursor != nil {
		t.Fatalf("over-limit falls back to default: %d logs", len(page.Logs))
	}
}
