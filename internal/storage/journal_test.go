package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"financas/internal/core"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "nested", "journal.db"), nil)
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalSaveAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	muts := []core.Mutation{
		{Resource: core.ResourceCategory, Operation: core.OperationCreate, EntityID: core.Int64(1), Title: "Food", Outcome: core.OutcomeOK, At: base},
		{Resource: core.ResourceTransaction, Operation: core.OperationUpdate, EntityID: core.Int64(7), Title: "Luz", Outcome: core.OutcomeOK, At: base.Add(time.Minute)},
		{Resource: core.ResourceTransaction, Operation: core.OperationCreate, Title: "Mercado", Outcome: core.OutcomeError, Error: "connection refused", At: base.Add(2 * time.Minute)},
	}
	for _, m := range muts {
		if _, err := j.Save(ctx, m); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Title != "Mercado" || !got[0].Failed() || got[0].EntityID != nil {
		t.Fatalf("newest = %+v", got[0])
	}
	if got[0].Error != "connection refused" {
		t.Fatalf("error text = %q", got[0].Error)
	}
	if got[1].EntityID == nil || *got[1].EntityID != 7 || !got[1].At.Equal(base.Add(time.Minute)) {
		t.Fatalf("second = %+v", got[1])
	}
}

func TestJournalRejectsUnknownResource(t *testing.T) {
	j := openTestJournal(t)
	_, err := j.Save(context.Background(), core.Mutation{Resource: "budget", Operation: core.OperationCreate, Outcome: core.OutcomeOK})
	if err == nil {
		t.Fatal("expected constraint violation")
	}
}

func TestJournalReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := OpenJournal(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := j.Save(context.Background(), core.Mutation{
		Resource: core.ResourceCategory, Operation: core.OperationCreate, Title: "Food", Outcome: core.OutcomeOK,
	}); err != nil {
		t.Fatal(err)
	}
	j.Close()

	j, err = OpenJournal(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()
	got, err := j.Recent(context.Background(), 10)
	if err != nil || len(got) != 1 {
		t.Fatalf("Recent after reopen = %v, %v", got, err)
	}
	if err := j.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
