package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"deal_hunter/identity"
	"deal_hunter/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testRun(started time.Time, addresses ...string) *models.SearchRun {
	run := &models.SearchRun{
		ID:         uuid.New(),
		Query:      models.SearchQuery{Location: "Bastrop, TX", PropertyType: "land", MaxPrice: 60000},
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Status:     models.RunStatusCompleted,
		Stats:      models.RunStats{QueriesBuilt: 5, QueriesRun: 5, RecordsReturned: len(addresses)},
	}
	for i, addr := range addresses {
		addr := addr
		acres := 2.5
		run.Records = append(run.Records, models.PropertyRecord{
			Address:      &addr,
			Price:        45000 + i,
			Acres:        &acres,
			PropertyType: models.PropertyTypeLand,
			Title:        "Land for sale",
			Source:       "LandWatch",
			SourceURL:    "https://www.landwatch.com/pid/" + addr,
			Domain:       "landwatch.com",
			Confidence:   models.ConfidenceHigh,
			FoundAt:      started.UTC(),
		})
	}
	return run
}

func TestSaveRun_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	run := testRun(time.Now().Add(-time.Hour), "1234 County Road 345", "500 Oak St")

	if err := store.SaveRun(run); err != nil {
		t.Fatalf("save: %v", err)
	}

	runs, err := store.RecentRuns(10)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].ID != run.ID || runs[0].Status != models.RunStatusCompleted {
		t.Fatalf("unexpected run: %+v", runs[0])
	}
	if runs[0].Stats.QueriesRun != 5 || runs[0].Query.MaxPrice != 60000 {
		t.Fatalf("stats or query not restored: %+v", runs[0])
	}

	records, err := store.RunRecords(run.ID)
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Address == nil || *records[0].Address != "1234 County Road 345" {
		t.Fatalf("order not preserved: %v", records[0].Address)
	}
	if records[1].Price != 45001 || records[1].Acres == nil || *records[1].Acres != 2.5 {
		t.Fatalf("unexpected record: %+v", records[1])
	}
	if records[0].Beds != nil {
		t.Fatalf("expected nil beds, got %d", *records[0].Beds)
	}
}

func TestSaveRun_Resave(t *testing.T) {
	store := newTestStore(t)
	run := testRun(time.Now(), "1234 County Road 345", "500 Oak St")

	if err := store.SaveRun(run); err != nil {
		t.Fatalf("save: %v", err)
	}
	run.Records = run.Records[:1]
	if err := store.SaveRun(run); err != nil {
		t.Fatalf("resave: %v", err)
	}

	records, err := store.RunRecords(run.ID)
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected records replaced, got %d", len(records))
	}
}

func TestRecentRuns_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	base := time.Now().Add(-24 * time.Hour)

	older := testRun(base)
	newer := testRun(base.Add(time.Hour))
	for _, r := range []*models.SearchRun{older, newer} {
		if err := store.SaveRun(r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	runs, err := store.RecentRuns(1)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != newer.ID {
		t.Fatalf("expected newest run first, got %+v", runs)
	}
}

func TestLogs(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	err := store.SaveLogs([]models.SearchLog{
		{RunID: "run-1", Timestamp: now, Level: models.LogLevelInfo, Source: "executor", Message: "5 queries built"},
		{RunID: "run-1", Timestamp: now.Add(time.Second), Level: models.LogLevelWarn, Source: "cse", Message: "query failed"},
	})
	if err != nil {
		t.Fatalf("save logs: %v", err)
	}
	if err := store.Log("run-2", models.LogLevelInfo, "other run", "executor"); err != nil {
		t.Fatalf("log: %v", err)
	}

	logs, err := store.RunLogs("run-1")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[1].Level != models.LogLevelWarn || logs[1].Source != "cse" || logs[1].Message != "query failed" {
		t.Fatalf("unexpected log: %+v", logs[1])
	}
}

func TestSeenBefore(t *testing.T) {
	store := newTestStore(t)
	first := testRun(time.Now().Add(-time.Hour), "1234 County Road 345")
	second := testRun(time.Now(), "1234 County Road 345", "500 Oak St")

	if err := store.SaveRun(first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveRun(second); err != nil {
		t.Fatalf("save: %v", err)
	}

	fps := []string{identity.Fingerprint(&second.Records[0]), identity.Fingerprint(&second.Records[1])}
	seen, err := store.SeenBefore(second.ID, fps)
	if err != nil {
		t.Fatalf("seen before: %v", err)
	}
	if !seen[fps[0]] {
		t.Fatalf("expected repeat listing to be seen")
	}
	if seen[fps[1]] {
		t.Fatalf("expected new listing to be unseen")
	}
}
