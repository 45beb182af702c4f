package store

import (
	"context"
	"strings"
	"testing"

	"taskboard/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(MemoryDSN, WithClock(fixedClock))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_SchemaRejectsUnknownPriority(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.db.Exec(`
		INSERT INTO tasks (title, description, category, priority, deadline, completed, created_date)
		VALUES ('x', '', 'Study', 'Urgent', '2026-03-12', FALSE, '2026-03-10')
	`)
	if err == nil {
		t.Fatal("expected CHECK constraint to reject priority")
	}
}

func TestSQLiteStore_DatesRoundTripAsText(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	task, err := store.AddTask(ctx, models.TaskFields{
		Title:    "Test",
		Category: "Study",
		Priority: models.PriorityMedium,
		Deadline: "2026-12-31",
	})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	var deadline, created string
	err = store.db.QueryRow(`SELECT deadline, created_date FROM tasks WHERE id = ?`, task.ID).Scan(&deadline, &created)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if deadline != "2026-12-31" {
		t.Errorf("expected deadline 2026-12-31, got %q", deadline)
	}
	if created != "2026-03-10" {
		t.Errorf("expected created_date 2026-03-10, got %q", created)
	}
}

func TestSQLiteStore_SharesOneConnection(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	// A second pooled connection would see an empty :memory: database.
	for i := 0; i < 5; i++ {
		if _, err := store.AddTask(ctx, models.TaskFields{
			Title:    "Task",
			Category: "Study",
			Priority: models.PriorityLow,
			Deadline: "2026-03-12",
		}); err != nil {
			t.Fatalf("AddTask failed: %v", err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 5 {
		t.Errorf("expected 5 tasks, got %d", stats.Total)
	}
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		key      models.SortKey
		contains string
	}{
		{key: models.SortByDeadline, contains: "deadline ASC, id ASC"},
		{key: models.SortByPriority, contains: "WHEN 'High' THEN 1"},
		{key: models.SortByCreated, contains: "created_date DESC, id ASC"},
		{key: "", contains: "ORDER BY id ASC"},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := orderClause(tt.key)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("expected %q to contain %q", got, tt.contains)
			}
		})
	}
}

func TestSQLiteStore_CloseReleasesDatabase(t *testing.T) {
	store, err := NewSQLiteStore(MemoryDSN)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := store.Stats(context.Background()); err == nil {
		t.Error("expected error after Close")
	}
}
