package store

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// backends returns one fresh store per implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqliteStore, err := NewSQLiteStore(MemoryDSN, WithClock(fixedClock))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(WithClock(fixedClock)),
		"sqlite": sqliteStore,
	}
}

func eachBackend(t *testing.T, fn func(t *testing.T, s Store)) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			fn(t, s)
		})
	}
}

func fields(title, category string, priority models.Priority, deadline models.Date) models.TaskFields {
	return models.TaskFields{
		Title:    title,
		Category: category,
		Priority: priority,
		Deadline: deadline,
	}
}

func mustAdd(t *testing.T, s Store, f models.TaskFields) *models.Task {
	t.Helper()
	task, err := s.AddTask(context.Background(), f)
	require.NoError(t, err)
	return task
}

func listAll(t *testing.T, s Store) []models.Task {
	t.Helper()
	tasks, err := s.ListTasks(context.Background(), models.Filter{}, "")
	require.NoError(t, err)
	return tasks
}

func taskTitles(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestAddTask_AssignsDefaults(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		task := mustAdd(t, s, models.TaskFields{
			Title:       "  Write report  ",
			Description: " draft ",
			Category:    "Study",
			Priority:    models.PriorityHigh,
			Deadline:    "2026-03-12",
		})

		assert.Equal(t, int64(1), task.ID)
		assert.Equal(t, "Write report", task.Title)
		assert.Equal(t, "draft", task.Description)
		assert.False(t, task.Completed)
		assert.Equal(t, models.Date("2026-03-10"), task.CreatedDate)

		all := listAll(t, s)
		require.Len(t, all, 1)
		assert.Equal(t, *task, all[0])
	})
}

func TestAddTask_ValidationLeavesStoreUnchanged(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		mustAdd(t, s, fields("Keep", "Study", models.PriorityLow, "2026-03-12"))

		invalid := []models.TaskFields{
			fields("", "Study", models.PriorityLow, "2026-03-12"),
			fields("   ", "Study", models.PriorityLow, "2026-03-12"),
			fields("X", "", models.PriorityLow, "2026-03-12"),
			fields("X", "Study", "", "2026-03-12"),
			fields("X", "Study", "Urgent", "2026-03-12"),
			fields("X", "Study", models.PriorityLow, ""),
			fields("X", "Study", models.PriorityLow, "next week"),
		}
		for _, f := range invalid {
			_, err := s.AddTask(context.Background(), f)
			var vErr *models.ValidationError
			assert.ErrorAs(t, err, &vErr, "fields %+v", f)
		}

		assert.Equal(t, []string{"Keep"}, taskTitles(listAll(t, s)))
	})
}

func TestAddTask_IDsNeverReused(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		mustAdd(t, s, fields("A", "Study", models.PriorityLow, "2026-03-12"))
		mustAdd(t, s, fields("B", "Study", models.PriorityLow, "2026-03-12"))
		c := mustAdd(t, s, fields("C", "Study", models.PriorityLow, "2026-03-12"))

		require.NoError(t, s.DeleteTask(ctx, c.ID))

		d := mustAdd(t, s, fields("D", "Study", models.PriorityLow, "2026-03-12"))
		assert.Equal(t, int64(4), d.ID)
	})
}

func TestAddRemove_IDsStayUnique(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rng := rand.New(rand.NewSource(42))

		var live []int64
		for i := 0; i < 200; i++ {
			if len(live) > 0 && rng.Intn(3) == 0 {
				idx := rng.Intn(len(live))
				require.NoError(t, s.DeleteTask(ctx, live[idx]))
				live = append(live[:idx], live[idx+1:]...)
				continue
			}
			task := mustAdd(t, s, fields("T", "Study", models.PriorityLow, "2026-03-12"))
			live = append(live, task.ID)
		}

		seen := make(map[int64]bool)
		for _, task := range listAll(t, s) {
			assert.False(t, seen[task.ID], "duplicate id %d", task.ID)
			seen[task.ID] = true
		}
		assert.Len(t, seen, len(live))
	})
}

func TestUpdateTask_PreservesIdentity(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		orig := mustAdd(t, s, fields("Old", "Study", models.PriorityLow, "2026-03-12"))
		require.NoError(t, s.ToggleTaskComplete(ctx, orig.ID))

		next := models.TaskFields{
			Title:       "New",
			Description: "details",
			Category:    "Project",
			Priority:    models.PriorityHigh,
			Deadline:    "2026-04-01",
		}
		updated, err := s.UpdateTask(ctx, orig.ID, next)
		require.NoError(t, err)

		assert.Equal(t, orig.ID, updated.ID)
		assert.True(t, updated.Completed)
		assert.Equal(t, orig.CreatedDate, updated.CreatedDate)
		assert.Equal(t, next, updated.Fields())

		got, err := s.GetTask(ctx, orig.ID)
		require.NoError(t, err)
		assert.Equal(t, *updated, *got)
	})
}

func TestUpdateTask_NotFound(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		_, err := s.UpdateTask(context.Background(), 99, fields("X", "Study", models.PriorityLow, "2026-03-12"))
		var nfErr *models.NotFoundError
		require.ErrorAs(t, err, &nfErr)
		assert.Equal(t, int64(99), nfErr.ID)

		// A missing id wins over invalid fields.
		_, err = s.UpdateTask(context.Background(), 99, models.TaskFields{})
		assert.ErrorAs(t, err, &nfErr)
	})
}

func TestUpdateTask_ValidationLeavesTaskUnchanged(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		orig := mustAdd(t, s, fields("Old", "Study", models.PriorityLow, "2026-03-12"))

		_, err := s.UpdateTask(ctx, orig.ID, fields("", "Project", models.PriorityHigh, "2026-04-01"))
		var vErr *models.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "title", vErr.Field)

		got, err := s.GetTask(ctx, orig.ID)
		require.NoError(t, err)
		assert.Equal(t, *orig, *got)
	})
}

func TestDeleteTask(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		a := mustAdd(t, s, fields("A", "Study", models.PriorityLow, "2026-03-12"))
		mustAdd(t, s, fields("B", "Study", models.PriorityLow, "2026-03-12"))

		require.NoError(t, s.DeleteTask(ctx, a.ID))
		assert.Equal(t, []string{"B"}, taskTitles(listAll(t, s)))

		_, err := s.GetTask(ctx, a.ID)
		var nfErr *models.NotFoundError
		assert.ErrorAs(t, err, &nfErr)
	})
}

func TestDeleteTask_MissingIDIsNoOp(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		mustAdd(t, s, fields("A", "Study", models.PriorityLow, "2026-03-12"))
		mustAdd(t, s, fields("B", "College", models.PriorityHigh, "2026-03-14"))
		before := listAll(t, s)

		require.NoError(t, s.DeleteTask(ctx, 42))

		assert.Equal(t, before, listAll(t, s))
	})
}

func TestToggleTaskComplete(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		task := mustAdd(t, s, fields("A", "Study", models.PriorityLow, "2026-03-12"))

		require.NoError(t, s.ToggleTaskComplete(ctx, task.ID))
		got, err := s.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.True(t, got.Completed)

		require.NoError(t, s.ToggleTaskComplete(ctx, task.ID))
		got, err = s.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.False(t, got.Completed)
	})
}

func TestToggleTaskComplete_MissingIDIsNoOp(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		mustAdd(t, s, fields("A", "Study", models.PriorityLow, "2026-03-12"))
		before := listAll(t, s)

		require.NoError(t, s.ToggleTaskComplete(context.Background(), 7))

		assert.Equal(t, before, listAll(t, s))
	})
}

func TestListTasks_CategoryAndPriority(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		mustAdd(t, s, fields("A", "Study", models.PriorityHigh, "2026-03-12"))
		mustAdd(t, s, fields("B", "Study", models.PriorityLow, "2026-03-12"))
		mustAdd(t, s, fields("C", "Project", models.PriorityHigh, "2026-03-12"))

		tasks, err := s.ListTasks(context.Background(), models.Filter{Category: "Study"}, models.SortByPriority)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, taskTitles(tasks))
	})
}

func TestListTasks_SortKeys(t *testing.T) {
	load := func(t *testing.T, s Store) {
		err := s.LoadTasks(context.Background(), []models.Task{
			{Title: "A", Category: "Study", Priority: models.PriorityLow, Deadline: "2026-03-05", CreatedDate: "2026-03-01"},
			{Title: "B", Category: "Project", Priority: models.PriorityHigh, Deadline: "2026-03-03", CreatedDate: "2026-03-02", Completed: true},
			{Title: "C", Category: "Study", Priority: models.PriorityHigh, Deadline: "2026-03-05", CreatedDate: "2026-03-02"},
			{Title: "D", Category: "Personal", Priority: models.PriorityMedium, Deadline: "2026-03-01", CreatedDate: "2026-03-01"},
		})
		require.NoError(t, err)
	}

	tests := []struct {
		key      models.SortKey
		filter   models.Filter
		expected []string
	}{
		{key: models.SortByDeadline, expected: []string{"D", "B", "A", "C"}},
		{key: models.SortByPriority, expected: []string{"B", "C", "D", "A"}},
		{key: models.SortByCreated, expected: []string{"B", "C", "A", "D"}},
		{key: "bogus", expected: []string{"A", "B", "C", "D"}},
		{key: models.SortByDeadline, filter: models.Filter{Status: models.StatusPending}, expected: []string{"D", "A", "C"}},
		{key: models.SortByDeadline, filter: models.Filter{Status: models.StatusCompleted}, expected: []string{"B"}},
		{key: models.SortByDeadline, filter: models.Filter{Priority: models.PriorityHigh, Category: models.Any}, expected: []string{"B", "C"}},
	}

	eachBackend(t, func(t *testing.T, s Store) {
		load(t, s)
		for _, tt := range tests {
			tasks, err := s.ListTasks(context.Background(), tt.filter, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, taskTitles(tasks), "key=%s filter=%+v", tt.key, tt.filter)
		}
	})
}

func TestListTasks_ReturnsCopy(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		mustAdd(t, s, fields("A", "Study", models.PriorityLow, "2026-03-12"))

		tasks := listAll(t, s)
		tasks[0].Title = "mutated"
		tasks[0].Completed = true

		again := listAll(t, s)
		assert.Equal(t, "A", again[0].Title)
		assert.False(t, again[0].Completed)
	})
}

func TestListTasks_AddedTaskAppearsOnce(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		mustAdd(t, s, fields("A", "Study", models.PriorityLow, "2026-03-12"))
		added := mustAdd(t, s, fields("B", "Study", models.PriorityLow, "2026-03-12"))

		count := 0
		for _, task := range listAll(t, s) {
			if task.ID == added.ID {
				count++
				assert.False(t, task.Completed)
				assert.Equal(t, models.DateOf(fixedNow), task.CreatedDate)
			}
		}
		assert.Equal(t, 1, count)
	})
}

func TestStats(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.Stats{}, stats)

		var first *models.Task
		for _, title := range []string{"A", "B", "C", "D"} {
			task := mustAdd(t, s, fields(title, "Study", models.PriorityLow, "2026-03-12"))
			if first == nil {
				first = task
			}
		}
		require.NoError(t, s.ToggleTaskComplete(ctx, first.ID))

		stats, err = s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.Stats{Total: 4, Completed: 1, Pending: 3, CompletionRate: 25}, stats)
	})
}

func TestUrgentTasks(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		mustAdd(t, s, fields("today", "Study", models.PriorityLow, "2026-03-10"))
		mustAdd(t, s, fields("tomorrow", "Study", models.PriorityLow, "2026-03-11"))
		done := mustAdd(t, s, fields("tomorrow done", "Study", models.PriorityLow, "2026-03-11"))
		mustAdd(t, s, fields("later", "Study", models.PriorityLow, "2026-03-12"))
		require.NoError(t, s.ToggleTaskComplete(ctx, done.ID))

		urgent, err := s.UrgentTasks(ctx, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, []string{"tomorrow"}, taskTitles(urgent))

		// Urgency is derived; the main listing is untouched.
		assert.Len(t, listAll(t, s), 4)
	})
}

func TestSeed(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		require.NoError(t, Seed(context.Background(), s, fixedNow))

		tasks := listAll(t, s)
		require.Len(t, tasks, 5)
		for i, task := range tasks {
			assert.Equal(t, int64(i+1), task.ID)
		}
		assert.True(t, tasks[4].Completed)
		assert.Equal(t, models.Date("2026-03-04"), tasks[3].CreatedDate)
		assert.Equal(t, models.Date("2026-03-10"), tasks[2].Deadline)

		next := mustAdd(t, s, fields("After seed", "Study", models.PriorityLow, "2026-03-12"))
		assert.Equal(t, int64(6), next.ID)
	})
}
