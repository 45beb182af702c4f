package models

import (
	"sort"
	"strings"
)

// Any matches every value in a Filter field.
const Any = "all"

// Status selects tasks by completion state.
type Status string

const (
	StatusAny       Status = Any
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

// SortKey selects the ordering of a task listing.
type SortKey string

const (
	SortByDeadline SortKey = "deadline"
	SortByPriority SortKey = "priority"
	SortByCreated  SortKey = "created"
)

// Filter is a set of equality predicates. Empty or "all" fields match anything.
type Filter struct {
	Category string
	Priority Priority
	Status   Status
}

// Match reports whether the task passes every predicate of the filter.
func (f Filter) Match(t *Task) bool {
	if !isAny(f.Category) && t.Category != f.Category {
		return false
	}
	if !isAny(string(f.Priority)) && t.Priority != f.Priority {
		return false
	}
	switch f.Status {
	case StatusCompleted:
		return t.Completed
	case StatusPending:
		return !t.Completed
	}
	return true
}

func isAny(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, Any)
}

// SortTasks orders tasks in place by key. The sort is stable, so ties keep their
// incoming order; an unknown key leaves the slice untouched.
func SortTasks(tasks []Task, key SortKey) {
	var less func(a, b *Task) bool
	switch key {
	case SortByDeadline:
		less = func(a, b *Task) bool { return a.Deadline < b.Deadline }
	case SortByPriority:
		less = func(a, b *Task) bool { return a.PriorityOrder() < b.PriorityOrder() }
	case SortByCreated:
		less = func(a, b *Task) bool { return a.CreatedDate > b.CreatedDate }
	default:
		return
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return less(&tasks[i], &tasks[j])
	})
}

// Stats summarizes the task collection.
type Stats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	CompletionRate int `json:"completion_rate_percent"`
}

// ComputeStats counts tasks and derives the completion rate, rounded half up.
func ComputeStats(tasks []Task) Stats {
	s := Stats{Total: len(tasks)}
	for i := range tasks {
		if tasks[i].Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	s.CompletionRate = CompletionRate(s.Completed, s.Total)
	return s
}

// CompletionRate returns round(completed/total*100) using integer arithmetic,
// or 0 when total is 0.
func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return (completed*200 + total) / (2 * total)
}
