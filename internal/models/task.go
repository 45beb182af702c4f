package models

import (
	"strings"
	"time"
)

// Priority is the importance level of a task.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Order returns a numeric value for sorting by priority.
// Lower numbers indicate higher priority.
func (p Priority) Order() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 99
	}
}

// Known category labels. The set is open: any non-empty label is accepted.
const (
	CategoryStudy    = "Study"
	CategoryCollege  = "College"
	CategoryProject  = "Project"
	CategoryPersonal = "Personal"
)

// Task represents a single entry in the task list.
type Task struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Priority    Priority `json:"priority"`
	Deadline    Date     `json:"deadline"`
	Completed   bool     `json:"completed"`
	CreatedDate Date     `json:"created_date"`
}

// TaskFields holds the user-editable fields shared by add and update.
type TaskFields struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Priority    Priority `json:"priority"`
	Deadline    Date     `json:"deadline"`
}

// Normalize returns a copy with surrounding whitespace removed from every field.
func (f TaskFields) Normalize() TaskFields {
	return TaskFields{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Category:    strings.TrimSpace(f.Category),
		Priority:    Priority(strings.TrimSpace(string(f.Priority))),
		Deadline:    Date(strings.TrimSpace(string(f.Deadline))),
	}
}

// Validate checks that the fields hold valid values.
func (f TaskFields) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}

	if strings.TrimSpace(f.Category) == "" {
		return &ValidationError{Field: "category", Message: "category is required"}
	}

	if strings.TrimSpace(string(f.Priority)) == "" {
		return &ValidationError{Field: "priority", Message: "priority is required"}
	}
	if !Priority(strings.TrimSpace(string(f.Priority))).Valid() {
		return &ValidationError{Field: "priority", Message: "priority must be 'High', 'Medium', or 'Low'"}
	}

	deadline := strings.TrimSpace(string(f.Deadline))
	if deadline == "" {
		return &ValidationError{Field: "deadline", Message: "deadline is required"}
	}
	if _, err := ParseDate(deadline); err != nil {
		return &ValidationError{Field: "deadline", Message: "deadline must be a date in YYYY-MM-DD format"}
	}

	return nil
}

// Fields returns the user-editable part of the task.
func (t *Task) Fields() TaskFields {
	return TaskFields{
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Priority:    t.Priority,
		Deadline:    t.Deadline,
	}
}

// Apply overwrites the user-editable fields. ID, Completed and CreatedDate are left alone.
func (t *Task) Apply(f TaskFields) {
	t.Title = f.Title
	t.Description = f.Description
	t.Category = f.Category
	t.Priority = f.Priority
	t.Deadline = f.Deadline
}

// PriorityOrder returns a numeric value for sorting by priority.
func (t *Task) PriorityOrder() int {
	return t.Priority.Order()
}

// IsOverdue returns true if the deadline date is before the calendar date of now
// and the task is not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Completed {
		return false
	}
	return t.Deadline < DateOf(now)
}
