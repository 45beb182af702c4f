package store

import (
	"context"
	"time"

	"taskboard/internal/models"
)

// Store defines the task collection operations shared by every backend.
type Store interface {
	// Mutations
	AddTask(ctx context.Context, fields models.TaskFields) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, fields models.TaskFields) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	ToggleTaskComplete(ctx context.Context, id int64) error

	// Queries
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	ListTasks(ctx context.Context, filter models.Filter, sortKey models.SortKey) ([]models.Task, error)
	Stats(ctx context.Context) (models.Stats, error)
	UrgentTasks(ctx context.Context, now time.Time) ([]models.Task, error)

	// LoadTasks appends records as given, keeping Completed and CreatedDate and
	// allocating fresh ids. It exists for seeding only.
	LoadTasks(ctx context.Context, tasks []models.Task) error

	// Lifecycle
	Close() error
}

// Option configures a store backend.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock sets the clock used for CreatedDate. The calendar date is taken in
// the location of the returned time.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// prepareFields normalizes and validates fields ahead of a mutation.
func prepareFields(fields models.TaskFields) (models.TaskFields, error) {
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return models.TaskFields{}, err
	}
	return fields, nil
}
