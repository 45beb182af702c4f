package store

import (
	"context"
	"sync"
	"time"

	"taskboard/internal/models"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore implements the Store interface over a slice kept in insertion order.
type MemoryStore struct {
	mu     sync.RWMutex
	tasks  []models.Task
	lastID int64
	now    func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{now: o.now}
}

// Close is a no-op; the collection lives as long as the store value.
func (s *MemoryStore) Close() error {
	return nil
}

// nextID allocates one past the highest id ever handed out, so ids are never
// reused after a delete.
func (s *MemoryStore) nextID() int64 {
	s.lastID++
	return s.lastID
}

func (s *MemoryStore) indexOf(id int64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// AddTask validates the fields and appends a new open task.
func (s *MemoryStore) AddTask(ctx context.Context, fields models.TaskFields) (*models.Task, error) {
	_ = ctx

	fields, err := prepareFields(fields)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := models.Task{
		ID:          s.nextID(),
		CreatedDate: models.DateOf(s.now()),
	}
	task.Apply(fields)
	s.tasks = append(s.tasks, task)

	return &task, nil
}

// UpdateTask replaces the editable fields of an existing task.
func (s *MemoryStore) UpdateTask(ctx context.Context, id int64, fields models.TaskFields) (*models.Task, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, &models.NotFoundError{ID: id}
	}

	fields, err := prepareFields(fields)
	if err != nil {
		return nil, err
	}

	s.tasks[i].Apply(fields)
	task := s.tasks[i]
	return &task, nil
}

// DeleteTask removes a task. Unknown ids are ignored.
func (s *MemoryStore) DeleteTask(ctx context.Context, id int64) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return nil
}

// ToggleTaskComplete flips the completed flag. Unknown ids are ignored.
func (s *MemoryStore) ToggleTaskComplete(ctx context.Context, id int64) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.tasks[i].Completed = !s.tasks[i].Completed
	}
	return nil
}

// GetTask returns a copy of one task.
func (s *MemoryStore) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, &models.NotFoundError{ID: id}
	}
	task := s.tasks[i]
	return &task, nil
}

// ListTasks returns a new slice of the tasks passing filter, ordered by sortKey.
func (s *MemoryStore) ListTasks(ctx context.Context, filter models.Filter, sortKey models.SortKey) ([]models.Task, error) {
	_ = ctx

	s.mu.RLock()
	out := make([]models.Task, 0, len(s.tasks))
	for i := range s.tasks {
		if filter.Match(&s.tasks[i]) {
			out = append(out, s.tasks[i])
		}
	}
	s.mu.RUnlock()

	models.SortTasks(out, sortKey)
	return out, nil
}

// Stats summarizes the whole collection.
func (s *MemoryStore) Stats(ctx context.Context) (models.Stats, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.ComputeStats(s.tasks), nil
}

// UrgentTasks returns open tasks due within the next 24 hours, in insertion order.
func (s *MemoryStore) UrgentTasks(ctx context.Context, now time.Time) ([]models.Task, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, 0)
	for _, t := range s.tasks {
		if models.IsUrgent(t, now) {
			out = append(out, t)
		}
	}
	return out, nil
}

// LoadTasks appends seed records, allocating fresh ids.
func (s *MemoryStore) LoadTasks(ctx context.Context, tasks []models.Task) error {
	_ = ctx

	prepared := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		fields, err := prepareFields(t.Fields())
		if err != nil {
			return err
		}
		t.Apply(fields)
		if t.CreatedDate == "" {
			t.CreatedDate = models.DateOf(s.now())
		}
		prepared = append(prepared, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range prepared {
		t.ID = s.nextID()
		s.tasks = append(s.tasks, t)
	}
	return nil
}
