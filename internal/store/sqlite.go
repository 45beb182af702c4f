package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"taskboard/internal/models"
)

// MemoryDSN opens a private in-memory SQLite database.
const MemoryDSN = ":memory:"

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates a new SQLite store with the given data source name.
func NewSQLiteStore(dsn string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	o := buildOptions(opts)
	store := &SQLiteStore{db: db, now: o.now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	// Dates are TEXT: the driver turns DATE columns into time.Time values.
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		priority TEXT NOT NULL CHECK(priority IN ('High', 'Medium', 'Low')),
		deadline TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_date TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_deadline ON tasks(deadline);
	CREATE INDEX IF NOT EXISTS idx_tasks_category ON tasks(category);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const taskColumns = `id, title, description, category, priority, deadline, completed, created_date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		task                          models.Task
		priority, deadline, createdOn string
	)

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Category,
		&priority,
		&deadline,
		&task.Completed,
		&createdOn,
	)
	if err != nil {
		return models.Task{}, err
	}

	task.Priority = models.Priority(priority)
	task.Deadline = models.Date(deadline)
	task.CreatedDate = models.Date(createdOn)
	return task, nil
}

func (s *SQLiteStore) queryTasks(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// AddTask validates the fields and inserts a new open task.
func (s *SQLiteStore) AddTask(ctx context.Context, fields models.TaskFields) (*models.Task, error) {
	fields, err := prepareFields(fields)
	if err != nil {
		return nil, err
	}

	task := models.Task{CreatedDate: models.DateOf(s.now())}
	task.Apply(fields)

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (title, description, category, priority, deadline, completed, created_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, task.Title, task.Description, task.Category, string(task.Priority), string(task.Deadline), false, string(task.CreatedDate))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	task.ID = id

	return &task, nil
}

// GetTask retrieves a task by ID.
func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

// UpdateTask replaces the editable fields of an existing task.
func (s *SQLiteStore) UpdateTask(ctx context.Context, id int64, fields models.TaskFields) (*models.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	fields, err = prepareFields(fields)
	if err != nil {
		return nil, err
	}
	task.Apply(fields)

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, category = ?, priority = ?, deadline = ?
		WHERE id = ?
	`, task.Title, task.Description, task.Category, string(task.Priority), string(task.Deadline), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}
	return &task, nil
}

// DeleteTask deletes a task by ID.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ToggleTaskComplete toggles the completed status of a task.
func (s *SQLiteStore) ToggleTaskComplete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE tasks SET completed = NOT completed WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to toggle task complete: %w", err)
	}
	return nil
}

// orderClause maps a sort key to ORDER BY. id follows insertion order, so it
// breaks ties the same way a stable sort would.
func orderClause(key models.SortKey) string {
	switch key {
	case models.SortByDeadline:
		return ` ORDER BY deadline ASC, id ASC`
	case models.SortByPriority:
		return ` ORDER BY CASE priority WHEN 'High' THEN 1 WHEN 'Medium' THEN 2 WHEN 'Low' THEN 3 ELSE 99 END ASC, id ASC`
	case models.SortByCreated:
		return ` ORDER BY created_date DESC, id ASC`
	default:
		return ` ORDER BY id ASC`
	}
}

// ListTasks retrieves the tasks passing filter, ordered by sortKey.
func (s *SQLiteStore) ListTasks(ctx context.Context, filter models.Filter, sortKey models.SortKey) ([]models.Task, error) {
	var (
		where []string
		args  []any
	)

	if c := strings.TrimSpace(filter.Category); c != "" && !strings.EqualFold(c, models.Any) {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if p := strings.TrimSpace(string(filter.Priority)); p != "" && !strings.EqualFold(p, models.Any) {
		where = append(where, "priority = ?")
		args = append(args, string(filter.Priority))
	}
	switch filter.Status {
	case models.StatusCompleted:
		where = append(where, "completed = TRUE")
	case models.StatusPending:
		where = append(where, "completed = FALSE")
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += orderClause(sortKey)

	return s.queryTasks(ctx, query, args...)
}

// Stats counts total and completed tasks.
func (s *SQLiteStore) Stats(ctx context.Context) (models.Stats, error) {
	var total, completed int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) FROM tasks
	`).Scan(&total, &completed)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to count tasks: %w", err)
	}

	return models.Stats{
		Total:          total,
		Completed:      completed,
		Pending:        total - completed,
		CompletionRate: models.CompletionRate(completed, total),
	}, nil
}

// UrgentTasks returns open tasks due within the next 24 hours, in insertion order.
func (s *SQLiteStore) UrgentTasks(ctx context.Context, now time.Time) ([]models.Task, error) {
	from := models.DateOf(now)
	to := models.DateOf(now.Add(models.UrgentWindow))

	candidates, err := s.queryTasks(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE completed = FALSE AND deadline >= ? AND deadline <= ?
		ORDER BY id ASC
	`, string(from), string(to))
	if err != nil {
		return nil, err
	}

	urgent := candidates[:0]
	for _, t := range candidates {
		if models.IsUrgent(t, now) {
			urgent = append(urgent, t)
		}
	}
	return urgent, nil
}

// LoadTasks inserts seed records in one transaction.
func (s *SQLiteStore) LoadTasks(ctx context.Context, tasks []models.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (title, description, category, priority, deadline, completed, created_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		fields, err := prepareFields(t.Fields())
		if err != nil {
			return err
		}
		created := t.CreatedDate
		if created == "" {
			created = models.DateOf(s.now())
		}

		_, err = stmt.ExecContext(ctx, fields.Title, fields.Description, fields.Category,
			string(fields.Priority), string(fields.Deadline), t.Completed, string(created))
		if err != nil {
			return fmt.Errorf("failed to load task: %w", err)
		}
	}

	return tx.Commit()
}
