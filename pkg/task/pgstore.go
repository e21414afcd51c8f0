package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgColumns = `id, title, description, priority, completed, due_date, created_at`

// PgStore is a PostgreSQL-backed task store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureTable creates the tasks table if it doesn't exist.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL CHECK (title <> ''),
			description TEXT NOT NULL DEFAULT '',
			priority    TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
			completed   BOOLEAN NOT NULL DEFAULT FALSE,
			due_date    TIMESTAMPTZ,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at DESC)`)
	return err
}

// Create inserts a new task.
func (s *PgStore) Create(ctx context.Context, d Draft) (*Task, error) {
	t := newTask(d)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (`+pgColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.Title, t.Description, string(t.Priority), t.Completed, t.DueDate, t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// Get retrieves a single task by ID.
func (s *PgStore) Get(ctx context.Context, id string) (*Task, error) {
	t, err := scanPgTask(s.pool.QueryRow(ctx, `SELECT `+pgColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// List returns all tasks, newest first.
func (s *PgStore) List(ctx context.Context) ([]Task, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+pgColumns+` FROM tasks ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanPgTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return tasks, nil
}

// Update applies a partial update.
func (s *PgStore) Update(ctx context.Context, id string, p Patch) (*Task, error) {
	if p.Empty() {
		return s.Get(ctx, id)
	}

	// Build SET clause from the fields present in the patch
	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Title != nil {
		add("title", strings.TrimSpace(*p.Title))
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Priority != nil {
		add("priority", string(*p.Priority))
	}
	if p.Completed != nil {
		add("completed", *p.Completed)
	}
	if p.DueDate.Set {
		add("due_date", p.DueDate.Time)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d RETURNING %s", strings.Join(sets, ", "), len(args), pgColumns)
	t, err := scanPgTask(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}
	return t, nil
}

// Delete removes a task.
func (s *PgStore) Delete(ctx context.Context, id string) (*Task, error) {
	t, err := scanPgTask(s.pool.QueryRow(ctx, `DELETE FROM tasks WHERE id = $1 RETURNING `+pgColumns, id))
	if err != nil {
		return nil, fmt.Errorf("delete task %s: %w", id, err)
	}
	return t, nil
}

// Toggle flips completion in a single statement.
func (s *PgStore) Toggle(ctx context.Context, id string) (*Task, error) {
	t, err := scanPgTask(s.pool.QueryRow(ctx, `UPDATE tasks SET completed = NOT completed WHERE id = $1 RETURNING `+pgColumns, id))
	if err != nil {
		return nil, fmt.Errorf("toggle task %s: %w", id, err)
	}
	return t, nil
}

func scanPgTask(row pgx.Row) (*Task, error) {
	var t Task
	var priority string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &priority, &t.Completed, &t.DueDate, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.Priority = Priority(priority)
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}
