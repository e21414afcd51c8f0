package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Dialects supported by SQLStore. Both drivers use '?' placeholders, so only
// the schema differs.
const (
	DialectSQLite = "sqlite3"
	DialectMySQL  = "mysql"
)

var sqlSchemas = map[string][]string{
	DialectSQLite: {
		`CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			priority    TEXT NOT NULL DEFAULT 'medium',
			completed   BOOLEAN NOT NULL DEFAULT 0,
			due_date    DATETIME,
			created_at  DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at)`,
	},
	DialectMySQL: {
		`CREATE TABLE IF NOT EXISTS tasks (
			id          VARCHAR(36) PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL,
			priority    VARCHAR(8) NOT NULL DEFAULT 'medium',
			completed   BOOLEAN NOT NULL DEFAULT FALSE,
			due_date    DATETIME(6) NULL,
			created_at  DATETIME(6) NOT NULL,
			INDEX idx_tasks_created (created_at)
		)`,
	},
}

const sqlColumns = `id, title, description, priority, completed, due_date, created_at`

// SQLStore is a database/sql task store for SQLite (embedded desktop use)
// and MySQL.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// NewSQLStore creates a SQLStore. The dialect must be DialectSQLite or
// DialectMySQL.
func NewSQLStore(db *sql.DB, dialect string) (*SQLStore, error) {
	if _, ok := sqlSchemas[dialect]; !ok {
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

// EnsureTable creates the tasks table if it doesn't exist.
func (s *SQLStore) EnsureTable(ctx context.Context) error {
	for _, stmt := range sqlSchemas[s.dialect] {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure tasks table: %w", err)
		}
	}
	return nil
}

// Create inserts a new task.
func (s *SQLStore) Create(ctx context.Context, d Draft) (*Task, error) {
	t := newTask(d)
	_, err := s.db.ExecContext(ctx, `INSERT INTO tasks (`+sqlColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, string(t.Priority), t.Completed, nullTime(t.DueDate), t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// Get retrieves a single task by ID.
func (s *SQLStore) Get(ctx context.Context, id string) (*Task, error) {
	t, err := getSQLTask(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// List returns all tasks, newest first.
func (s *SQLStore) List(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqlColumns+` FROM tasks ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanSQLTask(rows)
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
func (s *SQLStore) Update(ctx context.Context, id string, p Patch) (*Task, error) {
	var t *Task
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		cur, err := getSQLTask(ctx, tx, id)
		if err != nil {
			return err
		}
		if p.Empty() {
			t = cur
			return nil
		}
		p.Apply(cur)
		_, err = tx.ExecContext(ctx, `UPDATE tasks SET title = ?, description = ?, priority = ?, completed = ?, due_date = ? WHERE id = ?`,
			cur.Title, cur.Description, string(cur.Priority), cur.Completed, nullTime(cur.DueDate), id)
		t = cur
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}
	return t, nil
}

// Delete removes a task.
func (s *SQLStore) Delete(ctx context.Context, id string) (*Task, error) {
	var t *Task
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		cur, err := getSQLTask(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
			return err
		}
		t = cur
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete task %s: %w", id, err)
	}
	return t, nil
}

// Toggle flips completion.
func (s *SQLStore) Toggle(ctx context.Context, id string) (*Task, error) {
	var t *Task
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		cur, err := getSQLTask(ctx, tx, id)
		if err != nil {
			return err
		}
		cur.Completed = !cur.Completed
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET completed = ? WHERE id = ?`, cur.Completed, id); err != nil {
			return err
		}
		t = cur
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("toggle task %s: %w", id, err)
	}
	return t, nil
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

type sqlQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getSQLTask(ctx context.Context, q sqlQuerier, id string) (*Task, error) {
	return scanSQLTask(q.QueryRowContext(ctx, `SELECT `+sqlColumns+` FROM tasks WHERE id = ?`, id))
}

func scanSQLTask(row interface{ Scan(dest ...any) error }) (*Task, error) {
	var t Task
	var priority string
	var due sql.NullTime
	err := row.Scan(&t.ID, &t.Title, &t.Description, &priority, &t.Completed, &due, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.Priority = Priority(priority)
	t.CreatedAt = t.CreatedAt.UTC()
	if due.Valid {
		d := due.Time.UTC()
		t.DueDate = &d
	}
	return &t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
