package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by stores when no task has the requested ID.
var ErrNotFound = errors.New("task not found")

// Priority ranks a task. The zero value is not a valid priority; Draft
// normalization turns it into PriorityMedium.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a single to-do item.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Clone returns a copy of t that shares no memory with it.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

// Store is the contract for task persistence.
type Store interface {
	Create(ctx context.Context, d Draft) (*Task, error)
	Get(ctx context.Context, id string) (*Task, error)
	// List returns every task, newest first.
	List(ctx context.Context) ([]Task, error)
	Update(ctx context.Context, id string, p Patch) (*Task, error)
	// Delete removes a task and returns it as it was before removal.
	Delete(ctx context.Context, id string) (*Task, error)
	// Toggle inverts the completed flag.
	Toggle(ctx context.Context, id string) (*Task, error)
	EnsureTable(ctx context.Context) error
}

// newTask builds the persisted form of a draft. IDs are UUIDv7 so they sort
// by creation time.
func newTask(d Draft) *Task {
	d = d.Normalize()
	t := &Task{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Title:       d.Title,
		Description: d.Description,
		Priority:    d.Priority,
		Completed:   d.Completed,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}
