package task

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemStore is an in-memory Store. Tasks are lost when the process exits.
type MemStore struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{tasks: make(map[string]Task)}
}

// EnsureTable is a no-op; there is no schema.
func (s *MemStore) EnsureTable(_ context.Context) error { return nil }

// Create stores a new task built from d.
func (s *MemStore) Create(_ context.Context, d Draft) (*Task, error) {
	t := newTask(d)
	s.mu.Lock()
	s.tasks[t.ID] = t.Clone()
	s.mu.Unlock()
	return t, nil
}

// Get returns the task with the given id.
func (s *MemStore) Get(_ context.Context, id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("get task %s: %w", id, ErrNotFound)
	}
	out := t.Clone()
	return &out, nil
}

// List returns every task, newest first.
func (s *MemStore) List(_ context.Context) ([]Task, error) {
	s.mu.RLock()
	tasks := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t.Clone())
	}
	s.mu.RUnlock()

	// v7 IDs break ties between tasks created in the same microsecond
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
	return tasks, nil
}

// Update applies p to the task with the given id.
func (s *MemStore) Update(_ context.Context, id string, p Patch) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("update task %s: %w", id, ErrNotFound)
	}
	p.Apply(&t)
	s.tasks[id] = t.Clone()
	out := t.Clone()
	return &out, nil
}

// Delete removes the task and returns it.
func (s *MemStore) Delete(_ context.Context, id string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("delete task %s: %w", id, ErrNotFound)
	}
	delete(s.tasks, id)
	out := t.Clone()
	return &out, nil
}

// Toggle inverts the completed flag.
func (s *MemStore) Toggle(_ context.Context, id string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("toggle task %s: %w", id, ErrNotFound)
	}
	t.Completed = !t.Completed
	s.tasks[id] = t
	out := t.Clone()
	return &out, nil
}
