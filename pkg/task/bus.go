package task

import (
	"context"
	"sync"
)

// ChangeKind names a mutation.
type ChangeKind string

const (
	Created ChangeKind = "created"
	Updated ChangeKind = "updated"
	Toggled ChangeKind = "toggled"
	Deleted ChangeKind = "deleted"
)

// Change describes a successful mutation. For Deleted, Task is the removed
// task as it was.
type Change struct {
	Kind ChangeKind `json:"kind"`
	Task Task       `json:"task"`
}

// Bus wraps a Store with in-process fan-out notification.
// After each successful mutation, all subscribers receive a Change.
type Bus struct {
	Store
	mu   sync.RWMutex
	subs map[chan Change]struct{}
}

// NewBus creates a Bus wrapping the given store.
func NewBus(store Store) *Bus {
	return &Bus{
		Store: store,
		subs:  make(map[chan Change]struct{}),
	}
}

// Create creates a task and publishes Created.
func (b *Bus) Create(ctx context.Context, d Draft) (*Task, error) {
	return b.publish(Created)(b.Store.Create(ctx, d))
}

// Update updates a task and publishes Updated.
func (b *Bus) Update(ctx context.Context, id string, p Patch) (*Task, error) {
	return b.publish(Updated)(b.Store.Update(ctx, id, p))
}

// Delete deletes a task and publishes Deleted.
func (b *Bus) Delete(ctx context.Context, id string) (*Task, error) {
	return b.publish(Deleted)(b.Store.Delete(ctx, id))
}

// Toggle toggles a task and publishes Toggled.
func (b *Bus) Toggle(ctx context.Context, id string) (*Task, error) {
	return b.publish(Toggled)(b.Store.Toggle(ctx, id))
}

func (b *Bus) publish(kind ChangeKind) func(*Task, error) (*Task, error) {
	return func(t *Task, err error) (*Task, error) {
		if err != nil {
			return nil, err
		}
		c := Change{Kind: kind, Task: *t}
		b.mu.RLock()
		for ch := range b.subs {
			select {
			case ch <- c:
			default:
				// subscriber is behind; drop to avoid blocking the request
			}
		}
		b.mu.RUnlock()
		return t, nil
	}
}

// Subscribe returns a buffered channel that receives all changes.
func (b *Bus) Subscribe() chan Change {
	ch := make(chan Change, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(ch chan Change) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}
