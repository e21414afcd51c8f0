// Package taskstore holds the client-side view of the task collection and
// the UI intent around it (filter, editor form, selection).
//
// Every mutating action runs in three phases: begin (loading set, error
// cleared), one API call, end (loading released, then either the result is
// merged or the error recorded). Nothing is applied optimistically; the
// collection only ever reflects responses the server confirmed.
package taskstore

import (
	"context"
	"log/slog"
	"sync"

	"taskdesk/pkg/task"
)

// API is the subset of the REST client the store drives.
type API interface {
	ListTasks(ctx context.Context) ([]task.Task, error)
	CreateTask(ctx context.Context, d task.Draft) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, p task.Patch) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ToggleCompletion(ctx context.Context, id string) (*task.Task, error)
}

// State is a read-only snapshot of the store.
type State struct {
	// Tasks is newest-created first by convention: creates are prepended,
	// fetches keep the server's order.
	Tasks []task.Task
	// SelectedTask is the task being edited, nil in creation mode.
	SelectedTask *task.Task
	IsLoading    bool
	// Error is the message of the most recent failed action, "" if none.
	Error      string
	Filter     task.Filter
	IsFormOpen bool
}

func (st State) clone() State {
	out := st
	out.Tasks = make([]task.Task, len(st.Tasks))
	for i, t := range st.Tasks {
		out.Tasks[i] = t.Clone()
	}
	out.SelectedTask = cloneTask(st.SelectedTask)
	return out
}

func cloneTask(t *task.Task) *task.Task {
	if t == nil {
		return nil
	}
	cp := t.Clone()
	return &cp
}

// Store is the state container shared by the UI for one session. It is safe
// for concurrent use; the lock is never held across an API call, so actions
// overlap freely.
type Store struct {
	api    API
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	inFlight int
	// fetchSeq is the last sequence handed to FetchTasks, appliedSeq the
	// newest one whose response was applied.
	fetchSeq   uint64
	appliedSeq uint64

	listeners map[int]func(State)
	nextID    int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report failed actions.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store with an empty collection and the "all" filter.
func New(api API, opts ...Option) *Store {
	s := &Store{
		api:       api,
		logger:    slog.Default(),
		state:     State{Tasks: []task.Task{}, Filter: task.FilterAll},
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to be called with a fresh snapshot after every
// state change. Calls happen outside the store lock, on the goroutine that
// made the change. The returned func removes the listener.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// update mutates state under the lock and then notifies listeners.
func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.state.clone()
	fns := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		fns = append(fns, l)
	}
	s.mu.Unlock()

	for _, l := range fns {
		l(snap)
	}
}

func (s *Store) begin(st *State) {
	s.inFlight++
	st.IsLoading = true
	st.Error = ""
}

func (s *Store) end(st *State) {
	s.inFlight--
	st.IsLoading = s.inFlight > 0
}
