package taskstore

import (
	"context"

	"taskdesk/pkg/task"
)

// FetchTasks replaces the collection with the server's list. On failure the
// error is recorded and the existing tasks stay as they were.
//
// Overlapping fetches are sequenced: a response that arrives after a newer
// fetch has already been applied is discarded, success or failure.
func (s *Store) FetchTasks(ctx context.Context) {
	var seq uint64
	s.update(func(st *State) {
		s.begin(st)
		s.fetchSeq++
		seq = s.fetchSeq
	})

	tasks, err := s.api.ListTasks(ctx)

	s.update(func(st *State) {
		s.end(st)
		if seq < s.appliedSeq {
			s.logger.Debug("discarding stale fetch", "seq", seq, "applied", s.appliedSeq)
			return
		}
		s.appliedSeq = seq
		if err != nil {
			st.Error = err.Error()
			return
		}
		st.Tasks = make([]task.Task, len(tasks))
		for i, t := range tasks {
			st.Tasks[i] = t.Clone()
		}
	})
	if err != nil {
		s.logger.Error("error fetching tasks", "error", err)
	}
}

// AddTask creates a task and prepends it. Invalid drafts are rejected with a
// *task.ValidationError before any request and leave the state untouched.
func (s *Store) AddTask(ctx context.Context, d task.Draft) (*task.Task, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	s.update(s.begin)

	created, err := s.api.CreateTask(ctx, d)

	s.update(func(st *State) {
		s.end(st)
		if err != nil {
			st.Error = err.Error()
			return
		}
		st.Tasks = append([]task.Task{created.Clone()}, st.Tasks...)
	})
	if err != nil {
		s.logger.Error("error adding task", "error", err)
		return nil, err
	}
	return cloneTask(created), nil
}

// UpdateTask applies a partial update and replaces the task in place.
// Invalid patches are rejected before any request.
func (s *Store) UpdateTask(ctx context.Context, id string, p task.Patch) (*task.Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s.update(s.begin)

	updated, err := s.api.UpdateTask(ctx, id, p)

	s.finishReplace(id, updated, err)
	if err != nil {
		s.logger.Error("error updating task", "id", id, "error", err)
		return nil, err
	}
	return cloneTask(updated), nil
}

// DeleteTask removes a task on the server and then from the collection.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.update(s.begin)

	err := s.api.DeleteTask(ctx, id)

	s.update(func(st *State) {
		s.end(st)
		if err != nil {
			st.Error = err.Error()
			return
		}
		kept := st.Tasks[:0:0]
		for _, t := range st.Tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		st.Tasks = kept
	})
	if err != nil {
		s.logger.Error("error deleting task", "id", id, "error", err)
		return err
	}
	return nil
}

// ToggleTaskCompletion flips completion on the server and replaces the task
// in place with the server's copy.
func (s *Store) ToggleTaskCompletion(ctx context.Context, id string) (*task.Task, error) {
	s.update(s.begin)

	updated, err := s.api.ToggleCompletion(ctx, id)

	s.finishReplace(id, updated, err)
	if err != nil {
		s.logger.Error("error toggling task", "id", id, "error", err)
		return nil, err
	}
	return cloneTask(updated), nil
}

func (s *Store) finishReplace(id string, updated *task.Task, err error) {
	s.update(func(st *State) {
		s.end(st)
		if err != nil {
			st.Error = err.Error()
			return
		}
		for i := range st.Tasks {
			if st.Tasks[i].ID == id {
				st.Tasks[i] = updated.Clone()
			}
		}
	})
}

// SubmitForm saves the editor's draft: an update of the selected task, or a
// create when nothing is selected. On success the form closes. On a
// validation or API error the form stays open and the error is returned so
// the editor can show it.
func (s *Store) SubmitForm(ctx context.Context, d task.Draft) (*task.Task, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	selected := s.State().SelectedTask

	var (
		saved *task.Task
		err   error
	)
	if selected != nil {
		saved, err = s.UpdateTask(ctx, selected.ID, task.PatchFromDraft(d))
	} else {
		saved, err = s.AddTask(ctx, d)
	}
	if err != nil {
		return nil, err
	}
	s.CloseTaskForm()
	return saved, nil
}

// OpenTaskForm opens the editor for t, or for a new task when t is nil, and
// clears any previous error.
func (s *Store) OpenTaskForm(t *task.Task) {
	sel := cloneTask(t)
	s.update(func(st *State) {
		st.SelectedTask = sel
		st.IsFormOpen = true
		st.Error = ""
	})
}

// CloseTaskForm closes the editor and clears the selection.
func (s *Store) CloseTaskForm() {
	s.update(func(st *State) {
		st.SelectedTask = nil
		st.IsFormOpen = false
	})
}

// SetSelectedTask changes the selection without touching the form. It can
// leave a selection behind a closed form; OpenTaskForm and CloseTaskForm
// keep the two in step.
func (s *Store) SetSelectedTask(t *task.Task) {
	sel := cloneTask(t)
	s.update(func(st *State) { st.SelectedTask = sel })
}

// ClearSelectedTask drops the selection without touching the form.
func (s *Store) ClearSelectedTask() {
	s.update(func(st *State) { st.SelectedTask = nil })
}

// SetFilter stores f as is. Unknown values act like task.FilterAll.
func (s *Store) SetFilter(f task.Filter) {
	s.update(func(st *State) { st.Filter = f })
}

// FilteredTasks returns the tasks visible under the current filter.
func (s *Store) FilteredTasks() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return task.FilterTasks(s.state.Tasks, s.state.Filter)
}

// TaskCounts tallies the whole collection, ignoring the filter.
func (s *Store) TaskCounts() task.Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return task.Tally(s.state.Tasks)
}
