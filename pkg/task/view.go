package task

// Filter selects which tasks a list view shows.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// FilterTasks returns the tasks matching f, keeping their order. Any value
// other than active or completed shows everything.
func FilterTasks(tasks []Task, f Filter) []Task {
	switch f {
	case FilterActive:
		return keep(tasks, func(t Task) bool { return !t.Completed })
	case FilterCompleted:
		return keep(tasks, func(t Task) bool { return t.Completed })
	default:
		return keep(tasks, func(Task) bool { return true })
	}
}

func keep(tasks []Task, pred func(Task) bool) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if pred(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Counts summarizes a task collection. Total always equals Active+Completed.
type Counts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Active    int `json:"active"`
}

// Tally counts tasks by completion.
func Tally(tasks []Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		}
	}
	c.Active = c.Total - c.Completed
	return c
}
