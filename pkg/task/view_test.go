package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleTasks() []Task {
	return []Task{
		{ID: "1", Title: "a", Completed: false},
		{ID: "2", Title: "b", Completed: true},
		{ID: "3", Title: "c", Completed: false},
		{ID: "4", Title: "d", Completed: true},
		{ID: "5", Title: "e", Completed: false},
	}
}

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestFilterTasks(t *testing.T) {
	tasks := sampleTasks()
	assert.Equal(t, []string{"1", "3", "5"}, ids(FilterTasks(tasks, FilterActive)))
	assert.Equal(t, []string{"2", "4"}, ids(FilterTasks(tasks, FilterCompleted)))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(FilterTasks(tasks, FilterAll)))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(FilterTasks(tasks, Filter("bogus"))))
	assert.Empty(t, FilterTasks(nil, FilterActive))
}

func TestFilterTasksIsSubsetPartition(t *testing.T) {
	tasks := sampleTasks()
	byID := map[string]Task{}
	for _, tk := range tasks {
		byID[tk.ID] = tk
	}
	for _, f := range []Filter{FilterAll, FilterActive, FilterCompleted, "", "weird"} {
		for _, got := range FilterTasks(tasks, f) {
			orig, ok := byID[got.ID]
			assert.True(t, ok, "filter %q returned unknown task", f)
			assert.Equal(t, orig, got)
			switch f {
			case FilterActive:
				assert.False(t, got.Completed)
			case FilterCompleted:
				assert.True(t, got.Completed)
			}
		}
	}
	active := FilterTasks(tasks, FilterActive)
	done := FilterTasks(tasks, FilterCompleted)
	assert.Equal(t, len(tasks), len(active)+len(done))
}

func TestFilterTasksDoesNotAlias(t *testing.T) {
	tasks := sampleTasks()
	all := FilterTasks(tasks, FilterAll)
	all[0].Title = "changed"
	assert.Equal(t, "a", tasks[0].Title)
}

func TestFilterTasksCopiesDueDate(t *testing.T) {
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	tasks := []Task{{ID: "1", DueDate: &due}}
	for _, f := range []Filter{FilterAll, FilterActive} {
		got := FilterTasks(tasks, f)
		*got[0].DueDate = time.Time{}
		assert.Equal(t, 2026, tasks[0].DueDate.Year(), "filter %q", f)
	}
}

func TestTaskClone(t *testing.T) {
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	orig := Task{ID: "1", DueDate: &due}
	cp := orig.Clone()
	assert.Equal(t, orig, cp)
	assert.NotSame(t, orig.DueDate, cp.DueDate)
	assert.Nil(t, Task{}.Clone().DueDate)
}

func TestTally(t *testing.T) {
	c := Tally(sampleTasks())
	assert.Equal(t, Counts{Total: 5, Completed: 2, Active: 3}, c)
	assert.Equal(t, c.Total, c.Active+c.Completed)
	assert.Equal(t, Counts{}, Tally(nil))
}
