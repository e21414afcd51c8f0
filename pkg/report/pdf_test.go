package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/pkg/task"
)

func TestWritePDF(t *testing.T) {
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	tasks := []task.Task{
		{ID: "1", Title: "Write report", Priority: task.PriorityHigh, DueDate: &due, CreatedAt: time.Now()},
		{ID: "2", Title: "Ship it", Priority: task.PriorityLow, Completed: true, CreatedAt: time.Now()},
	}

	var buf bytes.Buffer
	err := WritePDF(&buf, tasks, task.Tally(tasks), time.Now())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestWritePDFEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, nil, task.Counts{}, time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
